package request

type CreateAPIKey struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
	Role string `json:"role" validate:"required,oneof=admin staff"`
}
