package request

type CreateTenant struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
	// SchemaName is optional; a clinic_-prefixed name is generated when
	// it is omitted.
	SchemaName string `json:"schema_name" validate:"omitempty,schema_name"`
}
