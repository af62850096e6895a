package request

// RestoreBackup guards the destructive restore endpoint. An unconfirmed
// request returns a preview of what would be replaced instead of restoring.
type RestoreBackup struct {
	Confirmed bool `json:"confirmed"`
}
