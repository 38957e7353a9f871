package repoargs

type AuditLogCreate struct {
	UserID     int64
	Action     string
	EntityType string
	EntityID   int64
	Changes    map[string]any
}
