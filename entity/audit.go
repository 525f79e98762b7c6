package entity

// AuditEntry is one administrative action recorded in the audit trail.
type AuditEntry struct {
	Action     string `json:"action"`
	ActorID    uint64 `json:"actor_id"`
	Resource   string `json:"resource"`
	ResourceID uint64 `json:"resource_id"`
	Detail     string `json:"detail,omitempty"`
	Time       uint64 `json:"time"`
}
