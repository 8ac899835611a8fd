package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionDemandCreate      = "DEMAND_CREATE"
	AuditActionDemandDecision    = "DEMAND_DECISION"
	AuditActionRequirementCreate = "REQUIREMENT_CREATE"
	AuditActionRequirementSign   = "REQUIREMENT_SIGN"
	AuditActionRequirementReject = "REQUIREMENT_REJECT"
	AuditActionLogin             = "LOGIN"
)

// AuditLog represents an audit trail record carrying before/after
// snapshots of the changed fields.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	ActorID    *string   `db:"actor_id" json:"actor_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// TimelineEntry is one event in the merged per-entity history, sourced
// from audit entries, approval records, or signatures.
type TimelineEntry struct {
	Source     string    `json:"source"`
	Action     string    `json:"action"`
	ActorID    string    `json:"actor_id,omitempty"`
	ActorName  string    `json:"actor_name,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OldValues  []byte    `json:"old_values,omitempty"`
	NewValues  []byte    `json:"new_values,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
