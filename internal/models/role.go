package models

import "time"

// CommitteeMembership marks an actor as an active committee member.
type CommitteeMembership struct {
	ID        string    `db:"id" json:"id"`
	ActorID   string    `db:"actor_id" json:"actor_id"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ValidatorAssignment binds an actor to the organization whose demands
// they validate.
type ValidatorAssignment struct {
	ID             string    `db:"id" json:"id"`
	ActorID        string    `db:"actor_id" json:"actor_id"`
	OrganizationID string    `db:"organization_id" json:"organization_id"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ResolvedRole is the single approval role an actor acts under, plus the
// organization scope when the role is validator.
type ResolvedRole struct {
	Level          ApprovalLevel `json:"level"`
	OrganizationID string        `json:"organization_id,omitempty"`
}
