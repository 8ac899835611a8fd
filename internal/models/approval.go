package models

import "time"

// ApprovalLevel identifies a stage in the demand approval path.
type ApprovalLevel string

const (
	ApprovalLevelManager   ApprovalLevel = "MANAGER"
	ApprovalLevelCommittee ApprovalLevel = "COMMITTEE"
	ApprovalLevelValidator ApprovalLevel = "VALIDATOR"
)

// ApprovalDecision enumerates the decisions an approver may render.
type ApprovalDecision string

const (
	DecisionApproved      ApprovalDecision = "APPROVED"
	DecisionRejected      ApprovalDecision = "REJECTED"
	DecisionInfoRequested ApprovalDecision = "INFO_REQUESTED"
)

// ApprovalRecord is the immutable record of one actor's decision at one
// level for one demand. Rows are insert-only; (demand_id, approver_id,
// level) is unique.
type ApprovalRecord struct {
	ID         string           `db:"id" json:"id"`
	DemandID   string           `db:"demand_id" json:"demand_id"`
	ApproverID string           `db:"approver_id" json:"approver_id"`
	Level      ApprovalLevel    `db:"level" json:"level"`
	Decision   ApprovalDecision `db:"decision" json:"decision"`
	Reason     *string          `db:"reason" json:"reason,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// PendingQueue is the computed set of demands awaiting one actor's
// decision, tagged with the level the actor resolves to.
type PendingQueue struct {
	Level   ApprovalLevel `json:"level"`
	Demands []Demand      `json:"demands"`
}
