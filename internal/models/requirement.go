package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RequirementStatus enumerates the signature workflow states.
type RequirementStatus string

const (
	RequirementStatusPending  RequirementStatus = "PENDING"
	RequirementStatusSigned   RequirementStatus = "SIGNED"
	RequirementStatusRejected RequirementStatus = "REJECTED"
)

// Terminal reports whether the signature workflow has finished.
func (s RequirementStatus) Terminal() bool {
	return s == RequirementStatusSigned || s == RequirementStatusRejected
}

// StringList stores an ordered list of identifiers as a JSON column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]string)(l))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(l))
	default:
		return fmt.Errorf("unsupported type %T for StringList", src)
	}
}

// FunctionalRequirement is an entity requiring ordered sign-off from a
// fixed list of approvers. CurrentApproverID is nil exactly when the
// workflow is terminal.
type FunctionalRequirement struct {
	ID                string            `db:"id" json:"id"`
	Title             string            `db:"title" json:"title"`
	Description       string            `db:"description" json:"description"`
	Sector            string            `db:"sector" json:"sector"`
	ApproverIDs       StringList        `db:"approver_ids" json:"approver_ids"`
	CurrentApproverID *string           `db:"current_approver_id" json:"current_approver_id,omitempty"`
	Status            RequirementStatus `db:"status" json:"status"`
	CreatedBy         string            `db:"created_by" json:"created_by"`
	Version           int               `db:"version" json:"version"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// ApproverPosition returns the index of the actor in the approver
// sequence, or -1 when the actor is not part of it.
func (r *FunctionalRequirement) ApproverPosition(actorID string) int {
	for i, id := range r.ApproverIDs {
		if id == actorID {
			return i
		}
	}
	return -1
}

// SignatureStatus enumerates the outcome of one signer's act.
type SignatureStatus string

const (
	SignatureStatusSigned   SignatureStatus = "SIGNED"
	SignatureStatusRejected SignatureStatus = "REJECTED"
)

// Signature is the immutable record of one approver's decision within a
// sequential chain. Created exactly once per signer per requirement, at
// the moment that signer acts.
type Signature struct {
	ID            string          `db:"id" json:"id"`
	RequirementID string          `db:"requirement_id" json:"requirement_id"`
	SignerID      string          `db:"signer_id" json:"signer_id"`
	Status        SignatureStatus `db:"status" json:"status"`
	Token         string          `db:"token" json:"token"`
	Comment       *string         `db:"comment" json:"comment,omitempty"`
	SignedAt      time.Time       `db:"signed_at" json:"signed_at"`
}

// RequirementFilter captures listing criteria for requirements.
type RequirementFilter struct {
	Status            []RequirementStatus
	Sector            string
	CreatedBy         string
	CurrentApproverID string
	SignerID          string
	Page              int
	PageSize          int
}
