package dto

// CreateRequirementRequest payload for opening a signature chain.
type CreateRequirementRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Sector      string   `json:"sector" validate:"required"`
	ApproverIDs []string `json:"approver_ids" validate:"required,min=1,unique"`
}

// SignRequest carries the optional comment attached to a signature.
type SignRequest struct {
	Comment string `json:"comment"`
}

// RequirementScope selects which requirement view to list.
const (
	RequirementScopePending = "pending"
	RequirementScopeHandled = "handled"
	RequirementScopeMine    = "mine"
	RequirementScopeAll     = "all"
)
