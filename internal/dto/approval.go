package dto

import "github.com/pmolab/gpd-api/internal/models"

// DecisionRequest captures an approver's decision on a demand. Reason is
// mandatory for rejections.
type DecisionRequest struct {
	Decision models.ApprovalDecision `json:"decision" validate:"required"`
	Reason   string                  `json:"reason"`
}

// DecisionResult reports the state transition applied by a decision.
type DecisionResult struct {
	Demand *models.Demand         `json:"demand"`
	Record *models.ApprovalRecord `json:"record"`
}
