package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pmolab/gpd-api/internal/dto"
	"github.com/pmolab/gpd-api/internal/models"
	appErrors "github.com/pmolab/gpd-api/pkg/errors"
	"github.com/pmolab/gpd-api/pkg/response"
)

type approvalQueueService interface {
	ListPending(ctx context.Context, actorID string) (*models.PendingQueue, error)
}

type decisionService interface {
	RecordDecision(ctx context.Context, demandID, actorID string, req dto.DecisionRequest) (*dto.DecisionResult, error)
}

// ApprovalHandler exposes the pending queue and the decision endpoint.
type ApprovalHandler struct {
	queue     approvalQueueService
	decisions decisionService
}

// NewApprovalHandler constructs the handler.
func NewApprovalHandler(queue approvalQueueService, decisions decisionService) *ApprovalHandler {
	return &ApprovalHandler{queue: queue, decisions: decisions}
}

// RegisterRoutes wires the approval endpoints onto the router group.
func (h *ApprovalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/approvals/pending", h.ListPending)
	rg.POST("/demands/:id/decision", h.Decide)
}

// ListPending godoc
// @Summary List demands awaiting the caller's decision
// @Tags Approvals
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /approvals/pending [get]
func (h *ApprovalHandler) ListPending(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	queue, err := h.queue.ListPending(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queue, nil)
}

// Decide godoc
// @Summary Record an approval decision on a demand
// @Tags Approvals
// @Accept json
// @Produce json
// @Param id path string true "Demand ID"
// @Param payload body dto.DecisionRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Router /demands/{id}/decision [post]
func (h *ApprovalHandler) Decide(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid decision payload"))
		return
	}
	result, err := h.decisions.RecordDecision(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
