package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pmolab/gpd-api/internal/dto"
	"github.com/pmolab/gpd-api/internal/models"
	appErrors "github.com/pmolab/gpd-api/pkg/errors"
	"github.com/pmolab/gpd-api/pkg/response"
)

type requirementService interface {
	Create(ctx context.Context, req dto.CreateRequirementRequest, creatorID string) (*models.FunctionalRequirement, error)
	Get(ctx context.Context, id string) (*models.FunctionalRequirement, []models.Signature, error)
	List(ctx context.Context, scope, actorID string, page, pageSize int) ([]models.FunctionalRequirement, *models.Pagination, error)
	Approve(ctx context.Context, requirementID, actorID, comment string) (*models.FunctionalRequirement, error)
	Reject(ctx context.Context, requirementID, actorID, comment string) (*models.FunctionalRequirement, error)
}

type requirementTimelineService interface {
	RequirementTimeline(ctx context.Context, requirementID string) ([]models.TimelineEntry, error)
}

// RequirementHandler exposes the functional requirement signature chain.
type RequirementHandler struct {
	service  requirementService
	timeline requirementTimelineService
}

// NewRequirementHandler constructs the handler.
func NewRequirementHandler(service requirementService, timeline requirementTimelineService) *RequirementHandler {
	return &RequirementHandler{service: service, timeline: timeline}
}

// RegisterRoutes wires the requirement endpoints onto the router group.
func (h *RequirementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/requirements", h.List)
	rg.POST("/requirements", h.Create)
	rg.GET("/requirements/:id", h.Get)
	rg.GET("/requirements/:id/timeline", h.Timeline)
	rg.POST("/requirements/:id/approve", h.Approve)
	rg.POST("/requirements/:id/reject", h.Reject)
}

type requirementDetail struct {
	Requirement *models.FunctionalRequirement `json:"requirement"`
	Signatures  []models.Signature            `json:"signatures"`
}

// List godoc
// @Summary List functional requirements
// @Tags Requirements
// @Produce json
// @Param scope query string false "pending | handled | mine | all"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requirements [get]
func (h *RequirementHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	scope := strings.ToLower(strings.TrimSpace(c.DefaultQuery("scope", dto.RequirementScopeAll)))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	requirements, pagination, err := h.service.List(c.Request.Context(), scope, claims.UserID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requirements, pagination)
}

// Create godoc
// @Summary Open a new signature chain
// @Tags Requirements
// @Accept json
// @Produce json
// @Param payload body dto.CreateRequirementRequest true "Requirement payload"
// @Success 201 {object} response.Envelope
// @Router /requirements [post]
func (h *RequirementHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid requirement payload"))
		return
	}
	requirement, err := h.service.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, requirement)
}

// Get godoc
// @Summary Get requirement detail with signatures
// @Tags Requirements
// @Produce json
// @Param id path string true "Requirement ID"
// @Success 200 {object} response.Envelope
// @Router /requirements/{id} [get]
func (h *RequirementHandler) Get(c *gin.Context) {
	requirement, signatures, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requirementDetail{Requirement: requirement, Signatures: signatures}, nil)
}

// Timeline godoc
// @Summary Get the merged history of a requirement
// @Tags Requirements
// @Produce json
// @Param id path string true "Requirement ID"
// @Success 200 {object} response.Envelope
// @Router /requirements/{id}/timeline [get]
func (h *RequirementHandler) Timeline(c *gin.Context) {
	entries, err := h.timeline.RequirementTimeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Approve godoc
// @Summary Sign a requirement as the current approver
// @Tags Requirements
// @Accept json
// @Produce json
// @Param id path string true "Requirement ID"
// @Param payload body dto.SignRequest false "Optional comment"
// @Success 200 {object} response.Envelope
// @Router /requirements/{id}/approve [post]
func (h *RequirementHandler) Approve(c *gin.Context) {
	h.sign(c, h.service.Approve)
}

// Reject godoc
// @Summary Reject a requirement as the current approver
// @Tags Requirements
// @Accept json
// @Produce json
// @Param id path string true "Requirement ID"
// @Param payload body dto.SignRequest false "Optional comment"
// @Success 200 {object} response.Envelope
// @Router /requirements/{id}/reject [post]
func (h *RequirementHandler) Reject(c *gin.Context) {
	h.sign(c, h.service.Reject)
}

func (h *RequirementHandler) sign(c *gin.Context, act func(ctx context.Context, requirementID, actorID, comment string) (*models.FunctionalRequirement, error)) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SignRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid signature payload"))
			return
		}
	}
	requirement, err := act(c.Request.Context(), c.Param("id"), claims.UserID, req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requirement, nil)
}
