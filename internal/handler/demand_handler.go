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

type demandService interface {
	Create(ctx context.Context, req dto.CreateDemandRequest, creatorID string) (*models.Demand, error)
	Get(ctx context.Context, id string) (*models.Demand, error)
	List(ctx context.Context, query dto.DemandQuery) ([]models.Demand, *models.Pagination, error)
}

type demandTimelineService interface {
	DemandTimeline(ctx context.Context, demandID string) ([]models.TimelineEntry, error)
}

// DemandHandler exposes the demand surface.
type DemandHandler struct {
	service  demandService
	timeline demandTimelineService
}

// NewDemandHandler constructs the handler.
func NewDemandHandler(service demandService, timeline demandTimelineService) *DemandHandler {
	return &DemandHandler{service: service, timeline: timeline}
}

// RegisterRoutes wires the demand endpoints onto the router group.
func (h *DemandHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/demands", h.List)
	rg.POST("/demands", h.Create)
	rg.GET("/demands/:id", h.Get)
	rg.GET("/demands/:id/timeline", h.Timeline)
}

// List godoc
// @Summary List demands
// @Tags Demands
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param organization_id query string false "Organization filter"
// @Param search query string false "Search by title or code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /demands [get]
func (h *DemandHandler) List(c *gin.Context) {
	query := dto.DemandQuery{
		OrganizationID: strings.TrimSpace(c.Query("organization_id")),
		CreatedBy:      strings.TrimSpace(c.Query("created_by")),
		Search:         strings.TrimSpace(c.Query("search")),
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		parts := strings.Split(rawStatus, ",")
		statuses := make([]models.DemandStatus, 0, len(parts))
		for _, part := range parts {
			part = strings.ToUpper(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			statuses = append(statuses, models.DemandStatus(part))
		}
		query.Status = statuses
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		query.PageSize = limit
	}

	demands, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, demands, pagination)
}

// Create godoc
// @Summary Register a new demand
// @Tags Demands
// @Accept json
// @Produce json
// @Param payload body dto.CreateDemandRequest true "Demand payload"
// @Success 201 {object} response.Envelope
// @Router /demands [post]
func (h *DemandHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateDemandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid demand payload"))
		return
	}
	demand, err := h.service.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, demand)
}

// Get godoc
// @Summary Get demand detail
// @Tags Demands
// @Produce json
// @Param id path string true "Demand ID"
// @Success 200 {object} response.Envelope
// @Router /demands/{id} [get]
func (h *DemandHandler) Get(c *gin.Context) {
	demand, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, demand, nil)
}

// Timeline godoc
// @Summary Get the merged history of a demand
// @Tags Demands
// @Produce json
// @Param id path string true "Demand ID"
// @Success 200 {object} response.Envelope
// @Router /demands/{id}/timeline [get]
func (h *DemandHandler) Timeline(c *gin.Context) {
	entries, err := h.timeline.DemandTimeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
