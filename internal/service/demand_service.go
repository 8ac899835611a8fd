package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pmolab/gpd-api/internal/dto"
	"github.com/pmolab/gpd-api/internal/models"
	appErrors "github.com/pmolab/gpd-api/pkg/errors"
)

type demandStore interface {
	GetByID(ctx context.Context, id string) (*models.Demand, error)
	List(ctx context.Context, filter models.DemandFilter) ([]models.Demand, *models.Pagination, error)
	NextCodeSequence(ctx context.Context) (int64, error)
}

type demandWorkflowStore interface {
	CreateDemand(ctx context.Context, demand *models.Demand, audit *models.AuditLog) error
}

// DemandService owns the demand surface the workflow operates on. New
// demands enter the portfolio in Backlog with a generated human code.
type DemandService struct {
	store      demandStore
	workflow   demandWorkflowStore
	codePrefix string
	logger     *zap.Logger
}

// NewDemandService constructs the service.
func NewDemandService(store demandStore, workflow demandWorkflowStore, codePrefix string, logger *zap.Logger) *DemandService {
	if codePrefix == "" {
		codePrefix = "DEM"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DemandService{store: store, workflow: workflow, codePrefix: codePrefix, logger: logger}
}

// Create registers a new demand in Backlog.
func (s *DemandService) Create(ctx context.Context, req dto.CreateDemandRequest, creatorID string) (*models.Demand, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	organizationID := strings.TrimSpace(req.OrganizationID)
	if title == "" || description == "" || organizationID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title, description and organization_id are required")
	}

	seq, err := s.store.NextCodeSequence(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate demand code")
	}

	demand := &models.Demand{
		Code:           fmt.Sprintf("%s-%d-%04d", s.codePrefix, time.Now().UTC().Year(), seq),
		Title:          title,
		Description:    description,
		Status:         models.DemandStatusBacklog,
		OrganizationID: organizationID,
		CreatedBy:      creatorID,
	}

	newValues, _ := json.Marshal(map[string]string{
		"code":   demand.Code,
		"title":  title,
		"status": string(demand.Status),
	})
	audit := &models.AuditLog{
		ActorID:   &creatorID,
		Action:    models.AuditActionDemandCreate,
		Resource:  "demand",
		NewValues: newValues,
		IPAddress: "system",
		UserAgent: "demand-service",
	}

	if err := s.workflow.CreateDemand(ctx, demand, audit); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create demand")
	}

	s.logger.Info("demand created", zap.String("demand_id", demand.ID), zap.String("code", demand.Code))
	return demand, nil
}

// Get returns a demand by identifier.
func (s *DemandService) Get(ctx context.Context, id string) (*models.Demand, error) {
	demand, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load demand")
	}
	return demand, nil
}

// List returns demands matching the query.
func (s *DemandService) List(ctx context.Context, query dto.DemandQuery) ([]models.Demand, *models.Pagination, error) {
	filter := models.DemandFilter{
		Status:         query.Status,
		OrganizationID: query.OrganizationID,
		CreatedBy:      query.CreatedBy,
		Search:         query.Search,
		Page:           query.Page,
		PageSize:       query.PageSize,
	}
	demands, pagination, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list demands")
	}
	return demands, pagination, nil
}
