package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pmolab/gpd-api/internal/models"
	appErrors "github.com/pmolab/gpd-api/pkg/errors"
)

type roleResolver interface {
	Resolve(ctx context.Context, actorID string) (*models.ResolvedRole, error)
}

type pendingDemandStore interface {
	ListPendingForActor(ctx context.Context, actorID string, level models.ApprovalLevel, statuses []models.DemandStatus, organizationID string) ([]models.Demand, error)
}

// ApprovalQueueService computes, per actor, the demands currently
// awaiting that actor's decision. The queue is a pure read: no caching,
// re-derived from store state on every call.
type ApprovalQueueService struct {
	roles  roleResolver
	store  pendingDemandStore
	logger *zap.Logger
}

// NewApprovalQueueService constructs the service.
func NewApprovalQueueService(roles roleResolver, store pendingDemandStore, logger *zap.Logger) *ApprovalQueueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalQueueService{roles: roles, store: store, logger: logger}
}

// ListPending returns the actor's pending queue together with the level
// the actor resolved to. A demand the actor already decided on at that
// level never reappears, whatever the recorded decision was.
func (s *ApprovalQueueService) ListPending(ctx context.Context, actorID string) (*models.PendingQueue, error) {
	role, err := s.roles.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	statuses := PendingStatuses(role.Level)
	demands, err := s.store.ListPendingForActor(ctx, actorID, role.Level, statuses, role.OrganizationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending demands")
	}

	return &models.PendingQueue{Level: role.Level, Demands: demands}, nil
}
