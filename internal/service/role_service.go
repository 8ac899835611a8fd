package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pmolab/gpd-api/internal/models"
	appErrors "github.com/pmolab/gpd-api/pkg/errors"
)

type roleStore interface {
	IsCommitteeMember(ctx context.Context, actorID string) (bool, error)
	FindValidatorAssignment(ctx context.Context, actorID string) (*models.ValidatorAssignment, error)
}

// RoleService resolves the single approval role an actor acts under.
//
// Ranking is policy, not accident: committee membership outranks a
// validator assignment, which outranks the manager default. An actor
// holding several roles therefore always resolves to exactly one.
type RoleService struct {
	store  roleStore
	logger *zap.Logger
}

// NewRoleService constructs the resolver.
func NewRoleService(store roleStore, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleService{store: store, logger: logger}
}

// Resolve returns the actor's effective approval role.
func (s *RoleService) Resolve(ctx context.Context, actorID string) (*models.ResolvedRole, error) {
	if actorID == "" {
		return nil, appErrors.ErrUnauthorized
	}

	member, err := s.store.IsCommitteeMember(ctx, actorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve committee membership")
	}
	if member {
		return &models.ResolvedRole{Level: models.ApprovalLevelCommittee}, nil
	}

	assignment, err := s.store.FindValidatorAssignment(ctx, actorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve validator assignment")
	}
	if assignment != nil {
		return &models.ResolvedRole{Level: models.ApprovalLevelValidator, OrganizationID: assignment.OrganizationID}, nil
	}

	return &models.ResolvedRole{Level: models.ApprovalLevelManager}, nil
}

// PendingStatuses returns the demand statuses actionable at a level.
// StandBy is actionable at every level so a demand parked by an
// information request stays visible and a later decision resumes it;
// the per-actor record gate keeps the original requester from deciding
// the same demand twice.
func PendingStatuses(level models.ApprovalLevel) []models.DemandStatus {
	switch level {
	case models.ApprovalLevelManager:
		return []models.DemandStatus{models.DemandStatusBacklog, models.DemandStatusAwaitingManager, models.DemandStatusStandBy}
	case models.ApprovalLevelCommittee:
		return []models.DemandStatus{models.DemandStatusAwaitingCommittee, models.DemandStatusStandBy}
	case models.ApprovalLevelValidator:
		return []models.DemandStatus{models.DemandStatusAwaitingITValidation, models.DemandStatusStandBy}
	}
	return nil
}
