package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pmolab/gpd-api/internal/models"
	appErrors "github.com/pmolab/gpd-api/pkg/errors"
)

type roleStoreStub struct {
	committee  map[string]bool
	validators map[string]*models.ValidatorAssignment
}

func newRoleStoreStub() *roleStoreStub {
	return &roleStoreStub{
		committee:  make(map[string]bool),
		validators: make(map[string]*models.ValidatorAssignment),
	}
}

func (r *roleStoreStub) IsCommitteeMember(ctx context.Context, actorID string) (bool, error) {
	return r.committee[actorID], nil
}

func (r *roleStoreStub) FindValidatorAssignment(ctx context.Context, actorID string) (*models.ValidatorAssignment, error) {
	return r.validators[actorID], nil
}

func TestRoleServiceResolveDefaultsToManager(t *testing.T) {
	svc := NewRoleService(newRoleStoreStub(), nil)

	role, err := svc.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, models.ApprovalLevelManager, role.Level)
	require.Empty(t, role.OrganizationID)
}

func TestRoleServiceResolveValidator(t *testing.T) {
	store := newRoleStoreStub()
	store.validators["user-1"] = &models.ValidatorAssignment{
		ActorID:        "user-1",
		OrganizationID: "org-1",
		Active:         true,
	}
	svc := NewRoleService(store, nil)

	role, err := svc.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, models.ApprovalLevelValidator, role.Level)
	require.Equal(t, "org-1", role.OrganizationID)
}

func TestRoleServiceCommitteeOutranksValidator(t *testing.T) {
	store := newRoleStoreStub()
	store.committee["user-1"] = true
	store.validators["user-1"] = &models.ValidatorAssignment{
		ActorID:        "user-1",
		OrganizationID: "org-1",
		Active:         true,
	}
	svc := NewRoleService(store, nil)

	role, err := svc.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, models.ApprovalLevelCommittee, role.Level)
}

func TestRoleServiceResolveRejectsEmptyActor(t *testing.T) {
	svc := NewRoleService(newRoleStoreStub(), nil)

	_, err := svc.Resolve(context.Background(), "")
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestPendingStatusesPerLevel(t *testing.T) {
	require.Equal(t,
		[]models.DemandStatus{models.DemandStatusBacklog, models.DemandStatusAwaitingManager, models.DemandStatusStandBy},
		PendingStatuses(models.ApprovalLevelManager))
	require.Equal(t,
		[]models.DemandStatus{models.DemandStatusAwaitingCommittee, models.DemandStatusStandBy},
		PendingStatuses(models.ApprovalLevelCommittee))
	require.Equal(t,
		[]models.DemandStatus{models.DemandStatusAwaitingITValidation, models.DemandStatusStandBy},
		PendingStatuses(models.ApprovalLevelValidator))
}

func TestPendingStatusesKeepStandByVisible(t *testing.T) {
	for _, level := range []models.ApprovalLevel{
		models.ApprovalLevelManager,
		models.ApprovalLevelCommittee,
		models.ApprovalLevelValidator,
	} {
		require.Contains(t, PendingStatuses(level), models.DemandStatusStandBy)
	}
}
