package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pmolab/gpd-api/internal/models"
)

// RoleRepository reads committee membership and validator assignment rows.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository constructs the repository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// IsCommitteeMember reports whether the actor has an active committee
// membership.
func (r *RoleRepository) IsCommitteeMember(ctx context.Context, actorID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM committee_memberships WHERE actor_id = $1 AND active)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, actorID); err != nil {
		return false, fmt.Errorf("check committee membership: %w", err)
	}
	return exists, nil
}

// FindValidatorAssignment returns the actor's active validator assignment,
// or nil when there is none.
func (r *RoleRepository) FindValidatorAssignment(ctx context.Context, actorID string) (*models.ValidatorAssignment, error) {
	const query = `SELECT id, actor_id, organization_id, active, created_at
	FROM validator_assignments WHERE actor_id = $1 AND active LIMIT 1`
	var assignment models.ValidatorAssignment
	if err := r.db.GetContext(ctx, &assignment, query, actorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find validator assignment: %w", err)
	}
	return &assignment, nil
}

// OrganizationHasValidator reports whether any active validator is
// assigned to the organization. The decision recorder uses this to route
// manager approvals.
func (r *RoleRepository) OrganizationHasValidator(ctx context.Context, organizationID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM validator_assignments WHERE organization_id = $1 AND active)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, organizationID); err != nil {
		return false, fmt.Errorf("check organization validator: %w", err)
	}
	return exists, nil
}
