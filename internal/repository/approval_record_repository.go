package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pmolab/gpd-api/internal/models"
)

const approvalRecordColumns = `id, demand_id, approver_id, level, decision, reason, created_at`

// ApprovalRecordRepository reads the append-only approval record table.
// Inserts happen exclusively inside the workflow transaction.
type ApprovalRecordRepository struct {
	db *sqlx.DB
}

// NewApprovalRecordRepository constructs the repository.
func NewApprovalRecordRepository(db *sqlx.DB) *ApprovalRecordRepository {
	return &ApprovalRecordRepository{db: db}
}

// ListByDemand returns all decisions recorded for a demand, oldest first.
func (r *ApprovalRecordRepository) ListByDemand(ctx context.Context, demandID string) ([]models.ApprovalRecord, error) {
	query := `SELECT ` + approvalRecordColumns + ` FROM approval_records WHERE demand_id = $1 ORDER BY created_at ASC`
	records := []models.ApprovalRecord{}
	if err := r.db.SelectContext(ctx, &records, query, demandID); err != nil {
		return nil, fmt.Errorf("list approval records: %w", err)
	}
	return records, nil
}

// ListByApprover returns the decisions an actor has rendered, newest first.
func (r *ApprovalRecordRepository) ListByApprover(ctx context.Context, approverID string) ([]models.ApprovalRecord, error) {
	query := `SELECT ` + approvalRecordColumns + ` FROM approval_records WHERE approver_id = $1 ORDER BY created_at DESC`
	records := []models.ApprovalRecord{}
	if err := r.db.SelectContext(ctx, &records, query, approverID); err != nil {
		return nil, fmt.Errorf("list approver records: %w", err)
	}
	return records, nil
}

// ExistsFor reports whether the actor already decided for the demand at
// the given level, regardless of the decision value.
func (r *ApprovalRecordRepository) ExistsFor(ctx context.Context, demandID, approverID string, level models.ApprovalLevel) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM approval_records WHERE demand_id = $1 AND approver_id = $2 AND level = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, demandID, approverID, level); err != nil {
		return false, fmt.Errorf("check approval record: %w", err)
	}
	return exists, nil
}
