package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/pmolab/gpd-api/internal/models"
)

const requirementColumns = `id, title, description, sector, approver_ids, current_approver_id, status, created_by, version, created_at, updated_at`

const signatureColumns = `id, requirement_id, signer_id, status, token, comment, signed_at`

// RequirementRepository reads functional requirement and signature rows.
// All state-changing writes go through the workflow transaction.
type RequirementRepository struct {
	db *sqlx.DB
}

// NewRequirementRepository constructs the repository.
func NewRequirementRepository(db *sqlx.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

// GetByID fetches a requirement by identifier.
func (r *RequirementRepository) GetByID(ctx context.Context, id string) (*models.FunctionalRequirement, error) {
	query := `SELECT ` + requirementColumns + ` FROM functional_requirements WHERE id = $1`
	var req models.FunctionalRequirement
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns requirements matching the filter (newest first).
func (r *RequirementRepository) List(ctx context.Context, filter models.RequirementFilter) ([]models.FunctionalRequirement, *models.Pagination, error) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 6)

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("fr.status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.Sector != "" {
		args = append(args, filter.Sector)
		conditions = append(conditions, fmt.Sprintf("fr.sector = $%d", len(args)))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		conditions = append(conditions, fmt.Sprintf("fr.created_by = $%d", len(args)))
	}
	if filter.CurrentApproverID != "" {
		args = append(args, filter.CurrentApproverID)
		conditions = append(conditions, fmt.Sprintf("fr.current_approver_id = $%d", len(args)))
	}
	if filter.SignerID != "" {
		args = append(args, filter.SignerID)
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM signatures s WHERE s.requirement_id = fr.id AND s.signer_id = $%d)", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM functional_requirements fr"+where, args...); err != nil {
		return nil, nil, fmt.Errorf("count requirements: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf("SELECT %s FROM functional_requirements fr%s ORDER BY fr.created_at DESC LIMIT $%d OFFSET $%d",
		prefixColumns("fr", requirementColumns), where, len(args)-1, len(args))

	requirements := []models.FunctionalRequirement{}
	if err := r.db.SelectContext(ctx, &requirements, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list requirements: %w", err)
	}

	return requirements, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// ListSignatures returns the signatures of one requirement in signing
// order.
func (r *RequirementRepository) ListSignatures(ctx context.Context, requirementID string) ([]models.Signature, error) {
	query := `SELECT ` + signatureColumns + ` FROM signatures WHERE requirement_id = $1 ORDER BY signed_at ASC`
	signatures := []models.Signature{}
	if err := r.db.SelectContext(ctx, &signatures, query, requirementID); err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}
	return signatures, nil
}
