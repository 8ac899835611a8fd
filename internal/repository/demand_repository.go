package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pmolab/gpd-api/internal/models"
)

const demandColumns = `id, code, title, description, status, organization_id, created_by, version, created_at, updated_at`

// DemandRepository persists demand rows.
type DemandRepository struct {
	db *sqlx.DB
}

// NewDemandRepository constructs the repository.
func NewDemandRepository(db *sqlx.DB) *DemandRepository {
	return &DemandRepository{db: db}
}

// Create inserts a new demand row.
func (r *DemandRepository) Create(ctx context.Context, demand *models.Demand) error {
	if demand.ID == "" {
		demand.ID = uuid.NewString()
	}
	if demand.Status == "" {
		demand.Status = models.DemandStatusBacklog
	}
	now := time.Now().UTC()
	if demand.CreatedAt.IsZero() {
		demand.CreatedAt = now
	}
	demand.UpdatedAt = demand.CreatedAt
	demand.Version = 1
	const query = `INSERT INTO demands
	(id, code, title, description, status, organization_id, created_by, version, created_at, updated_at)
	VALUES (:id, :code, :title, :description, :status, :organization_id, :created_by, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, demand); err != nil {
		return fmt.Errorf("create demand: %w", err)
	}
	return nil
}

// GetByID fetches a demand by identifier.
func (r *DemandRepository) GetByID(ctx context.Context, id string) (*models.Demand, error) {
	query := `SELECT ` + demandColumns + ` FROM demands WHERE id = $1`
	var demand models.Demand
	if err := r.db.GetContext(ctx, &demand, query, id); err != nil {
		return nil, err
	}
	return &demand, nil
}

// NextCodeSequence reserves the next value of the demand code sequence.
func (r *DemandRepository) NextCodeSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.db.GetContext(ctx, &seq, `SELECT nextval('demand_code_seq')`); err != nil {
		return 0, fmt.Errorf("next demand code: %w", err)
	}
	return seq, nil
}

// List returns demands matching the filter (newest first).
func (r *DemandRepository) List(ctx context.Context, filter models.DemandFilter) ([]models.Demand, *models.Pagination, error) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 6)

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.OrganizationID != "" {
		args = append(args, filter.OrganizationID)
		conditions = append(conditions, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR code ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM demands"+where, args...); err != nil {
		return nil, nil, fmt.Errorf("count demands: %w", err)
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
	query := fmt.Sprintf("SELECT %s FROM demands%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		demandColumns, where, len(args)-1, len(args))

	demands := []models.Demand{}
	if err := r.db.SelectContext(ctx, &demands, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list demands: %w", err)
	}

	return demands, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// ListPendingForActor returns demands in the given statuses that carry no
// approval record from the actor at the given level. The anti-join makes
// the per-actor gate a property of the query itself, so the pending queue
// is always re-derived from current store state.
func (r *DemandRepository) ListPendingForActor(ctx context.Context, actorID string, level models.ApprovalLevel, statuses []models.DemandStatus, organizationID string) ([]models.Demand, error) {
	if len(statuses) == 0 {
		return []models.Demand{}, nil
	}

	args := []interface{}{actorID, level}
	placeholders := make([]string, len(statuses))
	for i, status := range statuses {
		args = append(args, status)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	query := fmt.Sprintf(`SELECT %s FROM demands d
	WHERE d.status IN (%s)
	  AND NOT EXISTS (
		SELECT 1 FROM approval_records ar
		WHERE ar.demand_id = d.id AND ar.approver_id = $1 AND ar.level = $2
	  )`, prefixColumns("d", demandColumns), strings.Join(placeholders, ", "))

	if organizationID != "" {
		args = append(args, organizationID)
		query += fmt.Sprintf(" AND d.organization_id = $%d", len(args))
	}
	query += " ORDER BY d.created_at ASC"

	demands := []models.Demand{}
	if err := r.db.SelectContext(ctx, &demands, query, args...); err != nil {
		return nil, fmt.Errorf("list pending demands: %w", err)
	}
	return demands, nil
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, part := range parts {
		parts[i] = alias + "." + part
	}
	return strings.Join(parts, ", ")
}
