package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pmolab/gpd-api/internal/models"
)

const pqUniqueViolation = "23505"

// WorkflowRepository owns the multi-table transactions of the approval
// core. Every mutating workflow operation commits the state change, its
// append-only record, and the audit entry as a single unit, or not at all.
type WorkflowRepository struct {
	db *sqlx.DB
}

// NewWorkflowRepository constructs the repository.
func NewWorkflowRepository(db *sqlx.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// DecisionTxParams describes one approval decision write.
type DecisionTxParams struct {
	Record          *models.ApprovalRecord
	NewStatus       models.DemandStatus
	ExpectedStatus  models.DemandStatus
	ExpectedVersion int
	Audit           *models.AuditLog
}

// RecordDecision appends the approval record, advances the demand status
// with a version guard, and writes the audit entry. A concurrent decision
// surfaces as ErrVersionConflict; a repeated decision by the same actor at
// the same level surfaces as ErrDuplicateRecord.
func (r *WorkflowRepository) RecordDecision(ctx context.Context, params DecisionTxParams) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		record := params.Record
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now().UTC()
		}
		const insertRecord = `INSERT INTO approval_records
		(id, demand_id, approver_id, level, decision, reason, created_at)
		VALUES (:id, :demand_id, :approver_id, :level, :decision, :reason, :created_at)`
		if _, err := tx.NamedExecContext(ctx, insertRecord, record); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateRecord
			}
			return fmt.Errorf("insert approval record: %w", err)
		}

		const updateDemand = `UPDATE demands
		SET status = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND status = $4 AND version = $5`
		result, err := tx.ExecContext(ctx, updateDemand,
			params.NewStatus, record.CreatedAt, record.DemandID, params.ExpectedStatus, params.ExpectedVersion)
		if err != nil {
			return fmt.Errorf("update demand status: %w", err)
		}
		if affected, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("update demand status: %w", err)
		} else if affected == 0 {
			return ErrVersionConflict
		}

		return insertAudit(ctx, tx, params.Audit)
	})
}

// CreateDemand inserts the demand together with its creation audit entry.
func (r *WorkflowRepository) CreateDemand(ctx context.Context, demand *models.Demand, audit *models.AuditLog) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if demand.ID == "" {
			demand.ID = uuid.NewString()
		}
		now := time.Now().UTC()
		if demand.CreatedAt.IsZero() {
			demand.CreatedAt = now
		}
		demand.UpdatedAt = demand.CreatedAt
		demand.Version = 1
		const insert = `INSERT INTO demands
		(id, code, title, description, status, organization_id, created_by, version, created_at, updated_at)
		VALUES (:id, :code, :title, :description, :status, :organization_id, :created_by, :version, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insert, demand); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateRecord
			}
			return fmt.Errorf("insert demand: %w", err)
		}
		if audit != nil {
			audit.ResourceID = &demand.ID
		}
		return insertAudit(ctx, tx, audit)
	})
}

// CreateRequirement inserts the requirement together with its creation
// audit entry.
func (r *WorkflowRepository) CreateRequirement(ctx context.Context, req *models.FunctionalRequirement, audit *models.AuditLog) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		now := time.Now().UTC()
		if req.CreatedAt.IsZero() {
			req.CreatedAt = now
		}
		req.UpdatedAt = req.CreatedAt
		req.Version = 1
		const insert = `INSERT INTO functional_requirements
		(id, title, description, sector, approver_ids, current_approver_id, status, created_by, version, created_at, updated_at)
		VALUES (:id, :title, :description, :sector, :approver_ids, :current_approver_id, :status, :created_by, :version, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insert, req); err != nil {
			return fmt.Errorf("insert requirement: %w", err)
		}
		if audit != nil {
			audit.ResourceID = &req.ID
		}
		return insertAudit(ctx, tx, audit)
	})
}

// SignatureTxParams describes one signature-chain advance.
type SignatureTxParams struct {
	Signature          *models.Signature
	NewStatus          models.RequirementStatus
	NewCurrentApprover *string
	ExpectedVersion    int
	Audit              *models.AuditLog
}

// ApplySignature appends the signature, moves the requirement's cursor or
// terminates it, and writes the audit entry. The version guard turns a
// race between two clients of the same chain into ErrVersionConflict; a
// second signature by the same signer surfaces as ErrDuplicateRecord.
func (r *WorkflowRepository) ApplySignature(ctx context.Context, params SignatureTxParams) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		sig := params.Signature
		if sig.ID == "" {
			sig.ID = uuid.NewString()
		}
		if sig.SignedAt.IsZero() {
			sig.SignedAt = time.Now().UTC()
		}
		const insertSignature = `INSERT INTO signatures
		(id, requirement_id, signer_id, status, token, comment, signed_at)
		VALUES (:id, :requirement_id, :signer_id, :status, :token, :comment, :signed_at)`
		if _, err := tx.NamedExecContext(ctx, insertSignature, sig); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateRecord
			}
			return fmt.Errorf("insert signature: %w", err)
		}

		const updateRequirement = `UPDATE functional_requirements
		SET status = $1, current_approver_id = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND status = $5 AND version = $6`
		result, err := tx.ExecContext(ctx, updateRequirement,
			params.NewStatus, params.NewCurrentApprover, sig.SignedAt, sig.RequirementID,
			models.RequirementStatusPending, params.ExpectedVersion)
		if err != nil {
			return fmt.Errorf("update requirement: %w", err)
		}
		if affected, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("update requirement: %w", err)
		} else if affected == 0 {
			return ErrVersionConflict
		}

		return insertAudit(ctx, tx, params.Audit)
	})
}

func (r *WorkflowRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func insertAudit(ctx context.Context, tx *sqlx.Tx, log *models.AuditLog) error {
	if log == nil {
		return nil
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const insert = `INSERT INTO audit_logs
	(id, actor_id, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at)
	VALUES (:id, :actor_id, :action, :resource, :resource_id, :old_values, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, log); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
