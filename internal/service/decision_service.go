package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/pmolab/gpd-api/internal/dto"
	"github.com/pmolab/gpd-api/internal/models"
	"github.com/pmolab/gpd-api/internal/repository"
	appErrors "github.com/pmolab/gpd-api/pkg/errors"
)

type demandReader interface {
	GetByID(ctx context.Context, id string) (*models.Demand, error)
}

type decisionGate interface {
	ExistsFor(ctx context.Context, demandID, approverID string, level models.ApprovalLevel) (bool, error)
}

type routingStore interface {
	OrganizationHasValidator(ctx context.Context, organizationID string) (bool, error)
}

type decisionWorkflowStore interface {
	RecordDecision(ctx context.Context, params repository.DecisionTxParams) error
}

type decisionObserver interface {
	RecordDecision(level models.ApprovalLevel, decision models.ApprovalDecision)
	RecordWorkflowConflict(operation string)
}

type decisionNotifier interface {
	NotifyDecision(demand *models.Demand, record *models.ApprovalRecord)
}

// DecisionService applies approve / reject / request-info decisions on
// behalf of the acting approver. Authorization, the per-actor uniqueness
// gate, and the status transition are all enforced here at the mutation
// boundary, not in any client.
type DecisionService struct {
	demands  demandReader
	records  decisionGate
	routing  routingStore
	workflow decisionWorkflowStore
	roles    roleResolver
	metrics  decisionObserver
	notifier decisionNotifier
	logger   *zap.Logger
}

// NewDecisionService constructs the service.
func NewDecisionService(demands demandReader, records decisionGate, routing routingStore, workflow decisionWorkflowStore, roles roleResolver, metrics decisionObserver, notifier decisionNotifier, logger *zap.Logger) *DecisionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DecisionService{
		demands:  demands,
		records:  records,
		routing:  routing,
		workflow: workflow,
		roles:    roles,
		metrics:  metrics,
		notifier: notifier,
		logger:   logger,
	}
}

// RecordDecision appends one approval record and advances the demand.
// The record insert, the status transition, and the audit entry commit as
// a single unit. A demand whose status or version moved since the read
// surfaces as a conflict so the caller can refresh and retry.
func (s *DecisionService) RecordDecision(ctx context.Context, demandID, actorID string, req dto.DecisionRequest) (*dto.DecisionResult, error) {
	decision := models.ApprovalDecision(strings.ToUpper(strings.TrimSpace(string(req.Decision))))
	switch decision {
	case models.DecisionApproved, models.DecisionRejected, models.DecisionInfoRequested:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "decision must be APPROVED, REJECTED or INFO_REQUESTED")
	}
	reason := strings.TrimSpace(req.Reason)
	if decision == models.DecisionRejected && reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a reason is required when rejecting")
	}

	demand, err := s.demands.GetByID(ctx, demandID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load demand")
	}

	role, err := s.roles.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if demand.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrWorkflowTerminal, "demand already reached a terminal state")
	}
	if !statusActionable(role, demand) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "demand is not awaiting a decision at your approval level")
	}

	already, err := s.records.ExistsFor(ctx, demand.ID, actorID, role.Level)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prior decisions")
	}
	if already {
		return nil, appErrors.ErrDuplicateDecision
	}

	newStatus, err := s.nextStatus(ctx, role.Level, decision, demand)
	if err != nil {
		return nil, err
	}

	record := &models.ApprovalRecord{
		DemandID:   demand.ID,
		ApproverID: actorID,
		Level:      role.Level,
		Decision:   decision,
	}
	if reason != "" {
		record.Reason = &reason
	}

	audit := decisionAudit(actorID, demand, newStatus, record)
	params := repository.DecisionTxParams{
		Record:          record,
		NewStatus:       newStatus,
		ExpectedStatus:  demand.Status,
		ExpectedVersion: demand.Version,
		Audit:           audit,
	}
	if err := s.workflow.RecordDecision(ctx, params); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, appErrors.ErrDuplicateDecision
		case errors.Is(err, repository.ErrVersionConflict):
			if s.metrics != nil {
				s.metrics.RecordWorkflowConflict("demand_decision")
			}
			return nil, appErrors.ErrStaleEntity
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record decision")
	}

	oldStatus := demand.Status
	demand.Status = newStatus
	demand.Version++
	demand.UpdatedAt = record.CreatedAt

	if s.metrics != nil {
		s.metrics.RecordDecision(role.Level, decision)
	}
	if s.notifier != nil {
		s.notifier.NotifyDecision(demand, record)
	}
	s.logger.Info("approval decision recorded",
		zap.String("demand_id", demand.ID),
		zap.String("approver_id", actorID),
		zap.String("level", string(role.Level)),
		zap.String("decision", string(decision)),
		zap.String("from_status", string(oldStatus)),
		zap.String("to_status", string(newStatus)),
	)

	return &dto.DecisionResult{Demand: demand, Record: record}, nil
}

// nextStatus is the approval state machine's transition table.
func (s *DecisionService) nextStatus(ctx context.Context, level models.ApprovalLevel, decision models.ApprovalDecision, demand *models.Demand) (models.DemandStatus, error) {
	switch decision {
	case models.DecisionRejected:
		return models.DemandStatusRejected, nil
	case models.DecisionInfoRequested:
		return models.DemandStatusStandBy, nil
	}

	switch level {
	case models.ApprovalLevelManager:
		hasValidator, err := s.routing.OrganizationHasValidator(ctx, demand.OrganizationID)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve validation routing")
		}
		if hasValidator {
			return models.DemandStatusAwaitingITValidation, nil
		}
		return models.DemandStatusAwaitingCommittee, nil
	case models.ApprovalLevelValidator:
		return models.DemandStatusAwaitingCommittee, nil
	case models.ApprovalLevelCommittee:
		return models.DemandStatusApproved, nil
	}
	return "", appErrors.Clone(appErrors.ErrInternal, "unknown approval level")
}

func statusActionable(role *models.ResolvedRole, demand *models.Demand) bool {
	for _, status := range PendingStatuses(role.Level) {
		if demand.Status == status {
			if role.Level == models.ApprovalLevelValidator && role.OrganizationID != demand.OrganizationID {
				return false
			}
			return true
		}
	}
	return false
}

func decisionAudit(actorID string, demand *models.Demand, newStatus models.DemandStatus, record *models.ApprovalRecord) *models.AuditLog {
	oldValues, _ := json.Marshal(map[string]string{"status": string(demand.Status)})
	newValues, _ := json.Marshal(map[string]string{
		"status":   string(newStatus),
		"level":    string(record.Level),
		"decision": string(record.Decision),
	})
	return &models.AuditLog{
		ActorID:    &actorID,
		Action:     models.AuditActionDemandDecision,
		Resource:   "demand",
		ResourceID: &demand.ID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  "system",
		UserAgent:  "decision-service",
	}
}
