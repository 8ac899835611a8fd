package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pmolab/gpd-api/internal/models"
	"github.com/pmolab/gpd-api/pkg/jobs"
)

const (
	notifyJobDecision  = "demand_decision"
	notifyJobSignature = "requirement_signature"
)

type decisionEvent struct {
	Demand *models.Demand
	Record *models.ApprovalRecord
}

type signatureEvent struct {
	Requirement *models.FunctionalRequirement
	Signature   *models.Signature
}

// NotifierService fans workflow events out to downstream consumers via
// the background job queue. Delivery is best-effort and decoupled from
// the workflow transaction; today the sink is the structured log, which
// external notification channels tail.
type NotifierService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotifierService builds the notifier and its queue.
func NewNotifierService(logger *zap.Logger, cfg jobs.QueueConfig) *NotifierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotifierService{logger: logger}
	cfg.Logger = logger
	s.queue = jobs.NewQueue("workflow-notifications", s.handle, cfg)
	return s
}

// Start launches the queue workers.
func (s *NotifierService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *NotifierService) Stop() {
	s.queue.Stop()
}

// QueueDepth reports the number of pending notification jobs.
func (s *NotifierService) QueueDepth() int {
	return s.queue.Depth()
}

// NotifyDecision enqueues a demand decision event.
func (s *NotifierService) NotifyDecision(demand *models.Demand, record *models.ApprovalRecord) {
	if demand == nil || record == nil {
		return
	}
	job := jobs.Job{ID: record.ID, Type: notifyJobDecision, Payload: decisionEvent{Demand: demand, Record: record}}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue decision notification", zap.String("demand_id", demand.ID), zap.Error(err))
	}
}

// NotifySignature enqueues a requirement signature event.
func (s *NotifierService) NotifySignature(req *models.FunctionalRequirement, sig *models.Signature) {
	if req == nil || sig == nil {
		return
	}
	job := jobs.Job{ID: sig.ID, Type: notifyJobSignature, Payload: signatureEvent{Requirement: req, Signature: sig}}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue signature notification", zap.String("requirement_id", req.ID), zap.Error(err))
	}
}

func (s *NotifierService) handle(ctx context.Context, job jobs.Job) error {
	switch event := job.Payload.(type) {
	case decisionEvent:
		s.logger.Info("workflow notification",
			zap.String("type", job.Type),
			zap.String("demand_id", event.Demand.ID),
			zap.String("demand_code", event.Demand.Code),
			zap.String("status", string(event.Demand.Status)),
			zap.String("approver_id", event.Record.ApproverID),
			zap.String("decision", string(event.Record.Decision)),
		)
	case signatureEvent:
		s.logger.Info("workflow notification",
			zap.String("type", job.Type),
			zap.String("requirement_id", event.Requirement.ID),
			zap.String("status", string(event.Requirement.Status)),
			zap.String("signer_id", event.Signature.SignerID),
			zap.String("outcome", string(event.Signature.Status)),
		)
	default:
		s.logger.Warn("unknown notification payload", zap.String("type", job.Type))
	}
	return nil
}
