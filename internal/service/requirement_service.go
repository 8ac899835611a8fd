package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pmolab/gpd-api/internal/dto"
	"github.com/pmolab/gpd-api/internal/models"
	"github.com/pmolab/gpd-api/internal/repository"
	appErrors "github.com/pmolab/gpd-api/pkg/errors"
)

type requirementStore interface {
	GetByID(ctx context.Context, id string) (*models.FunctionalRequirement, error)
	List(ctx context.Context, filter models.RequirementFilter) ([]models.FunctionalRequirement, *models.Pagination, error)
	ListSignatures(ctx context.Context, requirementID string) ([]models.Signature, error)
}

type signatureWorkflowStore interface {
	CreateRequirement(ctx context.Context, req *models.FunctionalRequirement, audit *models.AuditLog) error
	ApplySignature(ctx context.Context, params repository.SignatureTxParams) error
}

type signatureObserver interface {
	RecordSignature(status models.SignatureStatus)
	RecordWorkflowConflict(operation string)
}

type signatureNotifier interface {
	NotifySignature(req *models.FunctionalRequirement, sig *models.Signature)
}

// TokenSigner binds a signature to its signer server-side. The token is
// an authenticated reference, not a client-verifiable digital signature.
type TokenSigner struct {
	secret []byte
	now    func() time.Time
	nonce  func() string
}

// NewTokenSigner builds a signer around the shared workflow secret.
func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{
		secret: []byte(secret),
		now:    func() time.Time { return time.Now().UTC() },
		nonce:  randomNonce,
	}
}

// Token computes the HMAC token for one signer acting on one requirement.
func (t *TokenSigner) Token(signerID, requirementID string) (string, time.Time) {
	ts := t.now()
	mac := hmac.New(sha256.New, t.secret)
	fmt.Fprintf(mac, "%s|%s|%s|%s", signerID, requirementID, ts.Format(time.RFC3339Nano), t.nonce())
	return hex.EncodeToString(mac.Sum(nil)), ts
}

func randomNonce() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// RequirementService coordinates the ordered signature chain of a
// functional requirement. The chain is frozen at creation; afterwards the
// requirement is fully determined by the stream of signatures.
type RequirementService struct {
	store    requirementStore
	workflow signatureWorkflowStore
	signer   *TokenSigner
	metrics  signatureObserver
	notifier signatureNotifier
	logger   *zap.Logger
}

// NewRequirementService constructs the service.
func NewRequirementService(store requirementStore, workflow signatureWorkflowStore, signer *TokenSigner, metrics signatureObserver, notifier signatureNotifier, logger *zap.Logger) *RequirementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequirementService{
		store:    store,
		workflow: workflow,
		signer:   signer,
		metrics:  metrics,
		notifier: notifier,
		logger:   logger,
	}
}

// Create opens a new signature chain with a frozen approver sequence.
func (s *RequirementService) Create(ctx context.Context, req dto.CreateRequirementRequest, creatorID string) (*models.FunctionalRequirement, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	sector := strings.TrimSpace(req.Sector)
	if title == "" || description == "" || sector == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title, description and sector are required")
	}
	if len(req.ApproverIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one approver is required")
	}
	seen := make(map[string]struct{}, len(req.ApproverIDs))
	approvers := make([]string, 0, len(req.ApproverIDs))
	for _, id := range req.ApproverIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "approver ids must not be empty")
		}
		if _, dup := seen[id]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "approver list contains duplicate identities")
		}
		seen[id] = struct{}{}
		approvers = append(approvers, id)
	}

	first := approvers[0]
	requirement := &models.FunctionalRequirement{
		Title:             title,
		Description:       description,
		Sector:            sector,
		ApproverIDs:       approvers,
		CurrentApproverID: &first,
		Status:            models.RequirementStatusPending,
		CreatedBy:         creatorID,
	}

	newValues, _ := json.Marshal(map[string]interface{}{
		"title":        title,
		"sector":       sector,
		"approver_ids": approvers,
	})
	audit := &models.AuditLog{
		ActorID:   &creatorID,
		Action:    models.AuditActionRequirementCreate,
		Resource:  "functional_requirement",
		NewValues: newValues,
		IPAddress: "system",
		UserAgent: "requirement-service",
	}

	if err := s.workflow.CreateRequirement(ctx, requirement, audit); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create requirement")
	}

	s.logger.Info("functional requirement created",
		zap.String("requirement_id", requirement.ID),
		zap.Int("approvers", len(approvers)),
	)
	return requirement, nil
}

// Approve records the current approver's signature and advances the
// cursor, or closes the chain as signed when the last approver acts.
func (s *RequirementService) Approve(ctx context.Context, requirementID, actorID, comment string) (*models.FunctionalRequirement, error) {
	return s.sign(ctx, requirementID, actorID, comment, models.SignatureStatusSigned)
}

// Reject records the current approver's rejection and terminates the
// chain. Approvers after the rejecting one are never reached and never
// produce a signature.
func (s *RequirementService) Reject(ctx context.Context, requirementID, actorID, comment string) (*models.FunctionalRequirement, error) {
	return s.sign(ctx, requirementID, actorID, comment, models.SignatureStatusRejected)
}

func (s *RequirementService) sign(ctx context.Context, requirementID, actorID, comment string, outcome models.SignatureStatus) (*models.FunctionalRequirement, error) {
	requirement, err := s.store.GetByID(ctx, requirementID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requirement")
	}

	if requirement.Status.Terminal() {
		return nil, appErrors.ErrWorkflowTerminal
	}
	if requirement.CurrentApproverID == nil || *requirement.CurrentApproverID != actorID {
		return nil, appErrors.ErrNotCurrentApprover
	}

	token, signedAt := s.signer.Token(actorID, requirement.ID)
	signature := &models.Signature{
		RequirementID: requirement.ID,
		SignerID:      actorID,
		Status:        outcome,
		Token:         token,
		SignedAt:      signedAt,
	}
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		signature.Comment = &trimmed
	}

	newStatus, nextApprover := s.advance(requirement, actorID, outcome)

	params := repository.SignatureTxParams{
		Signature:          signature,
		NewStatus:          newStatus,
		NewCurrentApprover: nextApprover,
		ExpectedVersion:    requirement.Version,
		Audit:              signatureAudit(actorID, requirement, newStatus, outcome),
	}
	if err := s.workflow.ApplySignature(ctx, params); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, appErrors.ErrDuplicateDecision
		case errors.Is(err, repository.ErrVersionConflict):
			if s.metrics != nil {
				s.metrics.RecordWorkflowConflict("requirement_signature")
			}
			return nil, appErrors.ErrStaleEntity
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply signature")
	}

	requirement.Status = newStatus
	requirement.CurrentApproverID = nextApprover
	requirement.Version++
	requirement.UpdatedAt = signedAt

	if s.metrics != nil {
		s.metrics.RecordSignature(outcome)
	}
	if s.notifier != nil {
		s.notifier.NotifySignature(requirement, signature)
	}
	s.logger.Info("requirement signature applied",
		zap.String("requirement_id", requirement.ID),
		zap.String("signer_id", actorID),
		zap.String("outcome", string(outcome)),
		zap.String("status", string(newStatus)),
	)
	return requirement, nil
}

// advance computes the chain's next state after the current approver
// acted. Rejection terminates immediately; approval moves the cursor or,
// on the last approver, closes the chain as signed.
func (s *RequirementService) advance(requirement *models.FunctionalRequirement, actorID string, outcome models.SignatureStatus) (models.RequirementStatus, *string) {
	if outcome == models.SignatureStatusRejected {
		return models.RequirementStatusRejected, nil
	}
	position := requirement.ApproverPosition(actorID)
	if position < 0 || position == len(requirement.ApproverIDs)-1 {
		return models.RequirementStatusSigned, nil
	}
	next := requirement.ApproverIDs[position+1]
	return models.RequirementStatusPending, &next
}

// Get returns one requirement with its signatures.
func (s *RequirementService) Get(ctx context.Context, id string) (*models.FunctionalRequirement, []models.Signature, error) {
	requirement, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.ErrNotFound
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requirement")
	}
	signatures, err := s.store.ListSignatures(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load signatures")
	}
	return requirement, signatures, nil
}

// List returns requirements for one of the actor-centric scopes.
func (s *RequirementService) List(ctx context.Context, scope, actorID string, page, pageSize int) ([]models.FunctionalRequirement, *models.Pagination, error) {
	filter := models.RequirementFilter{Page: page, PageSize: pageSize}
	switch scope {
	case dto.RequirementScopePending:
		filter.CurrentApproverID = actorID
		filter.Status = []models.RequirementStatus{models.RequirementStatusPending}
	case dto.RequirementScopeHandled:
		filter.SignerID = actorID
	case dto.RequirementScopeMine:
		filter.CreatedBy = actorID
	case dto.RequirementScopeAll, "":
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "scope must be pending, handled, mine or all")
	}

	requirements, pagination, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requirements")
	}
	return requirements, pagination, nil
}

func signatureAudit(actorID string, requirement *models.FunctionalRequirement, newStatus models.RequirementStatus, outcome models.SignatureStatus) *models.AuditLog {
	action := models.AuditActionRequirementSign
	if outcome == models.SignatureStatusRejected {
		action = models.AuditActionRequirementReject
	}
	oldValues, _ := json.Marshal(map[string]interface{}{
		"status":              string(requirement.Status),
		"current_approver_id": requirement.CurrentApproverID,
	})
	newValues, _ := json.Marshal(map[string]string{"status": string(newStatus)})
	return &models.AuditLog{
		ActorID:    &actorID,
		Action:     action,
		Resource:   "functional_requirement",
		ResourceID: &requirement.ID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  "system",
		UserAgent:  "requirement-service",
	}
}
