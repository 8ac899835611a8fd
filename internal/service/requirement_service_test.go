package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pmolab/gpd-api/internal/dto"
	"github.com/pmolab/gpd-api/internal/models"
	"github.com/pmolab/gpd-api/internal/repository"
	appErrors "github.com/pmolab/gpd-api/pkg/errors"
)

type requirementStoreStub struct {
	requirements map[string]*models.FunctionalRequirement
	signatures   map[string][]models.Signature
	filter       models.RequirementFilter
}

func newRequirementStoreStub() *requirementStoreStub {
	return &requirementStoreStub{
		requirements: make(map[string]*models.FunctionalRequirement),
		signatures:   make(map[string][]models.Signature),
	}
}

func (r *requirementStoreStub) GetByID(ctx context.Context, id string) (*models.FunctionalRequirement, error) {
	if req, ok := r.requirements[id]; ok {
		copy := *req
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *requirementStoreStub) List(ctx context.Context, filter models.RequirementFilter) ([]models.FunctionalRequirement, *models.Pagination, error) {
	r.filter = filter
	result := make([]models.FunctionalRequirement, 0, len(r.requirements))
	for _, req := range r.requirements {
		result = append(result, *req)
	}
	return result, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(result)}, nil
}

func (r *requirementStoreStub) ListSignatures(ctx context.Context, requirementID string) ([]models.Signature, error) {
	return r.signatures[requirementID], nil
}

// signatureWorkflowStub mirrors the transactional store: it appends the
// signature and advances the stored requirement in one step.
type signatureWorkflowStub struct {
	store *requirementStoreStub
	err   error
	next  int
}

func (w *signatureWorkflowStub) CreateRequirement(ctx context.Context, req *models.FunctionalRequirement, audit *models.AuditLog) error {
	if w.err != nil {
		return w.err
	}
	w.next++
	req.ID = "req-" + string(rune('0'+w.next))
	w.store.requirements[req.ID] = req
	return nil
}

func (w *signatureWorkflowStub) ApplySignature(ctx context.Context, params repository.SignatureTxParams) error {
	if w.err != nil {
		return w.err
	}
	req, ok := w.store.requirements[params.Signature.RequirementID]
	if !ok {
		return sql.ErrNoRows
	}
	if req.Version != params.ExpectedVersion || req.Status != models.RequirementStatusPending {
		return repository.ErrVersionConflict
	}
	for _, sig := range w.store.signatures[req.ID] {
		if sig.SignerID == params.Signature.SignerID {
			return repository.ErrDuplicateRecord
		}
	}
	w.store.signatures[req.ID] = append(w.store.signatures[req.ID], *params.Signature)
	req.Status = params.NewStatus
	req.CurrentApproverID = params.NewCurrentApprover
	req.Version++
	return nil
}

type requirementEnv struct {
	store    *requirementStoreStub
	workflow *signatureWorkflowStub
	svc      *RequirementService
}

func newRequirementEnv() *requirementEnv {
	store := newRequirementStoreStub()
	workflow := &signatureWorkflowStub{store: store}
	svc := NewRequirementService(store, workflow, NewTokenSigner("test-secret"), nil, nil, nil)
	return &requirementEnv{store: store, workflow: workflow, svc: svc}
}

func (e *requirementEnv) createChain(t *testing.T, approvers ...string) *models.FunctionalRequirement {
	t.Helper()
	req, err := e.svc.Create(context.Background(), dto.CreateRequirementRequest{
		Title:       "Novo módulo",
		Description: "Cadastro de fornecedores",
		Sector:      "TI",
		ApproverIDs: approvers,
	}, "author-1")
	require.NoError(t, err)
	return req
}

func TestRequirementCreateFreezesChain(t *testing.T) {
	env := newRequirementEnv()

	req := env.createChain(t, "u1", "u2", "u3")
	require.Equal(t, models.RequirementStatusPending, req.Status)
	require.NotNil(t, req.CurrentApproverID)
	require.Equal(t, "u1", *req.CurrentApproverID)
	require.Equal(t, models.StringList{"u1", "u2", "u3"}, req.ApproverIDs)
}

func TestRequirementCreateRejectsDuplicateApprovers(t *testing.T) {
	env := newRequirementEnv()

	_, err := env.svc.Create(context.Background(), dto.CreateRequirementRequest{
		Title:       "Novo módulo",
		Description: "Cadastro",
		Sector:      "TI",
		ApproverIDs: []string{"u1", "u1"},
	}, "author-1")
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRequirementCreateRequiresApprovers(t *testing.T) {
	env := newRequirementEnv()

	_, err := env.svc.Create(context.Background(), dto.CreateRequirementRequest{
		Title:       "Novo módulo",
		Description: "Cadastro",
		Sector:      "TI",
	}, "author-1")
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRequirementFullApprovalRoundTrip(t *testing.T) {
	env := newRequirementEnv()
	req := env.createChain(t, "u1", "u2", "u3")

	first, err := env.svc.Approve(context.Background(), req.ID, "u1", "ok")
	require.NoError(t, err)
	require.Equal(t, models.RequirementStatusPending, first.Status)
	require.Equal(t, "u2", *first.CurrentApproverID)

	second, err := env.svc.Approve(context.Background(), req.ID, "u2", "")
	require.NoError(t, err)
	require.Equal(t, "u3", *second.CurrentApproverID)

	last, err := env.svc.Approve(context.Background(), req.ID, "u3", "")
	require.NoError(t, err)
	require.Equal(t, models.RequirementStatusSigned, last.Status)
	require.Nil(t, last.CurrentApproverID)

	signatures, err := env.store.ListSignatures(context.Background(), req.ID)
	require.NoError(t, err)
	require.Len(t, signatures, 3)
	for _, sig := range signatures {
		require.Equal(t, models.SignatureStatusSigned, sig.Status)
		require.NotEmpty(t, sig.Token)
	}
}

func TestRequirementRejectionTerminatesChain(t *testing.T) {
	env := newRequirementEnv()
	req := env.createChain(t, "u1", "u2", "u3")

	_, err := env.svc.Approve(context.Background(), req.ID, "u1", "")
	require.NoError(t, err)

	rejected, err := env.svc.Reject(context.Background(), req.ID, "u2", "does not meet scope")
	require.NoError(t, err)
	require.Equal(t, models.RequirementStatusRejected, rejected.Status)
	require.Nil(t, rejected.CurrentApproverID)

	_, err = env.svc.Approve(context.Background(), req.ID, "u3", "")
	require.Equal(t, appErrors.ErrWorkflowTerminal.Code, appErrors.FromError(err).Code)

	signatures, err := env.store.ListSignatures(context.Background(), req.ID)
	require.NoError(t, err)
	require.Len(t, signatures, 2)
}

func TestRequirementOnlyCurrentApproverMaySign(t *testing.T) {
	env := newRequirementEnv()
	req := env.createChain(t, "u1", "u2")

	_, err := env.svc.Approve(context.Background(), req.ID, "u2", "")
	require.Equal(t, appErrors.ErrNotCurrentApprover.Code, appErrors.FromError(err).Code)

	_, err = env.svc.Approve(context.Background(), req.ID, "intruder", "")
	require.Equal(t, appErrors.ErrNotCurrentApprover.Code, appErrors.FromError(err).Code)

	signatures, err := env.store.ListSignatures(context.Background(), req.ID)
	require.NoError(t, err)
	require.Empty(t, signatures)
}

func TestRequirementStaleVersionSurfacesConflict(t *testing.T) {
	env := newRequirementEnv()
	req := env.createChain(t, "u1")
	env.workflow.err = repository.ErrVersionConflict

	_, err := env.svc.Approve(context.Background(), req.ID, "u1", "")
	require.Equal(t, appErrors.ErrStaleEntity.Code, appErrors.FromError(err).Code)
}

func TestRequirementUnknownID(t *testing.T) {
	env := newRequirementEnv()

	_, err := env.svc.Approve(context.Background(), "missing", "u1", "")
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRequirementListScopes(t *testing.T) {
	env := newRequirementEnv()
	env.createChain(t, "u1")

	_, _, err := env.svc.List(context.Background(), dto.RequirementScopePending, "u1", 1, 20)
	require.NoError(t, err)
	require.Equal(t, "u1", env.store.filter.CurrentApproverID)
	require.Equal(t, []models.RequirementStatus{models.RequirementStatusPending}, env.store.filter.Status)

	_, _, err = env.svc.List(context.Background(), dto.RequirementScopeHandled, "u1", 1, 20)
	require.NoError(t, err)
	require.Equal(t, "u1", env.store.filter.SignerID)

	_, _, err = env.svc.List(context.Background(), dto.RequirementScopeMine, "author-1", 1, 20)
	require.NoError(t, err)
	require.Equal(t, "author-1", env.store.filter.CreatedBy)

	_, _, err = env.svc.List(context.Background(), "bogus", "u1", 1, 20)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTokenSignerDeterministicUnderFixedInputs(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	signer := NewTokenSigner("test-secret")
	signer.now = func() time.Time { return at }
	signer.nonce = func() string { return "fixed-nonce" }

	tokenA, tsA := signer.Token("u1", "req-1")
	tokenB, tsB := signer.Token("u1", "req-1")
	require.Equal(t, tokenA, tokenB)
	require.Equal(t, at, tsA)
	require.Equal(t, at, tsB)

	otherSigner, _ := signer.Token("u2", "req-1")
	require.NotEqual(t, tokenA, otherSigner)

	otherRequirement, _ := signer.Token("u1", "req-2")
	require.NotEqual(t, tokenA, otherRequirement)
}
