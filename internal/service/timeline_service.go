package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pmolab/gpd-api/internal/models"
	appErrors "github.com/pmolab/gpd-api/pkg/errors"
)

type auditReader interface {
	ListByResource(ctx context.Context, resource, resourceID string) ([]models.AuditLog, error)
}

type approvalRecordReader interface {
	ListByDemand(ctx context.Context, demandID string) ([]models.ApprovalRecord, error)
}

type signatureReader interface {
	ListSignatures(ctx context.Context, requirementID string) ([]models.Signature, error)
}

type nameResolver interface {
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

type timelineCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// TimelineService merges audit entries, approval records and signatures
// into one chronologically sorted history per entity. It is strictly a
// read-side consumer of the append-only trails; display names may be
// served from Redis, the events themselves never are.
type TimelineService struct {
	audits     auditReader
	records    approvalRecordReader
	signatures signatureReader
	names      nameResolver
	cache      timelineCache
	nameTTL    time.Duration
	logger     *zap.Logger
}

// NewTimelineService constructs the service. cache may be nil.
func NewTimelineService(audits auditReader, records approvalRecordReader, signatures signatureReader, names nameResolver, cache timelineCache, nameTTL time.Duration, logger *zap.Logger) *TimelineService {
	if nameTTL <= 0 {
		nameTTL = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimelineService{
		audits:     audits,
		records:    records,
		signatures: signatures,
		names:      names,
		cache:      cache,
		nameTTL:    nameTTL,
		logger:     logger,
	}
}

// DemandTimeline returns the merged history of one demand.
func (s *TimelineService) DemandTimeline(ctx context.Context, demandID string) ([]models.TimelineEntry, error) {
	logs, err := s.audits.ListByResource(ctx, "demand", demandID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit trail")
	}
	records, err := s.records.ListByDemand(ctx, demandID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load approval records")
	}

	entries := make([]models.TimelineEntry, 0, len(logs)+len(records))
	for _, log := range logs {
		entries = append(entries, auditEntry(log))
	}
	for _, record := range records {
		detail := fmt.Sprintf("%s decision at %s level", record.Decision, record.Level)
		if record.Reason != nil {
			detail += ": " + *record.Reason
		}
		entries = append(entries, models.TimelineEntry{
			Source:     "approval_record",
			Action:     string(record.Decision),
			ActorID:    record.ApproverID,
			Detail:     detail,
			OccurredAt: record.CreatedAt,
		})
	}

	return s.finalize(ctx, entries)
}

// RequirementTimeline returns the merged history of one requirement.
func (s *TimelineService) RequirementTimeline(ctx context.Context, requirementID string) ([]models.TimelineEntry, error) {
	logs, err := s.audits.ListByResource(ctx, "functional_requirement", requirementID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit trail")
	}
	signatures, err := s.signatures.ListSignatures(ctx, requirementID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load signatures")
	}

	entries := make([]models.TimelineEntry, 0, len(logs)+len(signatures))
	for _, log := range logs {
		entries = append(entries, auditEntry(log))
	}
	for _, sig := range signatures {
		detail := fmt.Sprintf("signature %s", sig.Status)
		if sig.Comment != nil {
			detail += ": " + *sig.Comment
		}
		entries = append(entries, models.TimelineEntry{
			Source:     "signature",
			Action:     string(sig.Status),
			ActorID:    sig.SignerID,
			Detail:     detail,
			OccurredAt: sig.SignedAt,
		})
	}

	return s.finalize(ctx, entries)
}

func (s *TimelineService) finalize(ctx context.Context, entries []models.TimelineEntry) ([]models.TimelineEntry, error) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredAt.Before(entries[j].OccurredAt)
	})

	ids := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.ActorID == "" {
			continue
		}
		if _, ok := seen[entry.ActorID]; ok {
			continue
		}
		seen[entry.ActorID] = struct{}{}
		ids = append(ids, entry.ActorID)
	}

	names, err := s.resolveNames(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to resolve actor names", zap.Error(err))
		names = map[string]string{}
	}
	for i := range entries {
		if name, ok := names[entries[i].ActorID]; ok {
			entries[i].ActorName = name
		}
	}
	return entries, nil
}

func (s *TimelineService) resolveNames(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	names := make(map[string]string, len(ids))
	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		var cached string
		if s.cache != nil {
			if err := s.cache.Get(ctx, profileCacheKey(id), &cached); err == nil && cached != "" {
				names[id] = cached
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		resolved, err := s.names.DisplayNames(ctx, missing)
		if err != nil {
			return nil, err
		}
		for id, name := range resolved {
			names[id] = name
			if s.cache != nil {
				if err := s.cache.Set(ctx, profileCacheKey(id), name, s.nameTTL); err != nil {
					s.logger.Warn("failed to cache profile name", zap.String("actor_id", id), zap.Error(err))
				}
			}
		}
	}
	return names, nil
}

func profileCacheKey(actorID string) string {
	return "profile:name:" + actorID
}

func auditEntry(log models.AuditLog) models.TimelineEntry {
	entry := models.TimelineEntry{
		Source:     "audit",
		Action:     log.Action,
		OldValues:  log.OldValues,
		NewValues:  log.NewValues,
		OccurredAt: log.CreatedAt,
	}
	if log.ActorID != nil {
		entry.ActorID = *log.ActorID
	}
	return entry
}
