// Package services contains the orchestration ring around the deterministic
// reconciliation core: the verification pass, event publishing and the
// review-queue operations.
package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/DealDocs/dealdocs-backend/config"
	apperrors "github.com/DealDocs/dealdocs-backend/errors"
	"github.com/DealDocs/dealdocs-backend/internal/gate"
	"github.com/DealDocs/dealdocs-backend/internal/reconcile"
	"github.com/DealDocs/dealdocs-backend/internal/store"
	"github.com/DealDocs/dealdocs-backend/internal/tolerance"
	"github.com/DealDocs/dealdocs-backend/logger"
	"github.com/DealDocs/dealdocs-backend/types"
)

// VerificationService runs one synchronous verification pass per deal once
// all extractions are available: cross-document checks, then the gate, then
// persistence of any review items and a pipeline event.
type VerificationService struct {
	reviewStore store.ReviewStore
	publisher   types.EventPublisher
	gate        *gate.Gate
	log         *zap.SugaredLogger
	metrics     *verificationMetrics
}

type verificationMetrics struct {
	decisions   *prometheus.CounterVec
	reviewItems *prometheus.CounterVec
	autoPassed  prometheus.Counter
}

var (
	verificationMetricsOnce   sync.Once
	sharedVerificationMetrics *verificationMetrics
)

// initVerificationMetrics registers the collectors once; subsequent service
// instances share them.
func initVerificationMetrics() *verificationMetrics {
	verificationMetricsOnce.Do(func() {
		sharedVerificationMetrics = &verificationMetrics{
			decisions: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "dealdocs_gate_decisions_total",
				Help: "Gate decisions by outcome",
			}, []string{"outcome"}),
			reviewItems: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "dealdocs_review_items_total",
				Help: "Review items surfaced, by check kind",
			}, []string{"check_kind"}),
			autoPassed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "dealdocs_gate_auto_passed_total",
				Help: "Checks rescued by the gate's second tolerance tier",
			}),
		}
	})
	return sharedVerificationMetrics
}

// NewVerificationService wires the service with its dependencies.
func NewVerificationService(reviewStore store.ReviewStore, publisher types.EventPublisher, tolerances gate.Tolerances) *VerificationService {
	return &VerificationService{
		reviewStore: reviewStore,
		publisher:   publisher,
		gate:        gate.New(tolerances),
		log:         logger.GetLogger(),
		metrics:     initVerificationMetrics(),
	}
}

// GateTolerancesFromConfig converts the configured rescue thresholds into
// the gate's decimal form.
func GateTolerancesFromConfig(cfg config.ReconciliationConfig) gate.Tolerances {
	return gate.Tolerances{
		Arithmetic:    tolerance.New(cfg.Arithmetic.Absolute, cfg.Arithmetic.Percent),
		CrossDocument: tolerance.New(cfg.CrossDocument.Absolute, cfg.CrossDocument.Percent),
		OCR:           tolerance.New(cfg.OCR.Absolute, cfg.OCR.Percent),
	}
}

// verificationEventPayload is what downstream consumers get with the event.
type verificationEventPayload struct {
	CanProceed      bool              `json:"canProceed"`
	ReviewItemCount int               `json:"reviewItemCount"`
	AutoPassedCount int               `json:"autoPassedCount"`
	Summary         types.GateSummary `json:"summary"`
}

// VerifyDeal runs the full reconciliation pass for one deal. The gate
// evaluation itself is deterministic and side-effect free; everything
// around it (persistence, events) happens only after the verdict is final.
func (s *VerificationService) VerifyDeal(ctx context.Context, dealID string, req types.VerificationRequest) (*types.GateResult, error) {
	crossDocChecks := reconcile.RunCrossDocumentChecks(req.Extractions)
	result := s.gate.Evaluate(req.ArithmeticChecks, crossDocChecks, req.OCRComparisons, req.DocumentRef)

	if len(result.ReviewItems) > 0 {
		created, err := s.reviewStore.CreateReviewItems(ctx, dealID, result.ReviewItems)
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		result.ReviewItems = created
		for _, item := range created {
			s.metrics.reviewItems.WithLabelValues(string(item.CheckKind)).Inc()
		}
	}

	outcome := "passed"
	eventType := types.EventTypeVerificationPassed
	if !result.CanProceed {
		outcome = "review_required"
		eventType = types.EventTypeVerificationReviewRequired
	}
	s.metrics.decisions.WithLabelValues(outcome).Inc()
	for i := 0; i < result.AutoPassedCount; i++ {
		s.metrics.autoPassed.Inc()
	}

	if err := s.publishResult(ctx, dealID, eventType, result); err != nil {
		// The verdict stands even when the event does not go out; the
		// orchestration layer can poll as a fallback.
		s.log.Errorw("Failed to publish verification event", "deal_id", dealID, "error", err)
	}

	s.log.Infow("Deal verification completed",
		"deal_id", dealID,
		"can_proceed", result.CanProceed,
		"review_items", len(result.ReviewItems),
		"auto_passed", result.AutoPassedCount,
		"cross_doc_checks", len(crossDocChecks),
	)
	return &result, nil
}

func (s *VerificationService) publishResult(ctx context.Context, dealID string, eventType types.EventType, result types.GateResult) error {
	payload, err := json.Marshal(verificationEventPayload{
		CanProceed:      result.CanProceed,
		ReviewItemCount: len(result.ReviewItems),
		AutoPassedCount: result.AutoPassedCount,
		Summary:         result.Summary,
	})
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, dealID, types.Event{
		BaseEvent: types.BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			DealID:    dealID,
			Timestamp: time.Now().UTC(),
			Version:   1,
		},
		Metadata: types.EventMetadata{Source: "verification_service"},
		Payload:  payload,
	})
}

// ListReviewItems returns a deal's review queue.
func (s *VerificationService) ListReviewItems(ctx context.Context, dealID string) ([]types.ReviewItem, error) {
	items, err := s.reviewStore.ListReviewItems(ctx, dealID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return items, nil
}

// ResolveReviewItem records a human's terminal decision on a review item
// and notifies the pipeline.
func (s *VerificationService) ResolveReviewItem(ctx context.Context, dealID, itemID string, status types.ReviewStatus, note string) error {
	err := s.reviewStore.ResolveReviewItem(ctx, itemID, status, note)
	switch {
	case err == nil:
	case err == store.ErrNotFound:
		return apperrors.NotFound("Review item", itemID)
	case err == store.ErrAlreadyResolved:
		return apperrors.Conflict("Review item already resolved", itemID)
	default:
		return apperrors.NewDatabaseError(err)
	}

	payload, _ := json.Marshal(map[string]string{"itemId": itemID, "status": string(status)})
	if err := s.publisher.Publish(ctx, dealID, types.Event{
		BaseEvent: types.BaseEvent{
			ID:        uuid.New().String(),
			Type:      types.EventTypeReviewItemResolved,
			DealID:    dealID,
			Timestamp: time.Now().UTC(),
			Version:   1,
		},
		Metadata: types.EventMetadata{Source: "verification_service"},
		Payload:  payload,
	}); err != nil {
		s.log.Errorw("Failed to publish resolution event", "deal_id", dealID, "item_id", itemID, "error", err)
	}
	return nil
}
