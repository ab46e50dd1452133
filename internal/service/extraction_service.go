package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"claimdesk/internal/domain"
	"claimdesk/internal/orchestrator"
	"claimdesk/internal/port"
)

// ExtractInput is the DTO for a single document extraction.
type ExtractInput struct {
	Text           string            `json:"text"`
	OCRQuality     float64           `json:"ocr_quality"`
	SourceMetadata map[string]string `json:"source_metadata,omitempty"`
}

// ExtractResult pairs one outcome with its run stats and, when persisted,
// its stored record ID.
type ExtractResult struct {
	Outcome  *domain.ExtractionOutcome `json:"outcome"`
	Stats    orchestrator.RunStats     `json:"stats"`
	RecordID *uuid.UUID                `json:"record_id,omitempty"`
}

// BatchStats aggregates stats across one batch.
type BatchStats struct {
	Documents    int `json:"documents"`
	Accepted     int `json:"accepted"`
	ManualReview int `json:"manual_review"`
	Rejected     int `json:"rejected"`
	Duplicates   int `json:"duplicates"`
	ModelFailed  int `json:"model_failures"`
}

// ExtractionService runs documents through the orchestrator, enforces the
// per-document budget, and persists outcomes when a repository is wired.
type ExtractionService struct {
	orch        *orchestrator.Orchestrator
	repo        port.OutcomeRepository
	docTimeout  time.Duration
	concurrency int
}

// NewExtractionService wires the service. repo may be nil for transient
// (CLI) use; concurrency bounds simultaneous in-flight model calls.
func NewExtractionService(orch *orchestrator.Orchestrator, repo port.OutcomeRepository, docTimeout time.Duration, concurrency int) *ExtractionService {
	if docTimeout <= 0 {
		docTimeout = 60 * time.Second
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &ExtractionService{
		orch:        orch,
		repo:        repo,
		docTimeout:  docTimeout,
		concurrency: concurrency,
	}
}

// Extract validates the input, runs one document under the per-document
// budget, and persists the outcome.
func (s *ExtractionService) Extract(ctx context.Context, input *ExtractInput) (*ExtractResult, error) {
	if input.Text == "" {
		return nil, domain.ErrEmptyDocument
	}
	if input.OCRQuality < 0 || input.OCRQuality > 1 {
		return nil, domain.ErrInvalidOCRQuality
	}

	runCtx, cancel := context.WithTimeout(ctx, s.docTimeout)
	defer cancel()

	doc := domain.Document{
		Text:           input.Text,
		OCRQuality:     input.OCRQuality,
		SourceMetadata: input.SourceMetadata,
	}
	outcome, stats := s.orch.Run(runCtx, doc)

	result := &ExtractResult{Outcome: outcome, Stats: stats}
	if s.repo != nil {
		rec, err := recordFrom(outcome, doc.OCRQuality)
		if err != nil {
			return nil, fmt.Errorf("encoding outcome: %w", err)
		}
		if err := s.repo.Save(ctx, rec); err != nil {
			return nil, fmt.Errorf("saving outcome: %w", err)
		}
		result.RecordID = &rec.ID
	}
	return result, nil
}

// ExtractBatch runs a batch with bounded concurrency. Individual document
// failures (invalid input, storage errors) are logged and reflected in the
// nil slot of the result slice; one bad document never aborts the batch.
func (s *ExtractionService) ExtractBatch(ctx context.Context, inputs []*ExtractInput) ([]*ExtractResult, BatchStats) {
	results := make([]*ExtractResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, input := range inputs {
		g.Go(func() error {
			res, err := s.Extract(gctx, input)
			if err != nil {
				log.Printf("service.ExtractionService: document %d failed: %v", i, err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	// workers only ever return nil; the group is used for its limit and
	// context plumbing
	_ = g.Wait()

	return results, summarize(results)
}

// GetOutcome loads a stored outcome record.
func (s *ExtractionService) GetOutcome(ctx context.Context, id uuid.UUID) (*domain.OutcomeRecord, error) {
	if s.repo == nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// ListOutcomes pages through stored outcome records, newest first.
func (s *ExtractionService) ListOutcomes(ctx context.Context, limit, offset int) ([]domain.OutcomeRecord, error) {
	if s.repo == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func summarize(results []*ExtractResult) BatchStats {
	var stats BatchStats
	for _, r := range results {
		if r == nil {
			continue
		}
		stats.Documents++
		switch r.Outcome.Disposition {
		case domain.DispositionAccepted:
			stats.Accepted++
		case domain.DispositionManualReview:
			stats.ManualReview++
		case domain.DispositionRejected:
			stats.Rejected++
		}
		if r.Outcome.Duplicate {
			stats.Duplicates++
		}
		if r.Stats.ModelFailure != nil {
			stats.ModelFailed++
		}
	}
	return stats
}

func recordFrom(outcome *domain.ExtractionOutcome, ocrQuality float64) (*domain.OutcomeRecord, error) {
	fields, err := json.Marshal(outcome.Fields)
	if err != nil {
		return nil, err
	}
	var meta json.RawMessage
	if outcome.SourceMetadata != nil {
		meta, err = json.Marshal(outcome.SourceMetadata)
		if err != nil {
			return nil, err
		}
	}
	rec := &domain.OutcomeRecord{
		ID:             uuid.New(),
		Disposition:    outcome.Disposition,
		Method:         outcome.ExtractionMethod,
		Overall:        outcome.OverallConfidence,
		Duplicate:      outcome.Duplicate,
		ReviewFlag:     outcome.ReviewFlag,
		Fields:         fields,
		SourceMetadata: meta,
		OCRQuality:     ocrQuality,
	}
	if outcome.RejectionReason != nil {
		reason := outcome.RejectionReason.Kind + ":" + string(outcome.RejectionReason.Field)
		rec.Rejection = &reason
	}
	return rec, nil
}
