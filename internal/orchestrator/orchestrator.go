// Package orchestrator sequences the two extraction passes, validation,
// scoring, and duplicate detection into one terminal disposition per
// document. A run never returns an error: every input, including a canceled
// context or an unreachable inference service, produces a complete outcome.
package orchestrator

import (
	"context"
	"log"
	"time"

	"claimdesk/internal/confidence"
	"claimdesk/internal/domain"
	"claimdesk/internal/port"
	"claimdesk/internal/validator"
)

// ModelExtractor is the primary, inference-backed pass.
type ModelExtractor interface {
	Extract(ctx context.Context, doc domain.Document) ([]domain.ExtractionCandidate, *domain.ExtractionFailure)
}

// PatternExtractor is the deterministic, regex-backed pass.
type PatternExtractor interface {
	Extract(text string) []domain.ExtractionCandidate
}

// Config carries the disposition thresholds.
type Config struct {
	// AcceptThreshold is the minimum overall confidence for acceptance and
	// the per-field lock-in bar.
	AcceptThreshold float64
	// AutoAcceptThreshold is the bar above which an accepted outcome carries
	// no review flag.
	AutoAcceptThreshold float64
}

// Orchestrator runs the hybrid extraction state machine.
type Orchestrator struct {
	model     ModelExtractor
	pattern   PatternExtractor
	validator *validator.Validator
	scorer    *confidence.Scorer
	dupes     port.DuplicateIndex
	cfg       Config
}

// New wires an Orchestrator. model and dupes may be nil: a nil model degrades
// every run to the pattern pass, a nil dupes skips duplicate flagging.
func New(model ModelExtractor, pattern PatternExtractor, v *validator.Validator, s *confidence.Scorer, dupes port.DuplicateIndex, cfg Config) *Orchestrator {
	if cfg.AcceptThreshold == 0 {
		cfg.AcceptThreshold = 0.70
	}
	if cfg.AutoAcceptThreshold == 0 {
		cfg.AutoAcceptThreshold = 0.90
	}
	return &Orchestrator{
		model:     model,
		pattern:   pattern,
		validator: v,
		scorer:    s,
		dupes:     dupes,
		cfg:       cfg,
	}
}

// scoredCandidate is one extractor's proposal after validation and scoring.
type scoredCandidate struct {
	cand       domain.ExtractionCandidate
	errs       []domain.ValidationError
	confidence float64
}

// Run executes one document end to end and returns the outcome with its
// per-run stats. Given fixed extractor outputs the result is deterministic.
func (o *Orchestrator) Run(ctx context.Context, doc domain.Document) (*domain.ExtractionOutcome, RunStats) {
	start := time.Now()
	stats := RunStats{}
	stats.transition(StateInit)

	// MODEL_PASS. Always attempted first; an unreachable or disabled service
	// degrades to zero candidates, never an error.
	stats.transition(StateModelPass)
	var modelCands []domain.ExtractionCandidate
	switch {
	case ctx.Err() != nil:
		stats.ModelFailure = &domain.ExtractionFailure{Kind: domain.FailureTimeout, Err: ctx.Err()}
	case o.model == nil:
		stats.ModelFailure = &domain.ExtractionFailure{Kind: domain.FailureUnavailable}
	default:
		var failure *domain.ExtractionFailure
		modelCands, failure = o.model.Extract(ctx, doc)
		stats.ModelFailure = failure
	}
	stats.ModelCandidates = len(modelCands)
	if stats.ModelFailure != nil {
		log.Printf("orchestrator: model pass degraded: %s", stats.ModelFailure)
	}

	// The pattern pass is cheap and always runs; its candidates corroborate
	// model values even when they are not substituted in.
	patternCands := o.pattern.Extract(doc.Text)
	stats.PatternCandidates = len(patternCands)

	stats.Canceled = ctx.Err() != nil

	modelBy := indexByField(modelCands)
	patternBy := indexByField(patternCands)

	// VALIDATE_1 merges both candidate sets per field, then locks each field
	// from the higher-confidence source, falls back to a cleanly validating
	// pattern candidate, or marks it Absent.
	stats.transition(StateValidateModel)
	fields := make(map[domain.FieldName]domain.FieldResult, len(domain.AllFields))
	fellBack := false
	for _, f := range domain.AllFields {
		result, usedFallback := o.reconcileField(f, modelBy[f], patternBy[f], doc.OCRQuality)
		fields[f] = result
		if usedFallback {
			fellBack = true
			stats.FallbackFields = append(stats.FallbackFields, f)
		}
	}
	if fellBack {
		stats.transition(StatePatternFallback)
	}

	// VALIDATE_2: cross-field rules over the mixed-source set, then the
	// overall score.
	stats.transition(StateValidateFinal)
	crossViolation := o.applyCrossField(fields)
	overall := o.scorer.Overall(fields)

	outcome := &domain.ExtractionOutcome{
		Fields:            fields,
		OverallConfidence: overall,
		ExtractionMethod:  extractionMethod(fields, stats.ModelFailure),
		SourceMetadata:    doc.SourceMetadata,
	}

	switch {
	case !fields[domain.CriticalField].Value.Present && !stats.Canceled:
		outcome.Disposition = domain.DispositionRejected
		outcome.RejectionReason = &domain.RejectionReason{
			Kind:  domain.RejectionCriticalFieldMissing,
			Field: domain.CriticalField,
		}
		stats.transition(StateReject)
	case stats.Canceled, crossViolation, overall < o.cfg.AcceptThreshold:
		outcome.Disposition = domain.DispositionManualReview
		stats.transition(StateManualReview)
	default:
		outcome.Disposition = domain.DispositionAccepted
		outcome.ReviewFlag = overall < o.cfg.AutoAcceptThreshold
		stats.transition(StateAccept)
	}

	o.flagDuplicate(ctx, outcome)

	stats.Elapsed = time.Since(start)
	return outcome, stats
}

// reconcileField scores both candidates for one field and applies the
// lock-in and fallback rules. It reports whether the pattern fallback was
// substituted for a rejected or missing model value.
func (o *Orchestrator) reconcileField(f domain.FieldName, mc, pc *domain.ExtractionCandidate, ocr float64) (domain.FieldResult, bool) {
	model := o.scoreCandidate(f, mc, pc, ocr)
	pattern := o.scoreCandidate(f, pc, mc, ocr)

	best := model
	if best == nil || (pattern != nil && pattern.confidence > best.confidence) {
		best = pattern
	}

	if best != nil && best.confidence >= o.cfg.AcceptThreshold {
		return resultFrom(f, best), false
	}

	// Field-level fallback: a below-threshold field keeps the pattern
	// candidate only when it validates cleanly with nonzero confidence.
	if pattern != nil && len(pattern.errs) == 0 && pattern.confidence > 0 {
		return resultFrom(f, pattern), mc != nil
	}

	absent := domain.FieldResult{
		Field:  f,
		Value:  domain.Absent(domain.TypeOf(f)),
		Source: domain.SourceNone,
		Errors: []domain.ValidationError{},
	}
	absent.Confidence = o.scorer.ScoreField(confidence.FieldInput{Field: f, Value: absent.Value})
	return absent, mc != nil
}

func (o *Orchestrator) scoreCandidate(f domain.FieldName, c, other *domain.ExtractionCandidate, ocr float64) *scoredCandidate {
	if c == nil {
		return nil
	}
	errs := o.validator.ValidateField(f, c.Value)
	in := confidence.FieldInput{
		Field:          f,
		Value:          c.Value,
		LabelProximity: c.LabelProximity,
		FormatValid:    len(errs) == 0,
		OCRQuality:     ocr,
	}
	if other != nil {
		in.OtherValue = &other.Value
	}
	return &scoredCandidate{cand: *c, errs: errs, confidence: o.scorer.ScoreField(in)}
}

func resultFrom(f domain.FieldName, sc *scoredCandidate) domain.FieldResult {
	errs := sc.errs
	if errs == nil {
		// a clean field renders an empty list, never null
		errs = []domain.ValidationError{}
	}
	return domain.FieldResult{
		Field:      f,
		Value:      sc.cand.Value,
		Confidence: sc.confidence,
		Source:     sc.cand.Source,
		Errors:     errs,
	}
}

// applyCrossField attaches cross-field violations to the named fields and
// reports whether any were found. Values are kept; the violation routes the
// document to review.
func (o *Orchestrator) applyCrossField(fields map[domain.FieldName]domain.FieldResult) bool {
	values := make(map[domain.FieldName]domain.FieldValue, len(fields))
	for f, r := range fields {
		values[f] = r.Value
	}
	errs := o.validator.ValidateCrossField(values)
	for _, e := range errs {
		r := fields[e.Field]
		r.Errors = append(r.Errors, e)
		fields[e.Field] = r
	}
	return len(errs) > 0
}

// flagDuplicate registers the outcome's identity key when both parts are
// Present. Registration happens for every disposition; a gate error is
// logged and treated as not-a-duplicate.
func (o *Orchestrator) flagDuplicate(ctx context.Context, outcome *domain.ExtractionOutcome) {
	if o.dupes == nil {
		return
	}
	inv := outcome.Field(domain.FieldInvoiceNumber).Value
	event := outcome.Field(domain.FieldEventDate).Value
	if !inv.Present || !event.Present {
		return
	}
	key := domain.DuplicateKey{InvoiceNumber: inv.Text, EventDate: event.Date}
	if amount := outcome.Field(domain.FieldClaimAmount).Value; amount.Present {
		a := amount.Amount
		key.ClaimAmount = &a
	}
	status, err := o.dupes.CheckAndRegister(ctx, key)
	if err != nil {
		log.Printf("orchestrator: duplicate check failed for %s: %v", key.Normalized(), err)
		return
	}
	outcome.Duplicate = status == domain.DuplicateStatusDuplicate
}

func extractionMethod(fields map[domain.FieldName]domain.FieldResult, failure *domain.ExtractionFailure) domain.ExtractionMethod {
	var fromModel, fromPattern bool
	for _, r := range fields {
		if !r.Value.Present {
			continue
		}
		switch r.Source {
		case domain.SourceModel:
			fromModel = true
		case domain.SourcePattern:
			fromPattern = true
		}
	}
	switch {
	case fromModel && fromPattern:
		return domain.MethodHybrid
	case fromModel:
		return domain.MethodModel
	case fromPattern:
		return domain.MethodPattern
	case failure != nil:
		return domain.MethodPattern
	default:
		return domain.MethodModel
	}
}

func indexByField(cands []domain.ExtractionCandidate) map[domain.FieldName]*domain.ExtractionCandidate {
	out := make(map[domain.FieldName]*domain.ExtractionCandidate, len(cands))
	for i := range cands {
		c := cands[i]
		if _, ok := out[c.Field]; !ok {
			out[c.Field] = &c
		}
	}
	return out
}
