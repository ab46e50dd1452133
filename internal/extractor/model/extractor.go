package model

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"claimdesk/internal/domain"
	"claimdesk/internal/inference"
	"claimdesk/internal/port"
)

// Config bounds the model extraction pass.
type Config struct {
	MaxRetries      int
	BackoffBase     time.Duration
	BackoffCap      time.Duration
	Timeout         time.Duration
	Temperature     float64
	MaxOutputTokens int
	// ProximityBaseline is the fixed label proximity reported for every
	// model candidate; the model has no positional signal to measure.
	ProximityBaseline float64
}

// DefaultConfig mirrors the configuration defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		BackoffBase:       500 * time.Millisecond,
		BackoffCap:        8 * time.Second,
		Timeout:           30 * time.Second,
		Temperature:       0.1,
		MaxOutputTokens:   512,
		ProximityBaseline: 0.85,
	}
}

// Extractor drives the external inference service: one schema-bearing
// request with a bounded timeout and bounded retries (exponential backoff,
// full jitter), retrying only transient failures. On exhaustion it returns a
// typed ExtractionFailure, never an error the orchestrator must handle.
type Extractor struct {
	client port.InferenceClient
	cfg    Config
	sleep  func(context.Context, time.Duration) error
	jitter func(time.Duration) time.Duration
}

// New creates an Extractor over an inference client.
func New(client port.InferenceClient, cfg Config) *Extractor {
	def := DefaultConfig()
	if cfg.ProximityBaseline == 0 {
		cfg.ProximityBaseline = def.ProximityBaseline
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = def.BackoffBase
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = def.BackoffCap
	}
	return &Extractor{
		client: client,
		cfg:    cfg,
		sleep:  sleepCtx,
		jitter: fullJitter,
	}
}

// Extract runs the model pass. Exactly one of the return values is non-nil.
func (e *Extractor) Extract(ctx context.Context, doc domain.Document) ([]domain.ExtractionCandidate, *domain.ExtractionFailure) {
	if e.client == nil {
		return nil, &domain.ExtractionFailure{Kind: domain.FailureUnavailable, Err: errors.New("inference client not configured")}
	}

	req := port.InferenceRequest{
		Text:   doc.Text,
		Schema: Schema(),
		Options: port.GenerateOptions{
			Temperature:     e.cfg.Temperature,
			MaxOutputTokens: e.cfg.MaxOutputTokens,
			TimeoutSecs:     int(e.cfg.Timeout / time.Second),
		},
	}

	var lastErr error
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := e.cfg.BackoffBase << (attempt - 1)
			if backoff > e.cfg.BackoffCap {
				backoff = e.cfg.BackoffCap
			}
			wait := e.jitter(backoff)
			// a rate-limited service dictates its own minimum wait
			if ra := retryAfter(lastErr); ra > wait {
				wait = ra
			}
			if err := e.sleep(ctx, wait); err != nil {
				return nil, failureFor(lastErr, ctx.Err())
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
		resp, err := e.client.Generate(callCtx, req)
		cancel()
		if err == nil {
			return e.mapResponse(resp), nil
		}

		lastErr = err
		if !retryable(ctx, err) {
			break
		}
		log.Printf("model.Extractor: attempt %d/%d failed: %v", attempt+1, e.cfg.MaxRetries+1, err)
	}

	return nil, failureFor(lastErr, ctx.Err())
}

// retryable reports whether another attempt is worthwhile. Transient service
// errors, malformed responses, and per-call timeouts all qualify, but never
// once the parent context is done.
func retryable(parent context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return inference.IsTransient(err)
}

// retryAfter extracts the service-advertised wait from a rate-limit error.
func retryAfter(err error) time.Duration {
	var se *inference.ServiceError
	if errors.As(err, &se) {
		return se.RetryAfter
	}
	return 0
}

func failureFor(lastErr, ctxErr error) *domain.ExtractionFailure {
	switch {
	case ctxErr != nil:
		return &domain.ExtractionFailure{Kind: domain.FailureTimeout, Err: ctxErr}
	case lastErr == nil:
		return &domain.ExtractionFailure{Kind: domain.FailureUnavailable, Err: errors.New("no attempts made")}
	case errors.Is(lastErr, context.DeadlineExceeded):
		return &domain.ExtractionFailure{Kind: domain.FailureTimeout, Err: lastErr}
	case inference.IsMalformed(lastErr):
		return &domain.ExtractionFailure{Kind: domain.FailureMalformed, Err: lastErr}
	default:
		return &domain.ExtractionFailure{Kind: domain.FailureUnavailable, Err: lastErr}
	}
}

// mapResponse converts the structured response into candidates. Fields absent
// from the response, or present with an untyped or unparseable value, are
// dropped; partial success is a valid outcome.
func (e *Extractor) mapResponse(resp *port.InferenceResponse) []domain.ExtractionCandidate {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(resp.RawJSON, &payload); err != nil {
		log.Printf("model.Extractor: response object not a map, dropping all fields: %v", err)
		return nil
	}

	var out []domain.ExtractionCandidate
	for _, field := range domain.AllFields {
		raw, ok := payload[string(field)]
		if !ok {
			continue
		}
		value, span, ok := parseFieldJSON(field, raw)
		if !ok {
			continue
		}
		out = append(out, domain.ExtractionCandidate{
			Field:          field,
			Value:          value,
			Source:         domain.SourceModel,
			RawSpan:        span,
			LabelProximity: e.cfg.ProximityBaseline,
		})
	}
	return out
}

// parseFieldJSON maps one response value to the field's semantic type.
func parseFieldJSON(field domain.FieldName, raw json.RawMessage) (domain.FieldValue, string, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "null" || s == `""` || s == "" {
		return domain.FieldValue{}, "", false
	}

	switch domain.TypeOf(field) {
	case domain.FieldTypeDate:
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return domain.FieldValue{}, "", false
		}
		d, err := domain.ParseDate(str)
		if err != nil {
			return domain.FieldValue{}, "", false
		}
		return domain.DateValue(d), str, true

	case domain.FieldTypeAmount:
		// the schema asks for a bare number but models occasionally
		// return a quoted string; accept both
		var num json.Number
		if err := json.Unmarshal(raw, &num); err == nil {
			d, derr := decimal.NewFromString(num.String())
			if derr != nil {
				return domain.FieldValue{}, "", false
			}
			if d.Exponent() > -2 {
				d = d.Round(2)
			}
			return domain.AmountValue(domain.Amount{Value: d, Currency: "USD"}), num.String(), true
		}
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return domain.FieldValue{}, "", false
		}
		a, aerr := domain.ParseAmount(str)
		if aerr != nil {
			return domain.FieldValue{}, "", false
		}
		return domain.AmountValue(a), str, true

	default:
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return domain.FieldValue{}, "", false
		}
		if strings.TrimSpace(str) == "" || strings.EqualFold(str, "null") {
			return domain.FieldValue{}, "", false
		}
		if field == domain.FieldVendor {
			return domain.TextValue(domain.NormalizeText(str)), str, true
		}
		return domain.TextValue(domain.NormalizeIdentifier(str)), str, true
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// fullJitter draws uniformly from [0, d], the standard decorrelated retry
// spread.
func fullJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(d) + 1))
}
