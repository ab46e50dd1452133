package orchestrator

import (
	"time"

	"claimdesk/internal/domain"
)

// State names one phase of a document run.
type State string

const (
	StateInit            State = "INIT"
	StateModelPass       State = "MODEL_PASS"
	StateValidateModel   State = "VALIDATE_1"
	StatePatternFallback State = "PATTERN_FALLBACK"
	StateValidateFinal   State = "VALIDATE_2"
	StateAccept          State = "ACCEPT"
	StateManualReview    State = "MANUAL_REVIEW"
	StateReject          State = "REJECT"
)

// RunStats is the per-run bookkeeping returned alongside every outcome.
// Callers aggregate it themselves; there is no shared counter anywhere in
// the package.
type RunStats struct {
	States            []State                   `json:"states"`
	ModelFailure      *domain.ExtractionFailure `json:"model_failure,omitempty"`
	ModelCandidates   int                       `json:"model_candidates"`
	PatternCandidates int                       `json:"pattern_candidates"`
	FallbackFields    []domain.FieldName        `json:"fallback_fields,omitempty"`
	Canceled          bool                      `json:"canceled"`
	Elapsed           time.Duration             `json:"elapsed"`
}

func (s *RunStats) transition(st State) {
	s.States = append(s.States, st)
}

// Terminal returns the last recorded state.
func (s *RunStats) Terminal() State {
	if len(s.States) == 0 {
		return StateInit
	}
	return s.States[len(s.States)-1]
}
