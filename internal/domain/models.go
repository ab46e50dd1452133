package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Document is the immutable extraction input: OCR text, an OCR quality
// indicator in [0,1], and opaque source metadata (e.g. originating message
// subject/date) passed through untouched, never parsed for fields.
type Document struct {
	Text           string            `json:"text"`
	OCRQuality     float64           `json:"ocr_quality"`
	SourceMetadata map[string]string `json:"source_metadata,omitempty"`
}

// ExtractionCandidate is one field's unvalidated, unscored proposal from a
// single extractor. Multiple candidates per field may coexist before
// reconciliation.
type ExtractionCandidate struct {
	Field          FieldName  `json:"field"`
	Value          FieldValue `json:"value"`
	Source         Source     `json:"source"`
	RawSpan        string     `json:"raw_span"`
	LabelProximity float64    `json:"label_proximity"`
}

// ValidationError is a non-fatal field-level rule violation.
type ValidationError struct {
	Kind    ValidationErrorKind `json:"kind"`
	Field   FieldName           `json:"field"`
	Message string              `json:"message"`
}

// ValidationErrorKind identifies the violated rule.
type ValidationErrorKind string

const (
	ErrKindFutureDate      ValidationErrorKind = "future_date"
	ErrKindDateTooOld      ValidationErrorKind = "date_too_old"
	ErrKindNonPositive     ValidationErrorKind = "non_positive_amount"
	ErrKindCeilingExceeded ValidationErrorKind = "ceiling_exceeded"
	ErrKindBadScale        ValidationErrorKind = "bad_decimal_scale"
	ErrKindBadLength       ValidationErrorKind = "bad_length"
	ErrKindBadCharset      ValidationErrorKind = "bad_charset"
	ErrKindDateOrdering    ValidationErrorKind = "date_ordering_violation"
)

// FieldResult is a reconciled field: value, calibrated confidence, winning
// source, and any validation errors. Confidence and Errors are populated
// even for Absent values.
type FieldResult struct {
	Field      FieldName         `json:"field"`
	Value      FieldValue        `json:"value"`
	Confidence float64           `json:"confidence"`
	Source     Source            `json:"source"`
	Errors     []ValidationError `json:"validation_errors"`
}

// RejectionReason explains a Rejected disposition.
type RejectionReason struct {
	Kind  string    `json:"kind"`
	Field FieldName `json:"field"`
}

// RejectionCriticalFieldMissing is the only rejection kind: a critical field
// absent in both extraction passes.
const RejectionCriticalFieldMissing = "critical_field_missing"

// ExtractionOutcome is the top-level result of one orchestration run. It is
// immutable once the orchestrator reaches a terminal disposition and always
// carries exactly one FieldResult per enumerated field.
type ExtractionOutcome struct {
	Fields            map[FieldName]FieldResult `json:"fields"`
	OverallConfidence float64                   `json:"overall_confidence"`
	Disposition       Disposition               `json:"disposition"`
	RejectionReason   *RejectionReason          `json:"rejection_reason,omitempty"`
	ExtractionMethod  ExtractionMethod          `json:"extraction_method"`
	Duplicate         bool                      `json:"duplicate"`
	ReviewFlag        bool                      `json:"review_flag"`
	SourceMetadata    map[string]string         `json:"source_metadata,omitempty"`
}

// Field returns the result for a field; the zero FieldResult if the outcome
// was built without it (never the case for orchestrator output).
func (o *ExtractionOutcome) Field(f FieldName) FieldResult {
	return o.Fields[f]
}

// ExtractionFailure is the typed reason a model pass yielded no candidates.
// It is a value, not an error: the orchestrator degrades, never aborts.
type ExtractionFailure struct {
	Kind FailureKind `json:"kind"`
	Err  error       `json:"-"`
}

func (f *ExtractionFailure) String() string {
	if f.Err != nil {
		return string(f.Kind) + ": " + f.Err.Error()
	}
	return string(f.Kind)
}

// DuplicateKey is the deterministic identity of an accepted claim:
// normalized (invoice_number, event_date). ClaimAmount rides along for the
// audit record but is not part of the key.
type DuplicateKey struct {
	InvoiceNumber string
	EventDate     time.Time
	ClaimAmount   *Amount
}

// Normalized returns the canonical lookup key string.
func (k DuplicateKey) Normalized() string {
	return NormalizeIdentifier(k.InvoiceNumber) + "|" + k.EventDate.Format("2006-01-02")
}

// OutcomeRecord is the stored form of an outcome.
type OutcomeRecord struct {
	ID             uuid.UUID       `db:"id"`
	Disposition    Disposition     `db:"disposition"`
	Method         ExtractionMethod `db:"extraction_method"`
	Overall        float64         `db:"overall_confidence"`
	Duplicate      bool            `db:"duplicate"`
	ReviewFlag     bool            `db:"review_flag"`
	Rejection      *string         `db:"rejection_reason"`
	Fields         json.RawMessage `db:"fields"`
	SourceMetadata json.RawMessage `db:"source_metadata"`
	OCRQuality     float64         `db:"ocr_quality"`
	CreatedAt      time.Time       `db:"created_at"`
}
