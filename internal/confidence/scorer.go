// Package confidence turns extraction evidence into calibrated per-field and
// per-document scores.
package confidence

import (
	"claimdesk/internal/domain"
)

// Component weights. They sum to 1.0 so a perfect field scores exactly 1.0.
const (
	weightProximity = 0.40
	weightFormat    = 0.30
	weightAgreement = 0.20
	weightOCR       = 0.10
)

// Scorer computes per-field and overall confidence.
type Scorer struct {
	// optionalAbsent is the confidence assigned to an optional field that is
	// Absent after both passes. It keeps a clean document with no
	// policy_number from being dragged to zero by the overall floor.
	optionalAbsent float64
}

// New creates a Scorer.
func New(optionalAbsentConfidence float64) *Scorer {
	if optionalAbsentConfidence <= 0 {
		optionalAbsentConfidence = 0.50
	}
	return &Scorer{optionalAbsent: optionalAbsentConfidence}
}

// FieldInput is the scoring evidence for one reconciled field.
type FieldInput struct {
	Field          domain.FieldName
	Value          domain.FieldValue
	LabelProximity float64
	FormatValid    bool
	// OtherValue is the same field as seen by the other extractor, when both
	// passes produced it.
	OtherValue *domain.FieldValue
	OCRQuality float64
}

// ScoreField computes the weighted confidence for one field, clamped to
// [0,1]. An Absent optional field scores the configured floor; an Absent
// required field scores zero.
func (s *Scorer) ScoreField(in FieldInput) float64 {
	if !in.Value.Present {
		if domain.IsOptional(in.Field) {
			return s.optionalAbsent
		}
		return 0
	}

	format := 0.0
	if in.FormatValid {
		format = 1.0
	}

	// The agreement bonus is earned only when both extractors produced the
	// field and their values match within tolerance. A field seen by a
	// single extractor scores zero here, keeping single-source evidence
	// below the auto-accept band.
	agreement := 0.0
	if in.OtherValue != nil && in.OtherValue.Present && in.Value.Equal(*in.OtherValue) {
		agreement = 1.0
	}

	score := weightProximity*clamp01(in.LabelProximity) +
		weightFormat*format +
		weightAgreement*agreement +
		weightOCR*clamp01(in.OCRQuality)
	return clamp01(score)
}

// Overall collapses per-field confidences into the document score: the mean
// over all fields, bounded above by the weakest identifying field. A document
// is never more trustworthy than its invoice or policy number.
func (s *Scorer) Overall(fields map[domain.FieldName]domain.FieldResult) float64 {
	if len(fields) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range domain.AllFields {
		sum += fields[f].Confidence
	}
	overall := sum / float64(len(domain.AllFields))

	for _, f := range []domain.FieldName{domain.FieldInvoiceNumber, domain.FieldPolicyNumber} {
		if c := fields[f].Confidence; c < overall {
			overall = c
		}
	}
	return clamp01(overall)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
