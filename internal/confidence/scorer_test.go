package confidence

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"claimdesk/internal/domain"
)

func textVal(s string) domain.FieldValue { return domain.TextValue(s) }

func amountVal(s string) domain.FieldValue {
	return domain.AmountValue(domain.Amount{Value: decimal.RequireFromString(s), Currency: "USD"})
}

func TestScoreField_PerfectField(t *testing.T) {
	s := New(0.50)
	other := textVal("ABC-123")
	got := s.ScoreField(FieldInput{
		Field:          domain.FieldInvoiceNumber,
		Value:          textVal("ABC-123"),
		LabelProximity: 1.0,
		FormatValid:    true,
		OtherValue:     &other,
		OCRQuality:     1.0,
	})
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestScoreField_Weights(t *testing.T) {
	s := New(0.50)

	t.Run("invalid_format_drops_030", func(t *testing.T) {
		got := s.ScoreField(FieldInput{
			Field:          domain.FieldInvoiceNumber,
			Value:          textVal("AB"),
			LabelProximity: 1.0,
			FormatValid:    false,
			OCRQuality:     1.0,
		})
		// 0.40 + 0 + 0 + 0.10
		assert.InDelta(t, 0.50, got, 1e-9)
	})

	t.Run("disagreement_zeroes_agreement", func(t *testing.T) {
		other := textVal("XYZ-999")
		got := s.ScoreField(FieldInput{
			Field:          domain.FieldInvoiceNumber,
			Value:          textVal("ABC-123"),
			LabelProximity: 1.0,
			FormatValid:    true,
			OtherValue:     &other,
			OCRQuality:     1.0,
		})
		assert.InDelta(t, 0.80, got, 1e-9)
	})

	t.Run("single_source_earns_no_agreement", func(t *testing.T) {
		got := s.ScoreField(FieldInput{
			Field:          domain.FieldInvoiceNumber,
			Value:          textVal("ABC-123"),
			LabelProximity: 1.0,
			FormatValid:    true,
			OCRQuality:     1.0,
		})
		// even with perfect proximity and OCR, a value only one extractor
		// saw cannot reach the auto-accept band
		assert.InDelta(t, 0.80, got, 1e-9)
		assert.Less(t, got, 0.90)
	})

	t.Run("absent_other_value_earns_no_agreement", func(t *testing.T) {
		other := domain.Absent(domain.FieldTypeString)
		got := s.ScoreField(FieldInput{
			Field:          domain.FieldInvoiceNumber,
			Value:          textVal("ABC-123"),
			LabelProximity: 1.0,
			FormatValid:    true,
			OtherValue:     &other,
			OCRQuality:     1.0,
		})
		assert.InDelta(t, 0.80, got, 1e-9)
	})

	t.Run("amount_agreement_within_tolerance", func(t *testing.T) {
		other := amountVal("125.51")
		got := s.ScoreField(FieldInput{
			Field:          domain.FieldClaimAmount,
			Value:          amountVal("125.50"),
			LabelProximity: 1.0,
			FormatValid:    true,
			OtherValue:     &other,
			OCRQuality:     1.0,
		})
		assert.InDelta(t, 1.0, got, 1e-9)
	})
}

func TestScoreField_Absent(t *testing.T) {
	s := New(0.50)

	assert.Equal(t, 0.0, s.ScoreField(FieldInput{
		Field: domain.FieldInvoiceNumber,
		Value: domain.Absent(domain.FieldTypeString),
	}))
	assert.Equal(t, 0.50, s.ScoreField(FieldInput{
		Field: domain.FieldPolicyNumber,
		Value: domain.Absent(domain.FieldTypeString),
	}))
}

func TestScoreField_Clamped(t *testing.T) {
	s := New(0.50)
	got := s.ScoreField(FieldInput{
		Field:          domain.FieldInvoiceNumber,
		Value:          textVal("ABC-123"),
		LabelProximity: 2.5,
		FormatValid:    true,
		OCRQuality:     3.0,
	})
	assert.LessOrEqual(t, got, 1.0)
	assert.GreaterOrEqual(t, got, 0.0)
}

func fullFields(conf float64) map[domain.FieldName]domain.FieldResult {
	out := make(map[domain.FieldName]domain.FieldResult)
	for _, f := range domain.AllFields {
		out[f] = domain.FieldResult{Field: f, Value: textVal("X-1"), Confidence: conf}
	}
	return out
}

func TestOverall_Average(t *testing.T) {
	s := New(0.50)
	assert.InDelta(t, 0.8, s.Overall(fullFields(0.8)), 1e-9)
}

func TestOverall_BoundedByIdentifyingFields(t *testing.T) {
	s := New(0.50)

	fields := fullFields(0.95)
	policy := fields[domain.FieldPolicyNumber]
	policy.Confidence = 0.40
	fields[domain.FieldPolicyNumber] = policy

	// the average sits near 0.87 but policy_number caps the overall
	assert.InDelta(t, 0.40, s.Overall(fields), 1e-9)

	invoice := fields[domain.FieldInvoiceNumber]
	invoice.Confidence = 0.20
	fields[domain.FieldInvoiceNumber] = invoice
	assert.InDelta(t, 0.20, s.Overall(fields), 1e-9)
}

func TestOverall_Empty(t *testing.T) {
	assert.Equal(t, 0.0, New(0.50).Overall(nil))
}
