package validator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/domain"
)

var testNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestValidator() *Validator {
	v := New(Config{MaxYearsBack: 5, FraudCeiling: 100000})
	v.now = func() time.Time { return testNow }
	return v
}

func date(s string) domain.FieldValue {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return domain.DateValue(d)
}

func amount(s string) domain.FieldValue {
	return domain.AmountValue(domain.Amount{Value: decimal.RequireFromString(s), Currency: "USD"})
}

func kinds(errs []domain.ValidationError) []domain.ValidationErrorKind {
	var out []domain.ValidationErrorKind
	for _, e := range errs {
		out = append(out, e.Kind)
	}
	return out
}

func TestValidateField_EventDate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name  string
		value domain.FieldValue
		want  []domain.ValidationErrorKind
	}{
		{"valid_recent", date("2024-03-15"), nil},
		{"today", date("2024-06-01"), nil},
		{"future", date("2024-06-02"), []domain.ValidationErrorKind{domain.ErrKindFutureDate}},
		{"too_old", date("2019-05-31"), []domain.ValidationErrorKind{domain.ErrKindDateTooOld}},
		{"boundary_five_years", date("2019-06-01"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateField(domain.FieldEventDate, tt.value)
			assert.Equal(t, tt.want, kinds(errs))
		})
	}
}

func TestValidateField_SubmissionDate(t *testing.T) {
	v := newTestValidator()

	assert.Empty(t, v.ValidateField(domain.FieldSubmissionDate, date("2024-05-20")))

	errs := v.ValidateField(domain.FieldSubmissionDate, date("2025-01-01"))
	assert.Equal(t, []domain.ValidationErrorKind{domain.ErrKindFutureDate}, kinds(errs))

	// submission dates have no max-age bound
	assert.Empty(t, v.ValidateField(domain.FieldSubmissionDate, date("2010-01-01")))
}

func TestValidateField_ClaimAmount(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name  string
		value domain.FieldValue
		want  []domain.ValidationErrorKind
	}{
		{"valid", amount("125.50"), nil},
		{"zero", amount("0.00"), []domain.ValidationErrorKind{domain.ErrKindNonPositive}},
		{"negative", amount("-10.00"), []domain.ValidationErrorKind{domain.ErrKindNonPositive}},
		{"at_ceiling", amount("100000.00"), []domain.ValidationErrorKind{domain.ErrKindCeilingExceeded}},
		{"under_ceiling", amount("99999.99"), nil},
		{"three_decimals", amount("10.123"), []domain.ValidationErrorKind{domain.ErrKindBadScale}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateField(domain.FieldClaimAmount, tt.value)
			assert.Equal(t, tt.want, kinds(errs))
		})
	}
}

func TestValidateField_InvoiceNumber(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name  string
		value domain.FieldValue
		want  []domain.ValidationErrorKind
	}{
		{"valid", domain.TextValue("INV-2024-001"), nil},
		{"valid_with_slash", domain.TextValue("INV/2024/001"), nil},
		{"too_short", domain.TextValue("AB"), []domain.ValidationErrorKind{domain.ErrKindBadLength}},
		{"min_length", domain.TextValue("AB1"), nil},
		{"bad_charset", domain.TextValue("INV_2024!"), []domain.ValidationErrorKind{domain.ErrKindBadCharset}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateField(domain.FieldInvoiceNumber, tt.value)
			assert.Equal(t, tt.want, kinds(errs))
		})
	}
}

func TestValidateField_PolicyNumber(t *testing.T) {
	v := newTestValidator()

	assert.Empty(t, v.ValidateField(domain.FieldPolicyNumber, domain.TextValue("POL-99887")))

	errs := v.ValidateField(domain.FieldPolicyNumber, domain.TextValue("P-1"))
	assert.Equal(t, []domain.ValidationErrorKind{domain.ErrKindBadLength}, kinds(errs))

	// slash is allowed for invoices but not for policies
	errs = v.ValidateField(domain.FieldPolicyNumber, domain.TextValue("POL/99887"))
	assert.Equal(t, []domain.ValidationErrorKind{domain.ErrKindBadCharset}, kinds(errs))
}

func TestValidateField_AbsentIsClean(t *testing.T) {
	v := newTestValidator()
	for _, f := range domain.AllFields {
		assert.Empty(t, v.ValidateField(f, domain.Absent(domain.TypeOf(f))), f)
	}
}

func TestValidateField_ErrorsCarryField(t *testing.T) {
	v := newTestValidator()
	errs := v.ValidateField(domain.FieldClaimAmount, amount("-5.00"))
	require.Len(t, errs, 1)
	assert.Equal(t, domain.FieldClaimAmount, errs[0].Field)
	assert.NotEmpty(t, errs[0].Message)
}

func TestValidateCrossField_DateOrdering(t *testing.T) {
	v := newTestValidator()

	t.Run("ordered", func(t *testing.T) {
		errs := v.ValidateCrossField(map[domain.FieldName]domain.FieldValue{
			domain.FieldEventDate:      date("2024-03-15"),
			domain.FieldSubmissionDate: date("2024-03-20"),
		})
		assert.Empty(t, errs)
	})

	t.Run("same_day", func(t *testing.T) {
		errs := v.ValidateCrossField(map[domain.FieldName]domain.FieldValue{
			domain.FieldEventDate:      date("2024-03-15"),
			domain.FieldSubmissionDate: date("2024-03-15"),
		})
		assert.Empty(t, errs)
	})

	t.Run("violation_flags_both_dates", func(t *testing.T) {
		errs := v.ValidateCrossField(map[domain.FieldName]domain.FieldValue{
			domain.FieldEventDate:      date("2024-03-20"),
			domain.FieldSubmissionDate: date("2024-03-15"),
		})
		require.Len(t, errs, 2)
		fields := []domain.FieldName{errs[0].Field, errs[1].Field}
		assert.Contains(t, fields, domain.FieldEventDate)
		assert.Contains(t, fields, domain.FieldSubmissionDate)
		for _, e := range errs {
			assert.Equal(t, domain.ErrKindDateOrdering, e.Kind)
		}
	})

	t.Run("one_absent_skips", func(t *testing.T) {
		errs := v.ValidateCrossField(map[domain.FieldName]domain.FieldValue{
			domain.FieldEventDate:      date("2024-03-20"),
			domain.FieldSubmissionDate: domain.Absent(domain.FieldTypeDate),
		})
		assert.Empty(t, errs)
	})
}
