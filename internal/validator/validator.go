package validator

import (
	"time"

	"github.com/shopspring/decimal"

	"claimdesk/internal/domain"
)

// Config carries the tunable validation bounds.
type Config struct {
	MaxYearsBack int
	FraudCeiling float64
}

// Validator applies the field-level and cross-field rule sets. Violations are
// advisory: they feed confidence scoring and disposition, they never abort a
// run.
type Validator struct {
	rules        map[domain.FieldName][]fieldRule
	maxYearsBack int
	fraudCeiling decimal.Decimal
	now          func() time.Time
}

// New creates a Validator with the given bounds.
func New(cfg Config) *Validator {
	if cfg.MaxYearsBack <= 0 {
		cfg.MaxYearsBack = 5
	}
	if cfg.FraudCeiling <= 0 {
		cfg.FraudCeiling = 100000
	}
	return &Validator{
		rules:        fieldRules(),
		maxYearsBack: cfg.MaxYearsBack,
		fraudCeiling: decimal.NewFromFloat(cfg.FraudCeiling),
		now:          time.Now,
	}
}

// ValidateField runs every rule registered for the field against a Present
// value, collecting all violations. Absent values validate clean.
func (v *Validator) ValidateField(field domain.FieldName, value domain.FieldValue) []domain.ValidationError {
	if !value.Present {
		return nil
	}
	var errs []domain.ValidationError
	for _, rule := range v.rules[field] {
		if ve := rule.Fn(v, value); ve != nil {
			ve.Field = field
			errs = append(errs, *ve)
		}
	}
	return errs
}

// ValidateCrossField checks relations between fields. The only relation today
// is date ordering: a submission predating the service it bills is flagged on
// both dates. Both values stay Present; the flag routes the document to
// review instead of discarding data.
func (v *Validator) ValidateCrossField(fields map[domain.FieldName]domain.FieldValue) []domain.ValidationError {
	event, eok := fields[domain.FieldEventDate]
	sub, sok := fields[domain.FieldSubmissionDate]
	if !eok || !sok || !event.Present || !sub.Present {
		return nil
	}
	if sub.Date.Before(event.Date) {
		msg := "submission date " + sub.Date.Format("2006-01-02") + " precedes event date " + event.Date.Format("2006-01-02")
		return []domain.ValidationError{
			{Kind: domain.ErrKindDateOrdering, Field: domain.FieldEventDate, Message: msg},
			{Kind: domain.ErrKindDateOrdering, Field: domain.FieldSubmissionDate, Message: msg},
		}
	}
	return nil
}
