package validator

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"claimdesk/internal/domain"
)

// ruleFn checks one Present value against one rule. It returns nil when the
// rule passes.
type ruleFn func(v *Validator, value domain.FieldValue) *domain.ValidationError

// fieldRule pairs a stable key with its check; rules run in registration
// order and all violations are collected, never short-circuited.
type fieldRule struct {
	Key string
	Fn  ruleFn
}

var (
	invoiceNumberRe = regexp.MustCompile(`^[A-Z0-9/-]{3,50}$`)
	policyNumberRe  = regexp.MustCompile(`^[A-Z0-9-]{5,30}$`)
)

// fieldRules is the per-field rule registry. Absent values are never passed
// through these; absence is handled by the orchestrator, not the validator.
func fieldRules() map[domain.FieldName][]fieldRule {
	return map[domain.FieldName][]fieldRule{
		domain.FieldEventDate: {
			{Key: "event_date.not_future", Fn: notFuture},
			{Key: "event_date.max_age", Fn: notTooOld},
		},
		domain.FieldSubmissionDate: {
			{Key: "submission_date.not_future", Fn: notFuture},
		},
		domain.FieldClaimAmount: {
			{Key: "claim_amount.positive", Fn: positiveAmount},
			{Key: "claim_amount.ceiling", Fn: underCeiling},
			{Key: "claim_amount.scale", Fn: twoDecimalScale},
		},
		domain.FieldTax: {
			{Key: "tax.positive", Fn: positiveAmount},
			{Key: "tax.scale", Fn: twoDecimalScale},
		},
		domain.FieldInvoiceNumber: {
			{Key: "invoice_number.format", Fn: matchesIdentifier(invoiceNumberRe, 3, 50)},
		},
		domain.FieldPolicyNumber: {
			{Key: "policy_number.format", Fn: matchesIdentifier(policyNumberRe, 5, 30)},
		},
	}
}

func notFuture(v *Validator, value domain.FieldValue) *domain.ValidationError {
	today := truncateDay(v.now())
	if value.Date.After(today) {
		return &domain.ValidationError{
			Kind:    domain.ErrKindFutureDate,
			Message: fmt.Sprintf("date %s is in the future", value.Date.Format("2006-01-02")),
		}
	}
	return nil
}

func notTooOld(v *Validator, value domain.FieldValue) *domain.ValidationError {
	floor := truncateDay(v.now()).AddDate(-v.maxYearsBack, 0, 0)
	if value.Date.Before(floor) {
		return &domain.ValidationError{
			Kind:    domain.ErrKindDateTooOld,
			Message: fmt.Sprintf("date %s is more than %d years old", value.Date.Format("2006-01-02"), v.maxYearsBack),
		}
	}
	return nil
}

func positiveAmount(_ *Validator, value domain.FieldValue) *domain.ValidationError {
	if value.Amount.Value.LessThanOrEqual(decimal.Zero) {
		return &domain.ValidationError{
			Kind:    domain.ErrKindNonPositive,
			Message: fmt.Sprintf("amount %s is not positive", value.Amount.Value.String()),
		}
	}
	return nil
}

func underCeiling(v *Validator, value domain.FieldValue) *domain.ValidationError {
	if value.Amount.Value.GreaterThanOrEqual(v.fraudCeiling) {
		return &domain.ValidationError{
			Kind:    domain.ErrKindCeilingExceeded,
			Message: fmt.Sprintf("amount %s meets or exceeds the review ceiling %s", value.Amount.Value.String(), v.fraudCeiling.String()),
		}
	}
	return nil
}

func twoDecimalScale(_ *Validator, value domain.FieldValue) *domain.ValidationError {
	if value.Amount.Value.Exponent() < -2 {
		return &domain.ValidationError{
			Kind:    domain.ErrKindBadScale,
			Message: fmt.Sprintf("amount %s carries more than two decimal places", value.Amount.Value.String()),
		}
	}
	return nil
}

func matchesIdentifier(re *regexp.Regexp, minLen, maxLen int) ruleFn {
	return func(_ *Validator, value domain.FieldValue) *domain.ValidationError {
		n := len(value.Text)
		if n < minLen || n > maxLen {
			return &domain.ValidationError{
				Kind:    domain.ErrKindBadLength,
				Message: fmt.Sprintf("identifier length %d outside [%d,%d]", n, minLen, maxLen),
			}
		}
		if !re.MatchString(value.Text) {
			return &domain.ValidationError{
				Kind:    domain.ErrKindBadCharset,
				Message: fmt.Sprintf("identifier %q contains disallowed characters", value.Text),
			}
		}
		return nil
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
