package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a fixed-point monetary value with an ISO currency code.
type Amount struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

func (a Amount) String() string {
	return a.Value.StringFixed(2) + " " + a.Currency
}

// Equal reports whether two amounts match within a one-cent tolerance and
// share a currency.
func (a Amount) Equal(b Amount) bool {
	if a.Currency != b.Currency {
		return false
	}
	diff := a.Value.Sub(b.Value).Abs()
	return diff.LessThanOrEqual(decimal.New(1, -2))
}

// FieldValue is the tagged union Present(value)/Absent. Exactly one of the
// typed slots is meaningful, selected by Type.
type FieldValue struct {
	Present bool      `json:"present"`
	Type    FieldType `json:"type"`
	Date    time.Time `json:"date,omitempty"`
	Amount  Amount    `json:"amount,omitempty"`
	Text    string    `json:"text,omitempty"`
}

// Absent returns the absent value for a field type.
func Absent(t FieldType) FieldValue {
	return FieldValue{Present: false, Type: t}
}

// DateValue wraps a calendar date (time component discarded, UTC).
func DateValue(t time.Time) FieldValue {
	return FieldValue{
		Present: true,
		Type:    FieldTypeDate,
		Date:    time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
	}
}

// AmountValue wraps a monetary amount.
func AmountValue(a Amount) FieldValue {
	return FieldValue{Present: true, Type: FieldTypeAmount, Amount: a}
}

// TextValue wraps a normalized string value.
func TextValue(s string) FieldValue {
	return FieldValue{Present: true, Type: FieldTypeString, Text: s}
}

// Equal reports agreement between two values within type-specific tolerance:
// dates must match exactly, amounts within one cent, strings after
// identifier normalization.
func (v FieldValue) Equal(o FieldValue) bool {
	if !v.Present || !o.Present || v.Type != o.Type {
		return false
	}
	switch v.Type {
	case FieldTypeDate:
		return v.Date.Equal(o.Date)
	case FieldTypeAmount:
		return v.Amount.Equal(o.Amount)
	default:
		return NormalizeIdentifier(v.Text) == NormalizeIdentifier(o.Text)
	}
}

// String renders the canonical export form: ISO date, fixed two-decimal
// amount, or the normalized text. Absent values render empty.
func (v FieldValue) String() string {
	if !v.Present {
		return ""
	}
	switch v.Type {
	case FieldTypeDate:
		return v.Date.Format("2006-01-02")
	case FieldTypeAmount:
		return v.Amount.Value.StringFixed(2)
	default:
		return v.Text
	}
}

// dateLayouts are the known document date formats, tried in order.
// Slash/dash numeric forms follow the US month-first convention.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01/02/06",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"02 Jan 2006",
}

// ParseDate parses a raw date span into a canonical calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

var (
	currencySymbols = map[string]string{"$": "USD", "€": "EUR", "£": "GBP", "₹": "INR"}
	currencyCodeRe  = regexp.MustCompile(`(?i)\b(USD|EUR|GBP|INR|CAD|AUD)\b`)
	usGroupingRe    = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)
	euGroupingRe    = regexp.MustCompile(`^\d{1,3}(\.\d{3})+(,\d+)?$`)
	decimalCommaRe  = regexp.MustCompile(`^\d+,\d{1,2}$`)
	numericRe       = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// ParseAmount normalizes a raw monetary span into an Amount. It strips
// currency symbols and codes, removes thousands separators, and detects the
// US vs EU decimal convention from the position of ',' and '.'. Currency
// defaults to USD when no symbol or code is present. Amounts with up to two
// fractional digits are rescaled to exactly two; more than two fractional
// digits are preserved for the validator to flag.
func ParseAmount(s string) (Amount, error) {
	raw := strings.TrimSpace(s)
	currency := "USD"

	for sym, code := range currencySymbols {
		if strings.Contains(raw, sym) {
			currency = code
			raw = strings.ReplaceAll(raw, sym, "")
		}
	}
	if m := currencyCodeRe.FindString(raw); m != "" {
		currency = strings.ToUpper(m)
		raw = strings.Replace(raw, m, "", 1)
	}
	raw = strings.TrimSpace(raw)
	neg := false
	if strings.HasPrefix(raw, "-") {
		neg = true
		raw = strings.TrimPrefix(raw, "-")
	}

	switch {
	case usGroupingRe.MatchString(raw):
		raw = strings.ReplaceAll(raw, ",", "")
	case euGroupingRe.MatchString(raw):
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	case decimalCommaRe.MatchString(raw):
		raw = strings.Replace(raw, ",", ".", 1)
	case numericRe.MatchString(raw):
		// plain decimal-point form, nothing to rewrite
	default:
		return Amount{}, fmt.Errorf("unrecognized amount format: %q", s)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Amount{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	if d.Exponent() > -2 {
		d = d.Round(2) // rescales 125.5 to 125.50 without losing precision
	}
	return Amount{Value: d, Currency: currency}, nil
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeIdentifier canonicalizes reference numbers: trimmed, uppercased,
// internal whitespace runs collapsed to a single '-'.
func NormalizeIdentifier(s string) string {
	s = strings.TrimSpace(strings.ToUpper(s))
	return whitespaceRe.ReplaceAllString(s, "-")
}

// NormalizeText canonicalizes free-text values such as vendor names:
// trimmed, whitespace collapsed, capped at 100 characters.
func NormalizeText(s string) string {
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
