package pattern

import (
	"strings"

	"claimdesk/internal/domain"
)

const (
	// bareProximity is the fixed label proximity of bare (unlabeled) rules.
	bareProximity = 0.40
	// proximityFloor bounds labeled proximity from below; even a distant
	// label is a stronger signal than no label at all.
	proximityFloor = 0.50
	// gapSpan is the character distance over which labeled proximity decays.
	gapSpan = 40.0
)

// Extractor performs deterministic regex/heuristic extraction. For each
// field its ordered rule list is tried in sequence; the first rule that
// matches anywhere in the text wins and yields exactly one candidate.
// Unmatched fields yield no candidate, never an error.
type Extractor struct {
	rules []FieldRules
}

// New creates an Extractor with the built-in rule lists.
func New() *Extractor {
	return NewWithRules(DefaultRules())
}

// NewWithRules creates an Extractor with a custom ordered rule set.
func NewWithRules(rules []FieldRules) *Extractor {
	return &Extractor{rules: rules}
}

// Extract returns at most one candidate per field, in canonical field order.
func (e *Extractor) Extract(text string) []domain.ExtractionCandidate {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []domain.ExtractionCandidate
	for _, fr := range e.rules {
		if c, ok := e.extractField(text, fr); ok {
			out = append(out, c)
		}
	}
	return out
}

func (e *Extractor) extractField(text string, fr FieldRules) (domain.ExtractionCandidate, bool) {
	for _, rule := range fr.Rules {
		idx := rule.Re.FindStringSubmatchIndex(text)
		if idx == nil {
			continue
		}
		matchText := text[idx[0]:idx[1]]
		span := matchText
		spanStart := idx[0]
		if len(idx) >= 4 && idx[2] >= 0 {
			span = text[idx[2]:idx[3]]
			spanStart = idx[2]
		}

		value, ok := normalizeSpan(fr.Field, span)
		if !ok {
			// span did not normalize; the rule is treated as unmatched
			continue
		}

		return domain.ExtractionCandidate{
			Field:          fr.Field,
			Value:          value,
			Source:         domain.SourcePattern,
			RawSpan:        strings.TrimSpace(span),
			LabelProximity: proximity(rule, matchText, spanStart-idx[0]),
		}, true
	}
	return domain.ExtractionCandidate{}, false
}

// normalizeSpan converts a raw matched span into the field's semantic value.
func normalizeSpan(field domain.FieldName, span string) (domain.FieldValue, bool) {
	switch domain.TypeOf(field) {
	case domain.FieldTypeDate:
		d, err := domain.ParseDate(span)
		if err != nil {
			return domain.FieldValue{}, false
		}
		return domain.DateValue(d), true
	case domain.FieldTypeAmount:
		a, err := domain.ParseAmount(span)
		if err != nil {
			return domain.FieldValue{}, false
		}
		return domain.AmountValue(a), true
	default:
		if field == domain.FieldVendor {
			v := domain.NormalizeText(span)
			if v == "" {
				return domain.FieldValue{}, false
			}
			return domain.TextValue(v), true
		}
		id := domain.NormalizeIdentifier(span)
		if id == "" {
			return domain.FieldValue{}, false
		}
		return domain.TextValue(id), true
	}
}

// proximity measures how near the value sat to the rule's label token within
// the matched text: 1.0 for an adjacent value, decaying linearly over gapSpan
// characters down to proximityFloor. Bare rules report bareProximity.
func proximity(rule Rule, matchText string, valueOffset int) float64 {
	if rule.Label == "" {
		return bareProximity
	}
	labelIdx := strings.Index(strings.ToLower(matchText), strings.ToLower(rule.Label))
	if labelIdx < 0 {
		return proximityFloor
	}
	gap := valueOffset - (labelIdx + len(rule.Label))
	if gap < 0 {
		gap = 0
	}
	p := 1.0 - float64(gap)/gapSpan
	if p < proximityFloor {
		p = proximityFloor
	}
	return p
}
