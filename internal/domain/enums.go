package domain

// FieldName is the closed enumeration of extracted claim fields.
type FieldName string

const (
	FieldEventDate      FieldName = "event_date"
	FieldSubmissionDate FieldName = "submission_date"
	FieldClaimAmount    FieldName = "claim_amount"
	FieldInvoiceNumber  FieldName = "invoice_number"
	FieldPolicyNumber   FieldName = "policy_number"
	FieldVendor         FieldName = "vendor"
	FieldTax            FieldName = "tax"
)

// AllFields lists every field in canonical order. Every ExtractionOutcome
// carries exactly one FieldResult per entry, Present or Absent.
var AllFields = []FieldName{
	FieldEventDate,
	FieldSubmissionDate,
	FieldClaimAmount,
	FieldInvoiceNumber,
	FieldPolicyNumber,
	FieldVendor,
	FieldTax,
}

// FieldType classifies the semantic type a field's value is parsed into.
type FieldType string

const (
	FieldTypeDate   FieldType = "date"
	FieldTypeAmount FieldType = "amount"
	FieldTypeString FieldType = "string"
)

// TypeOf returns the semantic type of a field.
func TypeOf(f FieldName) FieldType {
	switch f {
	case FieldEventDate, FieldSubmissionDate:
		return FieldTypeDate
	case FieldClaimAmount, FieldTax:
		return FieldTypeAmount
	default:
		return FieldTypeString
	}
}

// IsOptional reports whether a field's absence is acceptable on its own.
// policy_number lowers the overall confidence floor when absent but never
// forces rejection; vendor and tax are informational.
func IsOptional(f FieldName) bool {
	switch f {
	case FieldPolicyNumber, FieldVendor, FieldTax:
		return true
	}
	return false
}

// CriticalField is the field whose absence after both extraction passes
// forces a Rejected disposition.
const CriticalField = FieldInvoiceNumber

// Source identifies which extractor produced a candidate or result.
type Source string

const (
	SourceModel   Source = "model"
	SourcePattern Source = "pattern"
	SourceNone    Source = ""
)

// ExtractionMethod records which extractor(s) contributed Present fields
// to the final outcome.
type ExtractionMethod string

const (
	MethodModel   ExtractionMethod = "model"
	MethodPattern ExtractionMethod = "pattern"
	MethodHybrid  ExtractionMethod = "hybrid"
)

// Disposition is the terminal classification of a document's extraction.
type Disposition string

const (
	DispositionAccepted     Disposition = "accepted"
	DispositionManualReview Disposition = "manual_review"
	DispositionRejected     Disposition = "rejected"
)

// DuplicateStatus is the result of a DuplicateIndex check-and-register.
type DuplicateStatus string

const (
	DuplicateStatusNew       DuplicateStatus = "new"
	DuplicateStatusDuplicate DuplicateStatus = "duplicate"
)

// FailureKind classifies why a model extraction pass produced no candidates.
type FailureKind string

const (
	FailureUnavailable FailureKind = "unavailable"
	FailureTimeout     FailureKind = "timeout"
	FailureMalformed   FailureKind = "malformed_response"
)
