package pattern

import (
	"regexp"

	"claimdesk/internal/domain"
)

// Rule is one deterministic extraction pattern. The value is expected in
// capture group 1. Label names the anchor token the rule keys on; rules with
// an empty Label are bare patterns that match the value shape anywhere and
// carry a low fixed proximity.
type Rule struct {
	Name  string
	Label string
	Re    *regexp.Regexp
}

// FieldRules is the ordered rule list for one field. Order is data: the
// first rule that matches anywhere in the text wins for the field.
type FieldRules struct {
	Field domain.FieldName
	Rules []Rule
}

// Value-shape fragments shared across rules.
const (
	dateSpan   = `(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}[/-]\d{1,2}[/-]\d{1,2}|[A-Za-z]+\.?\s+\d{1,2},?\s+\d{4})`
	amountSpan = `((?:USD|EUR|GBP|INR|[\$€£₹])?\s*\d(?:[\d.,]*\d)?)`
	identSpan  = `([A-Za-z0-9][A-Za-z0-9/-]*)`
	refMarker  = `\s*(?:#|No\.?|Number)\s*[:.]?\s*`
	lineSpan   = `([^\n\r]+)`
)

func labeled(name, label, pattern string) Rule {
	return Rule{Name: name, Label: label, Re: regexp.MustCompile(`(?i)` + pattern)}
}

func bare(name, pattern string) Rule {
	return Rule{Name: name, Re: regexp.MustCompile(`(?i)` + pattern)}
}

// DefaultRules returns the built-in rule lists for every field, in the
// canonical field order.
func DefaultRules() []FieldRules {
	return []FieldRules{
		{
			Field: domain.FieldEventDate,
			Rules: []Rule{
				labeled("event.date_of_service", "Date of Service", `Date\s+of\s+Service\s*:?\s*`+dateSpan),
				labeled("event.service_date", "Service Date", `Service\s+Date\s*:?\s*`+dateSpan),
				labeled("event.dos", "DOS", `\bDOS\s*:?\s*`+dateSpan),
				labeled("event.treatment_date", "Treatment Date", `Treatment\s+Date\s*:?\s*`+dateSpan),
				labeled("event.visit_date", "Visit Date", `Visit\s+Date\s*:?\s*`+dateSpan),
				labeled("event.procedure_date", "Procedure Date", `Procedure\s+Date\s*:?\s*`+dateSpan),
				bare("event.bare_date", dateSpan),
			},
		},
		{
			Field: domain.FieldSubmissionDate,
			Rules: []Rule{
				labeled("submission.invoice_date", "Invoice Date", `Invoice\s+Date\s*:?\s*`+dateSpan),
				labeled("submission.bill_date", "Bill Date", `Bill\s+Date\s*:?\s*`+dateSpan),
				labeled("submission.billing_date", "Billing Date", `Billing\s+Date\s*:?\s*`+dateSpan),
				labeled("submission.claim_date", "Claim Date", `Claim\s+Date\s*:?\s*`+dateSpan),
				labeled("submission.submission_date", "Submission Date", `Submission\s+Date\s*:?\s*`+dateSpan),
				labeled("submission.submitted", "Submitted", `Submitted\s*(?:On)?\s*:?\s*`+dateSpan),
			},
		},
		{
			Field: domain.FieldClaimAmount,
			Rules: []Rule{
				labeled("amount.grand_total", "Grand Total", `Grand\s+Total\s*:?\s*`+amountSpan),
				labeled("amount.total_charges", "Total Charges", `Total\s+Charges\s*:?\s*`+amountSpan),
				labeled("amount.amount_due", "Amount Due", `Amount\s+Due\s*:?\s*`+amountSpan),
				labeled("amount.balance_due", "Balance Due", `Balance\s+Due\s*:?\s*`+amountSpan),
				labeled("amount.claim_amount", "Claim Amount", `Claim\s+Amount\s*:?\s*`+amountSpan),
				labeled("amount.total", "Total", `Total\s*:?\s*`+amountSpan),
				labeled("amount.amount", "Amount", `Amount\s*:?\s*`+amountSpan),
				bare("amount.bare_currency", `(?:USD|EUR|GBP|INR|[\$€£₹])\s*(\d(?:[\d.,]*\d)?)`),
			},
		},
		{
			Field: domain.FieldInvoiceNumber,
			Rules: []Rule{
				labeled("invoice.invoice_ref", "Invoice", `Invoice`+refMarker+identSpan),
				labeled("invoice.claim_ref", "Claim", `Claim`+refMarker+identSpan),
				labeled("invoice.bill_ref", "Bill", `Bill`+refMarker+identSpan),
				labeled("invoice.receipt_ref", "Receipt", `Receipt`+refMarker+identSpan),
				labeled("invoice.reference_ref", "Reference", `Reference`+refMarker+identSpan),
				labeled("invoice.document_ref", "Document", `Document`+refMarker+identSpan),
			},
		},
		{
			Field: domain.FieldPolicyNumber,
			Rules: []Rule{
				labeled("policy.policy_ref", "Policy", `Policy`+refMarker+identSpan),
				labeled("policy.member_id", "Member ID", `Member\s+ID\s*:?\s*`+identSpan),
				labeled("policy.subscriber_id", "Subscriber ID", `Subscriber\s+ID\s*:?\s*`+identSpan),
				labeled("policy.insurance_ref", "Insurance", `Insurance`+refMarker+identSpan),
				labeled("policy.account_ref", "Account", `Account`+refMarker+identSpan),
			},
		},
		{
			Field: domain.FieldVendor,
			Rules: []Rule{
				labeled("vendor.provider", "Provider", `Provider\s*:\s*`+lineSpan),
				labeled("vendor.merchant", "Merchant", `Merchant\s*:\s*`+lineSpan),
				labeled("vendor.vendor", "Vendor", `Vendor\s*:\s*`+lineSpan),
				labeled("vendor.store", "Store", `Store\s*:\s*`+lineSpan),
				labeled("vendor.clinic", "Clinic", `Clinic\s*:\s*`+lineSpan),
				labeled("vendor.hospital", "Hospital", `Hospital\s*:\s*`+lineSpan),
				labeled("vendor.from", "From", `From\s*:\s*`+lineSpan),
			},
		},
		{
			Field: domain.FieldTax,
			Rules: []Rule{
				labeled("tax.sales_tax", "Sales Tax", `Sales\s+Tax\s*:?\s*`+amountSpan),
				labeled("tax.vat", "VAT", `\bVAT\s*:?\s*`+amountSpan),
				labeled("tax.gst", "GST", `\bGST\s*:?\s*`+amountSpan),
				labeled("tax.tax", "Tax", `\bTax\s*:?\s*`+amountSpan),
			},
		},
	}
}
