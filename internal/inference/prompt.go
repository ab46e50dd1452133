package inference

import (
	"fmt"
	"strings"

	"claimdesk/internal/port"
)

// SystemPrompt frames the model as a claims/receipt extraction specialist.
const SystemPrompt = `You are an expert at extracting structured data from insurance claims, medical invoices, and healthcare receipts.

KEY RULES:
- event_date is when the service occurred (look for "Date of Service", "DOS", "Visit Date")
- submission_date is when the claim/invoice was created (look for "Invoice Date", "Claim Date")
- claim_amount is the FINAL total, not a subtotal or line item
- invoice_number is the document reference (INV-xxx, CLM-xxx, etc.)
- policy_number is the insurance identifier (POL-xxx, Member ID, etc.)

Always return valid JSON with exact field names. Use null for missing or unclear fields.`

// maxDocumentChars bounds the document text placed in the prompt so the
// request fits the model context window.
const maxDocumentChars = 2000

// BuildExtractionPrompt renders the field schema and document text into the
// extraction prompt.
func BuildExtractionPrompt(text string, schema []port.FieldSpec) string {
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars] + "..."
	}

	var b strings.Builder
	b.WriteString("Extract the following fields from this document:\n\n")
	for _, fs := range schema {
		req := "optional"
		if fs.Required {
			req = "required"
		}
		fmt.Fprintf(&b, "- %s (%s, %s): %s\n", fs.Name, fs.Type, req, fieldHint(fs))
	}
	b.WriteString("\nDOCUMENT TEXT:\n")
	b.WriteString(text)
	b.WriteString("\n\nReturn ONLY a valid JSON object (no explanations, no markdown) with exactly the field names above.\n")
	b.WriteString("Dates must be YYYY-MM-DD. Amounts must be numeric with no currency symbols. Use null for missing fields.\n")
	return b.String()
}

func fieldHint(fs port.FieldSpec) string {
	switch fs.Type {
	case "date":
		return "calendar date in YYYY-MM-DD form"
	case "amount":
		return "numeric amount, no symbols"
	default:
		return "string value"
	}
}
