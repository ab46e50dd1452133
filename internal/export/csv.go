// Package export serializes extraction outcomes. Writers consume outcomes
// read-only; an outcome is never mutated downstream of the orchestrator.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"claimdesk/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (15 columns).
var columns = []string{
	"Event Date",
	"Submission Date",
	"Claim Amount",
	"Currency",
	"Invoice Number",
	"Policy Number",
	"Vendor",
	"Tax",
	"Overall Confidence",
	"Disposition",
	"Extraction Method",
	"Duplicate",
	"Review Flag",
	"Rejection Reason",
	"Validation Errors",
}

// CSVWriter wraps csv.Writer for exporting outcomes as CSV.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the 15-column header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteOutcomes converts a batch of outcomes to CSV rows and writes them.
func (w *CSVWriter) WriteOutcomes(outcomes []*domain.ExtractionOutcome) error {
	for _, o := range outcomes {
		if err := w.csv.Write(outcomeToRow(o)); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

// outcomeToRow converts one outcome to a 15-element string slice. Absent
// fields render as empty cells.
func outcomeToRow(o *domain.ExtractionOutcome) []string {
	row := make([]string, len(columns))
	row[0] = o.Field(domain.FieldEventDate).Value.String()
	row[1] = o.Field(domain.FieldSubmissionDate).Value.String()
	row[2] = o.Field(domain.FieldClaimAmount).Value.String()
	if amount := o.Field(domain.FieldClaimAmount).Value; amount.Present {
		row[3] = amount.Amount.Currency
	}
	row[4] = o.Field(domain.FieldInvoiceNumber).Value.String()
	row[5] = o.Field(domain.FieldPolicyNumber).Value.String()
	row[6] = o.Field(domain.FieldVendor).Value.String()
	row[7] = o.Field(domain.FieldTax).Value.String()
	row[8] = strconv.FormatFloat(o.OverallConfidence, 'f', 2, 64)
	row[9] = string(o.Disposition)
	row[10] = string(o.ExtractionMethod)
	row[11] = formatBool(o.Duplicate)
	row[12] = formatBool(o.ReviewFlag)
	if o.RejectionReason != nil {
		row[13] = fmt.Sprintf("%s (%s)", o.RejectionReason.Kind, o.RejectionReason.Field)
	}
	row[14] = joinErrors(o)
	return row
}

func joinErrors(o *domain.ExtractionOutcome) string {
	var s string
	for _, f := range domain.AllFields {
		for _, e := range o.Field(f).Errors {
			if s != "" {
				s += "; "
			}
			s += string(e.Field) + ": " + string(e.Kind)
		}
	}
	return s
}

func formatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
