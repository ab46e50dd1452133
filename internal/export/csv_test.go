package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/domain"
)

func sampleOutcome() *domain.ExtractionOutcome {
	fields := make(map[domain.FieldName]domain.FieldResult)
	for _, f := range domain.AllFields {
		fields[f] = domain.FieldResult{Field: f, Value: domain.Absent(domain.TypeOf(f))}
	}
	fields[domain.FieldEventDate] = domain.FieldResult{
		Field:      domain.FieldEventDate,
		Value:      domain.DateValue(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
		Confidence: 0.92,
		Source:     domain.SourcePattern,
	}
	fields[domain.FieldClaimAmount] = domain.FieldResult{
		Field:      domain.FieldClaimAmount,
		Value:      domain.AmountValue(domain.Amount{Value: decimal.RequireFromString("125.50"), Currency: "USD"}),
		Confidence: 0.88,
		Source:     domain.SourceModel,
	}
	fields[domain.FieldInvoiceNumber] = domain.FieldResult{
		Field:      domain.FieldInvoiceNumber,
		Value:      domain.TextValue("INV-2024-001"),
		Confidence: 0.95,
		Source:     domain.SourcePattern,
		Errors: []domain.ValidationError{
			{Kind: domain.ErrKindBadLength, Field: domain.FieldInvoiceNumber, Message: "x"},
		},
	}
	return &domain.ExtractionOutcome{
		Fields:            fields,
		OverallConfidence: 0.78,
		Disposition:       domain.DispositionManualReview,
		ExtractionMethod:  domain.MethodHybrid,
		ReviewFlag:        true,
	}
}

func TestCSVWriter_HeaderAndRow(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteOutcomes([]*domain.ExtractionOutcome{sampleOutcome()}))
	w.Flush()
	require.NoError(t, w.Error())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header, row := records[0], records[1]
	assert.Equal(t, columns, header)
	assert.Len(t, row, len(columns))

	assert.Equal(t, "2024-03-15", row[0])
	assert.Equal(t, "", row[1]) // absent submission date
	assert.Equal(t, "125.50", row[2])
	assert.Equal(t, "USD", row[3])
	assert.Equal(t, "INV-2024-001", row[4])
	assert.Equal(t, "0.78", row[8])
	assert.Equal(t, "manual_review", row[9])
	assert.Equal(t, "hybrid", row[10])
	assert.Equal(t, "No", row[11])
	assert.Equal(t, "Yes", row[12])
	assert.Equal(t, "", row[13])
	assert.Equal(t, "invoice_number: bad_length", row[14])
}

func TestCSVWriter_RejectionReason(t *testing.T) {
	o := sampleOutcome()
	o.Disposition = domain.DispositionRejected
	o.RejectionReason = &domain.RejectionReason{
		Kind:  domain.RejectionCriticalFieldMissing,
		Field: domain.FieldInvoiceNumber,
	}

	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	require.NoError(t, w.WriteOutcomes([]*domain.ExtractionOutcome{o}))
	w.Flush()

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "critical_field_missing (invoice_number)", records[0][13])
}

func TestWriteJSON_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []*domain.ExtractionOutcome{sampleOutcome()}))
	assert.Contains(t, buf.String(), `"disposition": "manual_review"`)
	assert.Contains(t, buf.String(), `"INV-2024-001"`)
}

func TestWriteXLSX_ProducesWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []*domain.ExtractionOutcome{sampleOutcome()}))
	// xlsx files are zip archives
	assert.Equal(t, []byte{'P', 'K'}, buf.Bytes()[:2])
}
