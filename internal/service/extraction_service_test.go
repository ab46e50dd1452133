package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/confidence"
	"claimdesk/internal/domain"
	"claimdesk/internal/dupes"
	"claimdesk/internal/extractor/pattern"
	"claimdesk/internal/orchestrator"
	"claimdesk/internal/port"
	"claimdesk/internal/validator"
	"claimdesk/mocks"
)

func newTestService(repo port.OutcomeRepository) *ExtractionService {
	v := validator.New(validator.Config{MaxYearsBack: 5, FraudCeiling: 100000})
	orch := orchestrator.New(nil, pattern.New(), v, confidence.New(0.50), dupes.NewMemoryIndex(), orchestrator.Config{})
	return NewExtractionService(orch, repo, 30*time.Second, 2)
}

func sampleText() string {
	d := time.Now().UTC().AddDate(0, 0, -30).Format("01/02/2006")
	return fmt.Sprintf("Date of Service: %s\nInvoice #: INV-2024-001\nTotal: $125.50", d)
}

func TestExtract_ValidatesInput(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.Extract(context.Background(), &ExtractInput{Text: "", OCRQuality: 0.9})
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)

	_, err = svc.Extract(context.Background(), &ExtractInput{Text: "x", OCRQuality: 1.5})
	assert.ErrorIs(t, err, domain.ErrInvalidOCRQuality)

	_, err = svc.Extract(context.Background(), &ExtractInput{Text: "x", OCRQuality: -0.1})
	assert.ErrorIs(t, err, domain.ErrInvalidOCRQuality)
}

func TestExtract_WithoutRepository(t *testing.T) {
	svc := newTestService(nil)

	res, err := svc.Extract(context.Background(), &ExtractInput{Text: sampleText(), OCRQuality: 0.9})
	require.NoError(t, err)
	require.NotNil(t, res.Outcome)
	assert.Nil(t, res.RecordID)
	assert.Equal(t, "INV-2024-001", res.Outcome.Field(domain.FieldInvoiceNumber).Value.Text)
}

func TestExtract_PersistsOutcome(t *testing.T) {
	repo := new(mocks.MockOutcomeRepo)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.OutcomeRecord")).Return(nil)
	svc := newTestService(repo)

	res, err := svc.Extract(context.Background(), &ExtractInput{Text: sampleText(), OCRQuality: 0.9})
	require.NoError(t, err)
	require.NotNil(t, res.RecordID)
	repo.AssertCalled(t, "Save", mock.Anything, mock.AnythingOfType("*domain.OutcomeRecord"))

	saved := repo.Calls[0].Arguments.Get(1).(*domain.OutcomeRecord)
	assert.Equal(t, res.Outcome.Disposition, saved.Disposition)
	assert.Equal(t, 0.9, saved.OCRQuality)
	assert.NotEmpty(t, saved.Fields)
}

func TestExtractBatch_AggregatesStats(t *testing.T) {
	svc := newTestService(nil)

	inputs := []*ExtractInput{
		{Text: sampleText(), OCRQuality: 0.9},
		{Text: sampleText(), OCRQuality: 0.9}, // same invoice: duplicate
		{Text: "Total: $50.00", OCRQuality: 0.9},
		{Text: "", OCRQuality: 0.9}, // invalid, skipped
	}
	results, stats := svc.ExtractBatch(context.Background(), inputs)

	require.Len(t, results, 4)
	assert.Nil(t, results[3])
	assert.Equal(t, 3, stats.Documents)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 2, stats.ManualReview)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 3, stats.ModelFailed)
}

func TestGetOutcome_NoRepository(t *testing.T) {
	svc := newTestService(nil)
	_, err := svc.GetOutcome(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
