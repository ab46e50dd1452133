package export

import (
	"encoding/json"
	"io"

	"claimdesk/internal/domain"
)

// WriteJSON serializes outcomes as an indented JSON array.
func WriteJSON(w io.Writer, outcomes []*domain.ExtractionOutcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(outcomes)
}
