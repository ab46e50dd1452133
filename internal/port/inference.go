package port

import (
	"context"
	"encoding/json"
)

// FieldSpec is one entry of the declarative schema sent to the inference
// service: the field name, its type (date|amount|string), and whether the
// document is expected to contain it.
type FieldSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// GenerateOptions are the recognized inference call options.
type GenerateOptions struct {
	Temperature     float64
	MaxOutputTokens int
	TimeoutSecs     int
}

// InferenceRequest carries the document text and field schema for one
// extraction call.
type InferenceRequest struct {
	Text    string
	Schema  []FieldSpec
	Options GenerateOptions
}

// InferenceResponse is the structured object returned by the service. RawJSON
// holds the extracted top-level JSON object; keys are a subset of the schema's
// field names.
type InferenceResponse struct {
	RawJSON json.RawMessage
	Model   string
}

// InferenceClient abstracts the external inference service. Implementations
// return typed errors (inference.ServiceError, inference.MalformedResponseError)
// so callers can distinguish transient from permanent failures.
type InferenceClient interface {
	Generate(ctx context.Context, req InferenceRequest) (*InferenceResponse, error)
}
