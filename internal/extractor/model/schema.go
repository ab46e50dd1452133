package model

import (
	"claimdesk/internal/domain"
	"claimdesk/internal/port"
)

// Schema returns the declarative field schema sent with every inference
// request: field names, declared types, and required flags.
func Schema() []port.FieldSpec {
	specs := make([]port.FieldSpec, 0, len(domain.AllFields))
	for _, f := range domain.AllFields {
		specs = append(specs, port.FieldSpec{
			Name:     string(f),
			Type:     string(domain.TypeOf(f)),
			Required: !domain.IsOptional(f),
		})
	}
	return specs
}
