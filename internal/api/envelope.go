package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the envelope structure itself changes.
// Clients check it before parsing the rest of the response.
const envelopeVersion = "1"

// Envelope is the uniform wrapper applied to every API response body.
//
// Success:  {"v": "1", "success": true, "data": {...}}
// No data:  {"v": "1", "success": true}
// Error:    {"v": "1", "success": false, "error": "message"}
// Detailed: {"v": "1", "success": false, "code": "...", "message": "...", "details": {...}}
//
// The version field is named exactly "v" - renaming it breaks every
// client silently. Fixtures under testdata/envelope pin the shape.
type Envelope struct {
	V       string `json:"v" doc:"Envelope format version"`
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Data    any    `json:"data,omitempty" doc:"Response payload on success"`
	Error   string `json:"error,omitempty" doc:"Error message for simple errors"`
	Code    string `json:"code,omitempty" doc:"Machine-readable error code"`
	Message string `json:"message,omitempty" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// EnvelopeTransformer wraps every response body in the standard envelope.
// Registered as a huma transformer so handlers return plain payloads.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		if apiErr.Code == "" {
			return &Envelope{
				V:       envelopeVersion,
				Success: false,
				Error:   apiErr.Message,
			}, nil
		}
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	if v == nil {
		return &Envelope{V: envelopeVersion, Success: true}, nil
	}

	return &Envelope{V: envelopeVersion, Success: true, Data: v}, nil
}
