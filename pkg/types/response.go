// Package types holds the wire shapes shared between the API layer and
// clients. Every endpoint responds with exactly one of the two envelopes.
package types

// SuccessEnvelope wraps all 2xx payloads as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public face of a failed request. Code is one of the
// stable machine-readable codes from pkg/errors; Details carries structured
// context (field violations, retry hints) only for codes that allow it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps all non-2xx payloads as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
