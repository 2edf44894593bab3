package llm

import "errors"

// Errors returned by LLMClient.Generate. Classifiers wrap them in
// domain.ErrClassification.
var (
	ErrUnavailable    = errors.New("llm backend unavailable")
	ErrTimeout        = errors.New("llm request timed out")
	ErrInvalidOutput  = errors.New("invalid llm output format")
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")

	// ErrMissingAPIKey is returned when a hosted provider has no key.
	ErrMissingAPIKey = errors.New("llm api key required")
)
