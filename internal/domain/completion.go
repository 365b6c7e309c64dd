package domain

import "context"

// CompletionOptions carries per-call tuning for the completion source.
type CompletionOptions struct {
	Temperature float64
}

// CompletionOption mutates CompletionOptions.
type CompletionOption func(*CompletionOptions)

// WithTemperature overrides the source's default sampling temperature.
func WithTemperature(t float64) CompletionOption {
	return func(o *CompletionOptions) {
		o.Temperature = t
	}
}

// CompletionSource is the external free-text generation collaborator.
// A completion with no usable text must surface as a
// COMPLETION_UNAVAILABLE error, never as an empty success.
type CompletionSource interface {
	Complete(ctx context.Context, prompt string, opts ...CompletionOption) (string, error)
}
