// Package speech provides a unified interface for spoken output.
//
// The game treats speech as an opaque, possibly long-blocking action:
// Say returns only when playback has completed (or failed). Providers
// implement the Provider interface so the backend can be swapped
// without changing caller code.
package speech

import "context"

// Provider defines the speech backend interface.
type Provider interface {
	// Say speaks the text and returns when playback completes.
	// May block for the full utterance duration.
	Say(ctx context.Context, text string) error

	// Health checks backend connectivity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}
