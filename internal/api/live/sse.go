// Package live contains the Datastar SSE handlers that keep the
// dashboard UI synchronized with server-side state.
package live

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/starfederation/datastar-go/datastar"
)

// EmptyInput is a shared empty input struct for handlers with no parameters.
type EmptyInput struct{}

// SSE wraps a Datastar SSE generator with helpers for the patterns the
// dashboard uses: signal pushes and inner-HTML patching.
type SSE struct {
	*datastar.ServerSentEventGenerator
}

// NewSSE creates a Datastar SSE helper from a Huma streaming context.
func NewSSE(humaCtx huma.Context) SSE {
	r, w := humago.Unwrap(humaCtx)
	return SSE{datastar.NewSSE(w, r)}
}

// Patch sends HTML to replace inner content at a CSS selector.
func (s SSE) Patch(html, selector string) {
	s.PatchElements(html,
		datastar.WithSelector(selector),
		datastar.WithModeInner(),
	)
}

// Error sends an error signal to the client.
func (s SSE) Error(msg string) {
	s.MarshalAndPatchSignals(map[string]any{"error": msg})
}
