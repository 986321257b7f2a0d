// Package intent turns a free-text site description into the raw structure
// the normalizer consumes. The primary parser asks a chat completion model
// for the structure; the heuristic parser is the offline fallback and never
// fails.
package intent

import "context"

// Parser extracts a raw site structure from a description. The returned map
// is untyped intent JSON; the second value is the JSON text as produced,
// kept verbatim for the run report.
type Parser interface {
	Parse(ctx context.Context, description string) (map[string]any, string, error)
}
