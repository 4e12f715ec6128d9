// Package stage runs a single provider invocation within a debate round.
//
// A stage builds the role-specific prompt from the current document text and
// the accumulated critique log, submits it to one provider, parses the framed
// reply into a revised document plus critique bullets, and verifies that all
// protected regions survived untouched. Transient provider failures are
// retried with exponential backoff; auth and malformed-response failures
// propagate immediately.
package stage

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Kind identifies one of the three fixed debate stages.
type Kind string

const (
	Critique  Kind = "critique"
	FactCheck Kind = "factcheck"
	Synthesis Kind = "synthesis"
)

// Order returns the fixed stage sequence within a round.
// The order never changes: each stage's prompt is built from the
// immediately preceding stage's output.
func Order() []Kind {
	return []Kind{Critique, FactCheck, Synthesis}
}

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Critique:
		return Critique, nil
	case FactCheck:
		return FactCheck, nil
	case Synthesis:
		return Synthesis, nil
	default:
		return "", fmt.Errorf("unknown stage kind %q", s)
	}
}

// Result is the immutable record of one completed stage.
// It is what the checkpoint store persists and what resume rebuilds from.
type Result struct {
	Round       int       `json:"round"`
	Kind        Kind      `json:"stage"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	Critique    string    `json:"critique"`
	CompletedAt time.Time `json:"completed_at"`
}

// Frame delimiters the providers are instructed to reply with.
const (
	DocumentFrame = "---DOCUMENT---"
	CritiqueFrame = "---CRITIQUE---"
	EndFrame      = "---END---"
)

// FallbackCritique is recorded when a reply did not follow the framed format.
const FallbackCritique = "(no structured critique extracted)"

var (
	documentRe = regexp.MustCompile(`(?s)---DOCUMENT---\s*\n(.*?)---CRITIQUE---`)
	critiqueRe = regexp.MustCompile(`(?s)---CRITIQUE---\s*\n(.*?)---END---`)
)

// ParseFramed splits a provider reply into the revised document and the
// critique bullets. When the reply does not follow the framed format the
// whole reply is treated as the document, so a provider that ignores the
// format degrades the critique log rather than losing the document.
func ParseFramed(raw string) (doc, critique string, ok bool) {
	docMatch := documentRe.FindStringSubmatch(raw)
	critMatch := critiqueRe.FindStringSubmatch(raw)

	if docMatch != nil && critMatch != nil {
		return strings.TrimSpace(docMatch[1]), strings.TrimSpace(critMatch[1]), true
	}

	return strings.TrimSpace(raw), FallbackCritique, false
}
