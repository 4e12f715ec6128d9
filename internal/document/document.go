// Package document models the input document of a debate run and the
// protected regions inside it.
//
// Protected regions are delimited by literal HTML-comment markers:
//
//	<!-- LOCKED_START -->
//	...content the reviewers must not change...
//	<!-- LOCKED_END -->
//
// Extraction happens once, before any provider call, and rejects documents
// with unbalanced or nested markers. Preservation is a cross-cutting
// invariant: after every stage the original span contents are re-located in
// the stage's output and compared byte for byte. A mismatch is surfaced as a
// ViolationError, never silently patched.
package document

import (
	"strings"

	"github.com/strategyclub/debate/internal/errors"
)

// Marker syntax, recognized literally. Not configurable per run.
const (
	StartMarker = "<!-- LOCKED_START -->"
	EndMarker   = "<!-- LOCKED_END -->"
)

// ProtectedSpan is one immutable region of the source document.
type ProtectedSpan struct {
	// Start is the byte offset of the start marker in the source text.
	Start int `json:"start"`
	// End is the byte offset just past the end marker in the source text.
	End int `json:"end"`
	// Content is the text between the markers, excluding the markers
	// themselves. This is what every stage's output must reproduce verbatim.
	Content string `json:"content"`
}

// Document is a debate document plus its ordered, disjoint protected spans.
type Document struct {
	Text  string          `json:"text"`
	Spans []ProtectedSpan `json:"spans,omitempty"`
}

// Extract parses raw document text and locates all protected spans.
// It returns a MarkerError wrapping ErrUnbalancedMarkers or ErrNestedMarkers
// when the marker pairs do not line up; this is fatal and reported before any
// provider call.
func Extract(text string) (*Document, error) {
	doc := &Document{Text: text}

	pos := 0
	for {
		rel := strings.Index(text[pos:], StartMarker)
		relEnd := strings.Index(text[pos:], EndMarker)

		if rel == -1 {
			if relEnd != -1 {
				return nil, errors.NewMarkerError("end marker without matching start", errors.ErrUnbalancedMarkers).
					WithOffset(pos + relEnd)
			}
			break
		}
		if relEnd != -1 && relEnd < rel {
			return nil, errors.NewMarkerError("end marker before start marker", errors.ErrUnbalancedMarkers).
				WithOffset(pos + relEnd)
		}

		start := pos + rel
		contentStart := start + len(StartMarker)

		endRel := strings.Index(text[contentStart:], EndMarker)
		if endRel == -1 {
			return nil, errors.NewMarkerError("start marker without matching end", errors.ErrUnbalancedMarkers).
				WithOffset(start)
		}

		content := text[contentStart : contentStart+endRel]
		if nested := strings.Index(content, StartMarker); nested != -1 {
			return nil, errors.NewMarkerError("start marker inside open protected region", errors.ErrNestedMarkers).
				WithOffset(contentStart + nested)
		}

		end := contentStart + endRel + len(EndMarker)
		doc.Spans = append(doc.Spans, ProtectedSpan{
			Start:   start,
			End:     end,
			Content: content,
		})
		pos = end
	}

	return doc, nil
}

// Verify asserts that every protected span's content appears byte for byte in
// output, in the spans' original relative order. It returns nil for documents
// without protected spans. On the first missing or reordered span it returns
// a ViolationError carrying that span's index.
//
// Verification is positional, not positional-exact: stages may move text
// around a span, but the span content itself must survive unchanged and the
// spans must not be reordered relative to each other.
func (d *Document) Verify(output string) error {
	pos := 0
	for i, span := range d.Spans {
		idx := strings.Index(output[pos:], span.Content)
		if idx == -1 {
			return errors.NewViolationError(i)
		}
		pos += idx + len(span.Content)
	}
	return nil
}

// HasProtectedContent reports whether the document carries any protected spans.
func (d *Document) HasProtectedContent() bool {
	return len(d.Spans) > 0
}

// StripMarkers removes all protection markers from text, leaving the
// protected content in place. The final document is rendered without markers.
func StripMarkers(text string) string {
	text = strings.ReplaceAll(text, StartMarker+"\n", "")
	text = strings.ReplaceAll(text, StartMarker, "")
	text = strings.ReplaceAll(text, EndMarker+"\n", "")
	text = strings.ReplaceAll(text, EndMarker, "")
	return text
}
