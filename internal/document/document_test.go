package document

import (
	"strings"
	"testing"

	"github.com/strategyclub/debate/internal/errors"
)

func TestExtractNoMarkers(t *testing.T) {
	doc, err := Extract("# Strategy\n\nJust prose, nothing locked.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.HasProtectedContent() {
		t.Errorf("expected no spans, got %d", len(doc.Spans))
	}
}

func TestExtractSingleSpan(t *testing.T) {
	text := "intro\n" + StartMarker + "\nbudget: 40k\n" + EndMarker + "\noutro"

	doc, err := Extract(text)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(doc.Spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(doc.Spans))
	}

	span := doc.Spans[0]
	if span.Content != "\nbudget: 40k\n" {
		t.Errorf("content = %q", span.Content)
	}
	if text[span.Start:span.End] != StartMarker+span.Content+EndMarker {
		t.Error("span offsets do not cover marker-to-marker region")
	}
}

func TestExtractMultipleSpansOrdered(t *testing.T) {
	text := "a " + StartMarker + "one" + EndMarker + " b " + StartMarker + "two" + EndMarker + " c"

	doc, err := Extract(text)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(doc.Spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(doc.Spans))
	}
	if doc.Spans[0].Content != "one" || doc.Spans[1].Content != "two" {
		t.Errorf("spans = %+v", doc.Spans)
	}
	if doc.Spans[0].End > doc.Spans[1].Start {
		t.Error("spans overlap")
	}
}

func TestExtractMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{
			name: "start without end",
			text: "a " + StartMarker + " b",
			want: errors.ErrUnbalancedMarkers,
		},
		{
			name: "end without start",
			text: "a " + EndMarker + " b",
			want: errors.ErrUnbalancedMarkers,
		},
		{
			name: "end before start",
			text: EndMarker + " middle " + StartMarker + "x" + EndMarker,
			want: errors.ErrUnbalancedMarkers,
		},
		{
			name: "nested start",
			text: StartMarker + " outer " + StartMarker + " inner " + EndMarker,
			want: errors.ErrNestedMarkers,
		},
		{
			name: "second pair unbalanced",
			text: StartMarker + "ok" + EndMarker + " then " + StartMarker + " dangling",
			want: errors.ErrUnbalancedMarkers,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.text)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			var markerErr *errors.MarkerError
			if !errors.As(err, &markerErr) {
				t.Fatalf("error is %T, want *errors.MarkerError", err)
			}
			if markerErr.Offset < 0 {
				t.Error("marker error missing offset")
			}
		})
	}
}

func TestVerifyPassesWithoutSpans(t *testing.T) {
	doc, err := Extract("plain text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if err := doc.Verify("completely rewritten output"); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestVerifyIntactSpans(t *testing.T) {
	text := StartMarker + "alpha" + EndMarker + " mid " + StartMarker + "beta" + EndMarker
	doc, err := Extract(text)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	// Surrounding prose changed, span contents intact and in order.
	output := "new intro alpha rewritten middle beta new outro"
	if err := doc.Verify(output); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestVerifyDetectsAlteredSpan(t *testing.T) {
	doc, err := Extract(StartMarker + "budget: 40k" + EndMarker)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	err = doc.Verify("budget: 45k")
	if err == nil {
		t.Fatal("expected violation")
	}
	var violation *errors.ViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("error is %T, want *errors.ViolationError", err)
	}
	if violation.SpanIndex != 0 {
		t.Errorf("SpanIndex = %d, want 0", violation.SpanIndex)
	}
}

func TestVerifyDetectsReorderedSpans(t *testing.T) {
	text := StartMarker + "first" + EndMarker + " and " + StartMarker + "second" + EndMarker
	doc, err := Extract(text)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	err = doc.Verify("second then first")
	if err == nil {
		t.Fatal("expected violation for reordered spans")
	}
	var violation *errors.ViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("error is %T, want *errors.ViolationError", err)
	}
	if violation.SpanIndex != 1 {
		t.Errorf("SpanIndex = %d, want 1", violation.SpanIndex)
	}
}

func TestVerifyByteForByte(t *testing.T) {
	doc, err := Extract(StartMarker + "Tabs\tand  spaces" + EndMarker)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if err := doc.Verify("Tabs\tand  spaces"); err != nil {
		t.Errorf("exact content should verify: %v", err)
	}
	if err := doc.Verify("Tabs and  spaces"); err == nil {
		t.Error("whitespace change should fail verification")
	}
}

func TestStripMarkers(t *testing.T) {
	text := "a\n" + StartMarker + "\nlocked\n" + EndMarker + "\nb"
	got := StripMarkers(text)

	if strings.Contains(got, StartMarker) || strings.Contains(got, EndMarker) {
		t.Errorf("markers survived: %q", got)
	}
	if !strings.Contains(got, "locked") {
		t.Errorf("protected content removed: %q", got)
	}
}
