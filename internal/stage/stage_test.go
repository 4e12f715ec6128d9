package stage

import (
	"strings"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"critique", Critique, false},
		{"FactCheck", FactCheck, false},
		{" synthesis ", Synthesis, false},
		{"review", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestOrderIsFixed(t *testing.T) {
	order := Order()
	want := []Kind{Critique, FactCheck, Synthesis}
	if len(order) != len(want) {
		t.Fatalf("Order() has %d stages, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Order()[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestParseFramed(t *testing.T) {
	raw := `Some preamble the model added.
---DOCUMENT---
# Strategy

The revised body.
---CRITIQUE---
- [CHANGED] Tightened the opening: it buried the decision.
- [DISSENT] Previous reviewer wanted to cut section 3: keep it.
---END---`

	doc, critique, ok := ParseFramed(raw)
	if !ok {
		t.Fatal("expected framed reply to parse")
	}
	if !strings.HasPrefix(doc, "# Strategy") || !strings.HasSuffix(doc, "The revised body.") {
		t.Errorf("doc = %q", doc)
	}
	if !strings.Contains(critique, "[DISSENT]") {
		t.Errorf("critique = %q", critique)
	}
	if strings.Contains(doc, DocumentFrame) || strings.Contains(critique, EndFrame) {
		t.Error("frames leaked into parsed sections")
	}
}

func TestParseFramedFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no frames at all", "just a plain reply"},
		{"missing end frame", "---DOCUMENT---\ntext\n---CRITIQUE---\n- [CHANGED] x"},
		{"missing critique frame", "---DOCUMENT---\ntext\n---END---"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, critique, ok := ParseFramed(tt.raw)
			if ok {
				t.Fatal("expected fallback")
			}
			if doc != strings.TrimSpace(tt.raw) {
				t.Errorf("doc = %q, want whole reply", doc)
			}
			if critique != FallbackCritique {
				t.Errorf("critique = %q", critique)
			}
		})
	}
}

func TestSystemPromptsShareReplyFormat(t *testing.T) {
	for _, kind := range Order() {
		p := systemPrompt(kind)
		for _, frame := range []string{DocumentFrame, CritiqueFrame, EndFrame} {
			if !strings.Contains(p, frame) {
				t.Errorf("%s prompt missing %s", kind, frame)
			}
		}
		if !strings.Contains(p, "LOCKED_START") {
			t.Errorf("%s prompt missing protected-region instruction", kind)
		}
	}
}
