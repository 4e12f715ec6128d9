package debate

import (
	"strings"
	"testing"
)

func TestCompressCritiqueLogShortLogUntouched(t *testing.T) {
	log := logEntry(1, "claude", "- [CHANGED] tightened intro")
	if got := CompressCritiqueLog(log, 4000); got != log {
		t.Errorf("short log was modified: %q", got)
	}
}

func TestCompressCritiqueLogKeepsDissentAndHeaders(t *testing.T) {
	var sb strings.Builder
	for round := 1; round <= 3; round++ {
		var bullets []string
		for i := 0; i < 40; i++ {
			bullets = append(bullets, "- [CHANGED] some long critique bullet with plenty of filler text to inflate the log")
		}
		bullets = append(bullets, "- [DISSENT] round positions diverged on pricing")
		sb.WriteString(logEntry(round, "claude", strings.Join(bullets, "\n")))
	}
	full := sb.String()
	if len(full) <= 4000 {
		t.Fatal("test log too small to trigger compression")
	}

	got := CompressCritiqueLog(full, 4000)
	if len(got) > 4000+len("\n... (truncated)") {
		t.Errorf("compressed length = %d", len(got))
	}
	for round := 1; round <= 3; round++ {
		if !strings.Contains(got, "[Round") {
			t.Fatal("round headers dropped")
		}
	}
	if strings.Count(got, "[DISSENT]") != 3 {
		t.Errorf("dissent lines = %d, want all 3", strings.Count(got, "[DISSENT]"))
	}
	// Non-dissent bullets are capped at ten.
	if n := strings.Count(got, "[CHANGED]"); n > 10 {
		t.Errorf("other bullets = %d, want at most 10", n)
	}
}

func TestCompressCritiqueLogTruncatesAsLastResort(t *testing.T) {
	dissent := strings.Repeat("- [DISSENT] an irreducible disagreement line\n", 200)
	got := CompressCritiqueLog(dissent, 1000)
	if !strings.HasSuffix(got, "... (truncated)") {
		t.Errorf("missing truncation note: %q", got[len(got)-40:])
	}
}

func TestParseDissentRegisterNoSection(t *testing.T) {
	register := ParseDissentRegister("# Final\n\nNo register here.")
	if register.Count() != 0 {
		t.Errorf("entries = %d, want 0", register.Count())
	}
}

func TestParseDissentRegisterConverged(t *testing.T) {
	doc := "# Final\n\n" + DissentSectionHeading + "\n\nAll three systems converged on a shared position.\n"
	register := ParseDissentRegister(doc)
	if register.Count() != 0 {
		t.Errorf("entries = %d, want 0", register.Count())
	}
}

func TestParseDissentRegisterStopsAtNextSection(t *testing.T) {
	doc := "# Final\n\n" + DissentSectionHeading + `

**Topic:** Only real entry
- **Claude's position:** A
- **Recommendation:** Pick A

## Appendix

**Topic:** Not a dissent entry
`
	register := ParseDissentRegister(doc)
	if register.Count() != 1 {
		t.Fatalf("entries = %d, want 1", register.Count())
	}
	if register.Entries[0].Topic != "Only real entry" {
		t.Errorf("topic = %q", register.Entries[0].Topic)
	}
	if register.Entries[0].Recommendation != "Pick A" {
		t.Errorf("recommendation = %q", register.Entries[0].Recommendation)
	}
}
