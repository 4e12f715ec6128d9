package debate

import (
	"fmt"
	"strings"
)

// DefaultCritiqueLogLimit is the character budget for the critique context
// fed to providers before compression kicks in.
const DefaultCritiqueLogLimit = 4000

// logEntry formats one stage's critique bullets for the accumulated log.
// The header prefix is what CompressCritiqueLog keys on.
func logEntry(round int, provider, critique string) string {
	return fmt.Sprintf("\n[Round %d - %s]\n%s\n", round, provider, critique)
}

// CompressCritiqueLog shrinks the accumulated critique log to fit maxChars
// while keeping what matters for later rounds: every dissent line, every
// round header, and the first ten other bullets. The full log stays intact
// for the final synthesis; only the per-round context is compressed.
func CompressCritiqueLog(full string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultCritiqueLogLimit
	}
	if len(full) <= maxChars {
		return full
	}

	lines := strings.Split(full, "\n")
	var headers, dissent, other []string
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "[Round"):
			headers = append(headers, line)
		case strings.Contains(line, "[DISSENT]"):
			dissent = append(dissent, line)
		case strings.HasPrefix(line, "- ["):
			other = append(other, line)
		}
	}

	if len(other) > 10 {
		other = other[:10]
	}

	kept := make([]string, 0, len(headers)+len(dissent)+len(other))
	kept = append(kept, headers...)
	kept = append(kept, dissent...)
	kept = append(kept, other...)

	compressed := strings.Join(kept, "\n")
	if len(compressed) > maxChars {
		compressed = compressed[:maxChars] + "\n... (truncated)"
	}
	return compressed
}
