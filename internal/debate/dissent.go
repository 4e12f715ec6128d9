package debate

import "strings"

// DissentSectionHeading marks the dissent register in the final document.
const DissentSectionHeading = "## Dissent Register"

// DissentEntry is one position the three systems could not reconcile.
type DissentEntry struct {
	// Topic describes the disputed point.
	Topic string `json:"topic"`
	// Positions holds the per-system position lines as written.
	Positions []string `json:"positions"`
	// Recommendation is the suggested call for the human decision maker.
	Recommendation string `json:"recommendation,omitempty"`
}

// DissentRegister is the list of unreconciled positions extracted from the
// final document.
type DissentRegister struct {
	Entries []DissentEntry `json:"entries"`
}

// Count returns the number of dissent entries.
func (r DissentRegister) Count() int { return len(r.Entries) }

// ParseDissentRegister extracts the dissent register section from the
// final document. Entries follow the format the meta-synthesis prompt
// demands:
//
//	**Topic:** description
//	- **Claude's position:** ...
//	- **Recommendation:** ...
//
// A missing section or a section stating convergence yields an empty
// register, not an error; the register is advisory output.
func ParseDissentRegister(doc string) DissentRegister {
	var register DissentRegister

	section, ok := dissentSection(doc)
	if !ok {
		return register
	}

	var current *DissentEntry
	flush := func() {
		if current != nil && current.Topic != "" {
			register.Entries = append(register.Entries, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(section, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "**Topic:**"):
			flush()
			current = &DissentEntry{
				Topic: strings.TrimSpace(strings.TrimPrefix(trimmed, "**Topic:**")),
			}
		case current != nil && strings.HasPrefix(trimmed, "- **Recommendation:**"):
			current.Recommendation = strings.TrimSpace(strings.TrimPrefix(trimmed, "- **Recommendation:**"))
		case current != nil && strings.HasPrefix(trimmed, "- **"):
			current.Positions = append(current.Positions, strings.TrimPrefix(trimmed, "- "))
		}
	}
	flush()

	return register
}

// dissentSection returns the text between the dissent heading and the next
// second-level heading (or the end of the document).
func dissentSection(doc string) (string, bool) {
	start := strings.Index(doc, DissentSectionHeading)
	if start < 0 {
		return "", false
	}
	body := doc[start+len(DissentSectionHeading):]

	if next := strings.Index(body, "\n## "); next >= 0 {
		body = body[:next]
	}
	return body, true
}
