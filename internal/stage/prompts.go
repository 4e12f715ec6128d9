package stage

import (
	"fmt"

	"github.com/strategyclub/debate/internal/document"
)

// The reply-format block is identical across all three stages so that the
// same parser handles every reply.
const replyFormat = `Respond EXACTLY in this format:

---DOCUMENT---
(your revised text here)
---CRITIQUE---
- [CHANGED] What you changed: reasoning
- [ADDED] What you added: reasoning
- [DISSENT] Disagreement with a previous reviewer: your position and why
---END---`

const lockedNotice = `IMPORTANT: Content between ` + document.StartMarker + ` and ` +
	document.EndMarker + ` must NOT be changed. Reproduce every such region byte for byte, including the markers themselves.`

const systemCritique = `You are a critical strategy reviewer. Your task:

1. Analyze the document for logical weaknesses, implicit assumptions, contradictions, and missing stakeholder perspectives.
2. Revise the text directly. Improve it rather than only commenting on it.
3. If you disagree with a position taken by a previous reviewer, mark it as DISSENT.

` + lockedNotice + `

` + replyFormat

const systemFactCheck = `You are a research assistant for strategy documents. Your task:

1. Check factual claims in the document for correctness.
2. Add current trends, market data, or relevant developments.
3. Identify common pitfalls of the described strategy.
4. Change the core argument only where factually necessary.
5. If you disagree with a position taken by a previous reviewer, mark it as DISSENT.

` + lockedNotice + `

` + replyFormat

const systemSynthesis = `You are a synthesis architect for strategy documents. Your task:

1. Optimize the structure and flow of the document.
2. Sharpen the line of argument so every section clearly contributes to the overall case.
3. Add clear headings and decision options.
4. Remove redundancy and improve readability.
5. If you disagree with a position taken by a previous reviewer, mark it as DISSENT.

` + lockedNotice + `

` + replyFormat

// correctionNotice is appended to the user prompt on the single re-prompt
// after a protected region came back altered.
const correctionNotice = `Your previous reply modified protected content. Content between ` +
	document.StartMarker + ` and ` + document.EndMarker +
	` must appear byte for byte as in the input, markers included. Produce the full document again with every protected region exactly as given.`

// systemPrompt returns the role instruction for a stage kind.
func systemPrompt(kind Kind) string {
	switch kind {
	case Critique:
		return systemCritique
	case FactCheck:
		return systemFactCheck
	case Synthesis:
		return systemSynthesis
	default:
		return systemCritique
	}
}

// userPrompt assembles the per-call message from the accumulated critique
// log and the current document state.
func userPrompt(critiqueLog, text string) string {
	return fmt.Sprintf("Critique log so far:\n%s\n\n---\n\nCurrent document:\n%s", critiqueLog, text)
}

// correctionPrompt is the re-prompt sent after a protected-region violation.
func correctionPrompt(critiqueLog, text string) string {
	return userPrompt(critiqueLog, text) + "\n\n---\n\n" + correctionNotice
}
