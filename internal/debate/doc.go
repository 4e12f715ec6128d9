// Package debate drives the multi-round strategy document debate.
//
// A session routes a document through three fixed stages per round:
// critique (Claude), fact-check (Perplexity), and synthesis (ChatGPT).
// Each stage consumes the previous stage's output, so stages and rounds
// are strictly sequential. Every completed stage is checkpointed before
// the next one starts, and a resumed session rebuilds its history
// entirely from the checkpoint store.
//
// After the final round, a meta-synthesis call produces the closing
// document and a dissent register of positions the three systems could
// not reconcile.
//
// # Session Lifecycle
//
// A run progresses through three states:
//
//   - InProgress: rounds are executing (or about to)
//   - Completed: the final document and dissent register were written
//   - Failed: a stage or the final synthesis failed; the furthest
//     completed stage remains checkpointed and resumable
package debate
