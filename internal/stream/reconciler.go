// Package stream converts normalized upstream observations into the wire
// formats of the downstream surfaces: browser SSE, OpenAI-compatible chunk
// streams and buffered MCP answers.
package stream

import "strings"

// Policy selects what the reconciler does when a new snapshot diverges from
// what was already forwarded. The upstream occasionally restarts or rewrites
// its answer mid-stream, so divergence is a real condition, not a bug guard.
type Policy int

const (
	// PolicyReset signals divergence explicitly and restarts from the full
	// new snapshot. Used by the browser UI, which can clear its view.
	PolicyReset Policy = iota
	// PolicyOverlap silently splices the streams: it finds the longest
	// overlap between the tail of the forwarded text and the head of the
	// new snapshot and forwards only what follows. Used for OpenAI clients,
	// whose protocol has no way to retract emitted content.
	PolicyOverlap
)

// Fragment is one reconciliation step. When Reset is true the consumer must
// discard everything shown so far and start over with Text as the full
// content; otherwise Text is an increment to append.
type Fragment struct {
	Reset bool
	Text  string
}

// Reconciler turns a sequence of cumulative text snapshots into append-only
// fragments, applying the configured divergence policy.
type Reconciler struct {
	policy Policy
	prev   string
}

func NewReconciler(policy Policy) *Reconciler {
	return &Reconciler{policy: policy}
}

// Apply ingests the next cumulative snapshot. It reports false when there is
// nothing to forward: an empty or unchanged snapshot.
func (r *Reconciler) Apply(raw string) (Fragment, bool) {
	if raw == "" || raw == r.prev {
		return Fragment{}, false
	}

	var fragment Fragment
	switch {
	case strings.HasPrefix(raw, r.prev):
		fragment = Fragment{Text: raw[len(r.prev):]}
	case r.policy == PolicyReset:
		fragment = Fragment{Reset: true, Text: raw}
	default:
		overlap := longestOverlap(r.prev, raw)
		fragment = Fragment{Text: raw[overlap:]}
	}

	r.prev = raw
	if fragment.Text == "" && !fragment.Reset {
		return Fragment{}, false
	}
	return fragment, true
}

// Final returns the last snapshot seen, which is the complete answer once
// the stream has finished.
func (r *Reconciler) Final() string {
	return r.prev
}

// longestOverlap returns the length of the longest suffix of prev that is
// also a prefix of next. Quadratic in the worst case, but divergence is rare
// and snapshots are answer-sized.
func longestOverlap(prev, next string) int {
	max := len(prev)
	if len(next) < max {
		max = len(next)
	}
	for k := max; k > 0; k-- {
		if prev[len(prev)-k:] == next[:k] {
			return k
		}
	}
	return 0
}
