// Package remediate drives the per-bookmark repair flow for dead links:
// look up an archive snapshot, ask for confirmation, then either re-key the
// bookmark to the snapshot (add, then delete the old key) or delete it.
package remediate

import (
	"context"
	"fmt"

	"github.com/JakeFAU/linkrot/internal/linkrot"
)

// State is the terminal state of one bookmark's remediation.
type State string

// Terminal states.
const (
	// Skipped means the user declined; nothing was mutated.
	Skipped State = "skipped"
	// Updated means the snapshot record was added and the original deleted.
	Updated State = "updated"
	// UpdateFailed means add failed; the original is untouched.
	UpdateFailed State = "update_failed"
	// StaleOriginal means add succeeded but deleting the original failed,
	// leaving both records in the store.
	StaleOriginal State = "stale_original"
	// Deleted means the bookmark was removed.
	Deleted State = "deleted"
	// DeleteFailed means the confirmed delete did not succeed.
	DeleteFailed State = "delete_failed"
	// ResolutionFailed means the archive lookup errored; nothing was mutated.
	ResolutionFailed State = "resolution_failed"
	// Canceled marks bookmarks never reached because the run was canceled.
	Canceled State = "canceled"
)

// Mutated reports whether the state implies at least one store write landed.
func (s State) Mutated() bool {
	return s == Updated || s == StaleOriginal || s == Deleted
}

// Failed reports whether the state should be surfaced as an error.
func (s State) Failed() bool {
	switch s {
	case UpdateFailed, StaleOriginal, DeleteFailed, ResolutionFailed:
		return true
	default:
		return false
	}
}

// Action is what a prompt asks the user to approve.
type Action int

// Prompt actions.
const (
	ActionUpdate Action = iota
	ActionDelete
)

// Prompt is presented to the Confirmer for one dead bookmark.
type Prompt struct {
	Action      Action
	Description string
	URL         string
	SnapshotURL string
}

// String renders the question shown on a terminal.
func (p Prompt) String() string {
	if p.Action == ActionUpdate {
		return fmt.Sprintf("Internet archive link available for %s (%s). Do you want to update your bookmark? (y/N) ",
			p.Description, p.URL)
	}
	return fmt.Sprintf("Internet archive not available for %s (%s). Do you want to delete your bookmark? (y/N) ",
		p.Description, p.URL)
}

// Confirmer answers remediation prompts. Returning false declines.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) bool {
	return f(ctx, p)
}

// Outcome records what happened to one dead bookmark.
type Outcome struct {
	Bookmark linkrot.Bookmark
	Snapshot linkrot.SnapshotLookup
	State    State
	Err      error
}

// Report holds one Outcome per processed bookmark, in input order.
type Report struct {
	Outcomes []Outcome
}

// Count returns how many outcomes ended in state.
func (r Report) Count(state State) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == state {
			n++
		}
	}
	return n
}

// Failures returns the outcomes that ended in a failure state.
func (r Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.State.Failed() {
			out = append(out, o)
		}
	}
	return out
}
