package remediate

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/linkrot/internal/clock/system"
	"github.com/JakeFAU/linkrot/internal/linkrot"
	"github.com/JakeFAU/linkrot/internal/progress"
)

// Orchestrator processes dead bookmarks one at a time.
type Orchestrator struct {
	store     linkrot.BookmarkStore
	resolver  linkrot.SnapshotResolver
	confirmer Confirmer
	emitter   progress.Emitter
	clock     linkrot.Clock
	logger    *zap.Logger
	runID     uuid.UUID
}

// Option customises optional collaborators.
type Option func(*Orchestrator)

// WithEmitter reports one REMEDIATION event per bookmark.
func WithEmitter(e progress.Emitter, runID uuid.UUID) Option {
	return func(o *Orchestrator) {
		if e != nil {
			o.emitter = e
		}
		o.runID = runID
	}
}

// WithClock overrides the event clock.
func WithClock(clk linkrot.Clock) Option {
	return func(o *Orchestrator) {
		if clk != nil {
			o.clock = clk
		}
	}
}

// WithLogger sets the component logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New builds an Orchestrator. All three collaborators are required.
func New(store linkrot.BookmarkStore, resolver linkrot.SnapshotResolver, confirmer Confirmer, opts ...Option) (*Orchestrator, error) {
	switch {
	case store == nil:
		return nil, errors.New("remediate: store is required")
	case resolver == nil:
		return nil, errors.New("remediate: resolver is required")
	case confirmer == nil:
		return nil, errors.New("remediate: confirmer is required")
	}
	o := &Orchestrator{
		store:     store,
		resolver:  resolver,
		confirmer: confirmer,
		emitter:   progress.Nop,
		clock:     system.New(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Process remediates each dead bookmark sequentially and returns one Outcome
// per input, in order. Per-bookmark failures are recorded and processing
// moves on; a canceled ctx marks the remaining bookmarks Canceled. each, if
// non-nil, sees every outcome as soon as it is final, before the next
// bookmark is looked at.
func (o *Orchestrator) Process(ctx context.Context, dead []linkrot.Bookmark, each func(Outcome)) Report {
	report := Report{Outcomes: make([]Outcome, 0, len(dead))}
	for _, bm := range dead {
		var outcome Outcome
		if err := ctx.Err(); err != nil {
			outcome = Outcome{Bookmark: bm, State: Canceled, Err: err}
		} else {
			outcome = o.Remediate(ctx, bm)
			o.record(outcome)
		}
		report.Outcomes = append(report.Outcomes, outcome)
		if each != nil {
			each(outcome)
		}
	}
	return report
}

// Remediate runs the state machine for a single dead bookmark.
func (o *Orchestrator) Remediate(ctx context.Context, bm linkrot.Bookmark) Outcome {
	out := Outcome{Bookmark: bm}
	lookup, err := o.resolver.Resolve(ctx, bm.URL, bm.Time)
	if err != nil {
		out.State = ResolutionFailed
		out.Err = fmt.Errorf("resolve snapshot for %s: %w", bm.URL, err)
		return out
	}
	out.Snapshot = lookup

	if lookup.Found {
		return o.update(ctx, out)
	}
	return o.delete(ctx, out)
}

func (o *Orchestrator) update(ctx context.Context, out Outcome) Outcome {
	prompt := Prompt{
		Action:      ActionUpdate,
		Description: out.Bookmark.Description,
		URL:         out.Bookmark.URL,
		SnapshotURL: out.Snapshot.URL,
	}
	if !o.confirmer.Confirm(ctx, prompt) {
		out.State = Skipped
		return out
	}
	// add must land before the old key is removed
	if err := o.store.Add(ctx, out.Bookmark.WithURL(out.Snapshot.URL)); err != nil {
		out.State = UpdateFailed
		out.Err = fmt.Errorf("add snapshot bookmark %s: %w", out.Snapshot.URL, err)
		return out
	}
	if err := o.store.DeleteByURL(ctx, out.Bookmark.URL); err != nil {
		out.State = StaleOriginal
		out.Err = fmt.Errorf("delete original bookmark %s: %w", out.Bookmark.URL, err)
		return out
	}
	out.State = Updated
	return out
}

func (o *Orchestrator) delete(ctx context.Context, out Outcome) Outcome {
	prompt := Prompt{
		Action:      ActionDelete,
		Description: out.Bookmark.Description,
		URL:         out.Bookmark.URL,
	}
	if !o.confirmer.Confirm(ctx, prompt) {
		out.State = Skipped
		return out
	}
	if err := o.store.DeleteByURL(ctx, out.Bookmark.URL); err != nil {
		out.State = DeleteFailed
		out.Err = fmt.Errorf("delete bookmark %s: %w", out.Bookmark.URL, err)
		return out
	}
	out.State = Deleted
	return out
}

func (o *Orchestrator) record(out Outcome) {
	fields := []zap.Field{
		zap.String("url", out.Bookmark.URL),
		zap.String("state", string(out.State)),
	}
	if out.Snapshot.Found {
		fields = append(fields, zap.String("snapshot", out.Snapshot.URL))
	}
	if out.Err != nil {
		o.logger.Warn("remediation failed", append(fields, zap.Error(out.Err))...)
	} else {
		o.logger.Info("remediation finished", fields...)
	}

	evt := progress.Event{
		RunID:   progress.UUIDToBytes(o.runID),
		TS:      o.clock.Now(),
		Stage:   progress.StageRemediation,
		URL:     out.Bookmark.URL,
		Outcome: string(out.State),
	}
	if out.Err != nil {
		evt.Note = out.Err.Error()
	}
	o.emitter.Emit(evt)
}
