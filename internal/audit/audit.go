// Package audit wires one end-to-end link rot run: list the collection, check
// every link, print the rot summary, then hand dead bookmarks to remediation.
package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/linkrot/internal/clock/system"
	"github.com/JakeFAU/linkrot/internal/linkrot"
	"github.com/JakeFAU/linkrot/internal/progress"
	"github.com/JakeFAU/linkrot/internal/remediate"
)

// Remediator processes the dead set; *remediate.Orchestrator satisfies it.
type Remediator interface {
	Process(ctx context.Context, dead []linkrot.Bookmark, each func(remediate.Outcome)) remediate.Report
}

// Deps bundles the collaborators of a Runner.
type Deps struct {
	Store      linkrot.BookmarkStore
	Checker    linkrot.LinkChecker
	Remediator Remediator
	Emitter    progress.Emitter
	Clock      linkrot.Clock
	Logger     *zap.Logger
	Out        io.Writer
	RunID      uuid.UUID
}

// Summary describes a finished run.
type Summary struct {
	RunID   uuid.UUID
	Total   int
	Dead    []linkrot.Bookmark
	Results []linkrot.CheckResult
	Report  remediate.Report
	Elapsed time.Duration
}

// RotPercent is the share of dead links, 0 for an empty collection.
func (s Summary) RotPercent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(len(s.Dead)) / float64(s.Total) * 100
}

// Line renders the one-line rot summary.
func (s Summary) Line() string {
	return fmt.Sprintf("link rot: %.2f%%. %d/%d", s.RotPercent(), len(s.Dead), s.Total)
}

// Runner executes audit runs.
type Runner struct {
	deps Deps
}

// New validates deps and returns a Runner.
func New(deps Deps) (*Runner, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("audit: store is required")
	case deps.Checker == nil:
		return nil, errors.New("audit: checker is required")
	case deps.Remediator == nil:
		return nil, errors.New("audit: remediator is required")
	}
	if deps.Emitter == nil {
		deps.Emitter = progress.Nop
	}
	if deps.Clock == nil {
		deps.Clock = system.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	return &Runner{deps: deps}, nil
}

// Run performs one audit. The returned error covers only failures that stop
// the run (listing the collection, or ctx ending before every link was
// checked); per-bookmark remediation failures are in the Summary's Report.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := r.deps.Clock.Now()
	summary := Summary{RunID: r.deps.RunID}
	logger := r.deps.Logger.With(zap.Stringer("run_id", r.deps.RunID))
	r.emit(progress.Event{Stage: progress.StageRunStart})

	r.printf("Fetching bookmarks...\n")
	bookmarks, err := r.deps.Store.ListAll(ctx)
	if err != nil {
		r.emit(progress.Event{Stage: progress.StageRunError, Dur: r.deps.Clock.Now().Sub(start), Note: err.Error()})
		return summary, fmt.Errorf("list bookmarks: %w", err)
	}
	summary.Total = len(bookmarks)
	logger.Info("bookmarks fetched", zap.Int("total", summary.Total))

	r.printf("Analyzing bookmarks...\n")
	urls := make([]string, len(bookmarks))
	for i, bm := range bookmarks {
		urls[i] = bm.URL
	}
	summary.Results = r.deps.Checker.CheckAll(ctx, urls)
	if err := ctx.Err(); err != nil {
		// unchecked links come back dead; a summary would overstate rot
		r.emit(progress.Event{Stage: progress.StageRunError, Dur: r.deps.Clock.Now().Sub(start), Note: err.Error()})
		return summary, fmt.Errorf("check links: %w", err)
	}
	summary.Dead = DeadSet(bookmarks, summary.Results)
	r.printf("%s\n", summary.Line())
	logger.Info("link check complete",
		zap.Int("total", summary.Total),
		zap.Int("dead", len(summary.Dead)),
		zap.Float64("rot_percent", summary.RotPercent()),
	)

	summary.Report = r.deps.Remediator.Process(ctx, summary.Dead, r.printOutcome)
	r.printf("%s\n", Tally(summary.Report))

	summary.Elapsed = r.deps.Clock.Now().Sub(start)
	r.emit(progress.Event{Stage: progress.StageRunDone, Dur: summary.Elapsed})
	return summary, nil
}

// DeadSet returns the bookmarks whose result is Dead, in input order. Results
// must be index-aligned with bookmarks.
func DeadSet(bookmarks []linkrot.Bookmark, results []linkrot.CheckResult) []linkrot.Bookmark {
	var dead []linkrot.Bookmark
	for i, res := range results {
		if i < len(bookmarks) && res.Dead() {
			dead = append(dead, bookmarks[i])
		}
	}
	return dead
}

// Tally summarises a remediation report in one line.
func Tally(report remediate.Report) string {
	return fmt.Sprintf("remediation: %d updated, %d deleted, %d skipped, %d failed",
		report.Count(remediate.Updated),
		report.Count(remediate.Deleted),
		report.Count(remediate.Skipped)+report.Count(remediate.Canceled),
		len(report.Failures()),
	)
}

func (r *Runner) printOutcome(out remediate.Outcome) {
	switch out.State {
	case remediate.Updated:
		r.printf("Bookmark updated\n")
	case remediate.Deleted:
		r.printf("Bookmark deleted\n")
	case remediate.StaleOriginal:
		r.printf("Bookmark %s added as %s but the original could not be removed: %v\n",
			out.Bookmark.URL, out.Snapshot.URL, out.Err)
	case remediate.UpdateFailed, remediate.DeleteFailed, remediate.ResolutionFailed:
		r.printf("Could not remediate %s: %v\n", out.Bookmark.URL, out.Err)
	}
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.deps.Out, format, args...)
}

func (r *Runner) emit(evt progress.Event) {
	evt.RunID = progress.UUIDToBytes(r.deps.RunID)
	evt.TS = r.deps.Clock.Now()
	r.deps.Emitter.Emit(evt)
}
