package sinks

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/JakeFAU/linkrot/internal/progress"
)

// RunStatus is a point-in-time view of the current run.
type RunStatus struct {
	RunID        string           `json:"run_id,omitempty"`
	Stage        string           `json:"stage,omitempty"`
	Checked      int64            `json:"checked"`
	Total        int64            `json:"total"`
	Dead         int64            `json:"dead"`
	Remediations map[string]int64 `json:"remediations"`
	UpdatedAt    time.Time        `json:"updated_at,omitzero"`
}

// StatusSink folds events into a RunStatus that HTTP handlers can read.
type StatusSink struct {
	mu     sync.RWMutex
	status RunStatus
}

// NewStatusSink returns an empty StatusSink.
func NewStatusSink() *StatusSink {
	return &StatusSink{status: RunStatus{Remediations: map[string]int64{}}}
}

// Consume applies the batch to the snapshot.
func (s *StatusSink) Consume(_ context.Context, batch []progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evt := range batch {
		st := &s.status
		st.RunID = evt.RunUUID().String()
		st.Stage = string(evt.Stage)
		st.UpdatedAt = evt.TS
		switch evt.Stage {
		case progress.StageRunStart:
			*st = RunStatus{RunID: st.RunID, Stage: st.Stage, UpdatedAt: st.UpdatedAt, Remediations: map[string]int64{}}
		case progress.StageBatchStart:
			st.Total = evt.Total
			st.Checked = 0
			st.Dead = 0
		case progress.StageCheckDone:
			st.Total = evt.Total
			st.Checked = max(st.Checked, evt.Done)
			if evt.Dead {
				st.Dead++
			}
		case progress.StageBatchDone:
			st.Checked = evt.Done
		case progress.StageRemediation:
			st.Remediations[evt.Outcome]++
		}
	}
	return nil
}

// Snapshot returns a copy of the current status.
func (s *StatusSink) Snapshot() RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.status
	out.Remediations = maps.Clone(s.status.Remediations)
	return out
}

// Close implements the Sink interface; it performs no action.
func (s *StatusSink) Close(context.Context) error {
	return nil
}
