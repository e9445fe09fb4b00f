package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/linkrot/internal/progress"
)

func TestStatusSinkTracksRun(t *testing.T) {
	t.Parallel()

	sink := NewStatusSink()
	id := uuid.New()
	runID := progress.UUIDToBytes(id)
	now := time.Now()
	require.NoError(t, sink.Consume(context.Background(), []progress.Event{
		{RunID: runID, TS: now, Stage: progress.StageRunStart},
		{RunID: runID, TS: now, Stage: progress.StageBatchStart, Total: 3},
		{RunID: runID, TS: now, Stage: progress.StageCheckDone, Done: 2, Total: 3, Dead: true},
		{RunID: runID, TS: now, Stage: progress.StageCheckDone, Done: 1, Total: 3},
	}))

	mid := sink.Snapshot()
	require.Equal(t, id.String(), mid.RunID)
	require.EqualValues(t, 2, mid.Checked)
	require.EqualValues(t, 1, mid.Dead)

	require.NoError(t, sink.Consume(context.Background(), []progress.Event{
		{RunID: runID, TS: now, Stage: progress.StageCheckDone, Done: 3, Total: 3, Dead: true},
		{RunID: runID, TS: now, Stage: progress.StageBatchDone, Done: 3, Total: 3},
		{RunID: runID, TS: now, Stage: progress.StageRemediation, Outcome: "deleted"},
		{RunID: runID, TS: now, Stage: progress.StageRemediation, Outcome: "skipped"},
	}))

	final := sink.Snapshot()
	require.EqualValues(t, 3, final.Checked)
	require.EqualValues(t, 2, final.Dead)
	require.Equal(t, map[string]int64{"deleted": 1, "skipped": 1}, final.Remediations)

	final.Remediations["deleted"] = 99
	require.EqualValues(t, 1, sink.Snapshot().Remediations["deleted"], "snapshot must be a copy")
}
