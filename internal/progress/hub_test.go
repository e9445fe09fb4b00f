package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestHubBatchBySize verifies the hub flushes once the batch size limit is reached.
func TestHubBatchBySize(t *testing.T) {
	t.Parallel()

	sink := newStubSink()
	hub := NewHub(Config{
		BufferSize:     8,
		MaxBatchEvents: 2,
		MaxBatchWait:   time.Minute,
	}, sink)
	defer func() {
		require.NoError(t, hub.Close(context.Background()))
	}()

	hub.Emit(sampleEvent(StageRunStart))
	hub.Emit(sampleEvent(StageCheckDone))
	require.Eventually(t, func() bool {
		b := sink.Batches()
		return len(b) == 1 && len(b[0]) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestHubBatchByTimer(t *testing.T) {
	t.Parallel()

	sink := newStubSink()
	hub := NewHub(Config{
		BufferSize:     4,
		MaxBatchEvents: 10,
		MaxBatchWait:   20 * time.Millisecond,
	}, sink)
	defer func() {
		require.NoError(t, hub.Close(context.Background()))
	}()

	hub.Emit(sampleEvent(StageRunStart))
	require.Eventually(t, func() bool {
		return len(sink.Batches()) == 1
	}, time.Second, 5*time.Millisecond)
}

// TestHubEmitNeverBlocks asserts a full buffer drops instead of stalling the checker.
func TestHubEmitNeverBlocks(t *testing.T) {
	t.Parallel()

	hub := &Hub{
		events: make(chan Event),
		logger: zap.NewNop(),
	}
	start := time.Now()
	for range 100 {
		hub.Emit(sampleEvent(StageCheckDone))
	}
	require.Less(t, time.Since(start), 50*time.Millisecond)
	require.EqualValues(t, 100, hub.Dropped())
}

func TestHubDiscardsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := newStubSink()
	hub := NewHub(Config{MaxBatchWait: time.Minute}, sink)
	hub.Emit(Event{Stage: StageRunStart})
	require.NoError(t, hub.Close(context.Background()))
	require.Empty(t, sink.Batches())
}

// TestHubFlushOnClose ensures Close drains buffered events before returning.
func TestHubFlushOnClose(t *testing.T) {
	t.Parallel()

	sink := newStubSink()
	hub := NewHub(Config{
		BufferSize:     4,
		MaxBatchEvents: 100,
		MaxBatchWait:   time.Minute,
	}, sink)

	hub.Emit(sampleEvent(StageRunStart))

	require.NoError(t, hub.Close(context.Background()))
	require.NoError(t, hub.Close(context.Background()))
	require.Len(t, sink.Batches(), 1)
	require.Len(t, sink.Batches()[0], 1)
	require.True(t, sink.closed)

	hub.Emit(sampleEvent(StageRunDone))
	require.Len(t, sink.Batches(), 1)
}

func TestNilHubIsSafe(t *testing.T) {
	t.Parallel()

	var hub *Hub
	hub.Emit(sampleEvent(StageRunStart))
	require.Zero(t, hub.Dropped())
	require.NoError(t, hub.Close(context.Background()))
}

func TestTeeSkipsNilAndPreservesOrder(t *testing.T) {
	t.Parallel()

	var seen []string
	first := EmitterFunc(func(Event) { seen = append(seen, "first") })
	second := EmitterFunc(func(Event) { seen = append(seen, "second") })

	Tee(first, nil, second).Emit(sampleEvent(StageRunStart))
	require.Equal(t, []string{"first", "second"}, seen)
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	valid := sampleEvent(StageCheckDone)
	require.NoError(t, valid.Validate())

	noSite := valid
	noSite.Site = ""
	require.Error(t, noSite.Validate())

	overrun := valid
	overrun.Done = overrun.Total + 1
	require.Error(t, overrun.Validate())

	remediation := sampleEvent(StageRemediation)
	require.Error(t, remediation.Validate())
	remediation.Outcome = "skipped"
	require.NoError(t, remediation.Validate())

	unknown := sampleEvent(Stage("BOGUS"))
	require.Error(t, unknown.Validate())
}

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	cases := map[int]StatusClass{
		0:   StatusError,
		200: Status2xx,
		301: Status3xx,
		404: Status4xx,
		503: Status5xx,
		999: StatusOther,
	}
	for code, want := range cases {
		require.Equal(t, want, ClassifyStatus(code), "code %d", code)
	}
}

type stubSink struct {
	mu      sync.Mutex
	batches [][]Event
	closed  bool
}

func newStubSink() *stubSink {
	return &stubSink{}
}

func (s *stubSink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, append([]Event(nil), batch...))
	return nil
}

func (s *stubSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubSink) Batches() [][]Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]Event, len(s.batches))
	for i, b := range s.batches {
		out[i] = append([]Event(nil), b...)
	}
	return out
}

func sampleEvent(stage Stage) Event {
	evt := Event{
		RunID: UUIDToBytes(uuid.New()),
		TS:    time.Now(),
		Stage: stage,
	}
	if stage == StageCheckDone {
		evt.Site = "example.com"
		evt.StatusClass = Status2xx
		evt.Done = 1
		evt.Total = 3
	}
	return evt
}
