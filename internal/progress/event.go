// Package progress defines the event structures emitted during an audit run.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart    Stage = "RUN_START"
	StageRunDone     Stage = "RUN_DONE"
	StageRunError    Stage = "RUN_ERROR"
	StageBatchStart  Stage = "CHECK_BATCH_START"
	StageCheckDone   Stage = "CHECK_DONE"
	StageBatchDone   Stage = "CHECK_BATCH_DONE"
	StageRemediation Stage = "REMEDIATION"
)

// StatusClass is a coarse HTTP response grouping.
type StatusClass string

// Supported HTTP status classes tracked for check completions. StatusError
// marks checks that never produced a response.
const (
	Status2xx   StatusClass = "2xx"
	Status3xx   StatusClass = "3xx"
	Status4xx   StatusClass = "4xx"
	Status5xx   StatusClass = "5xx"
	StatusError StatusClass = "error"
	StatusOther StatusClass = "other"
)

// Event captures a single component of audit progress.
type Event struct {
	// RunID uniquely identifies an audit run using the 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Site scopes check events to a host label.
	Site string
	// URL is the bookmark target; it never carries store credentials.
	URL string
	// StatusClass groups HTTP response codes (2xx, 3xx, etc).
	StatusClass StatusClass
	// Dead is set on check completions classified as dead.
	Dead bool
	// Done and Total carry batch progress (completed / total checks).
	Done  int64
	Total int64
	// Outcome names the terminal remediation state for StageRemediation.
	Outcome string
	// Dur captures check latency or whole-run duration.
	Dur time.Duration
	// Note lets emitters attach low-volume debug context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone, StageRunError:
	case StageBatchStart, StageBatchDone:
		if e.Total < 0 {
			return errors.New("batch total must be >= 0")
		}
	case StageCheckDone:
		if e.Site == "" {
			return errors.New("check done requires site")
		}
		if e.StatusClass == "" {
			return errors.New("check done requires status class")
		}
		if e.Done <= 0 || e.Done > e.Total {
			return fmt.Errorf("check done count %d out of range for total %d", e.Done, e.Total)
		}
	case StageRemediation:
		if e.Outcome == "" {
			return errors.New("remediation requires outcome")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}

// ClassifyStatus groups HTTP status codes for check events. Zero means no
// response was received.
func ClassifyStatus(code int) StatusClass {
	switch {
	case code == 0:
		return StatusError
	case code >= 200 && code < 300:
		return Status2xx
	case code >= 300 && code < 400:
		return Status3xx
	case code >= 400 && code < 500:
		return Status4xx
	case code >= 500 && code < 600:
		return Status5xx
	default:
		return StatusOther
	}
}
