package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/linkrot/internal/progress"
)

// LogSink writes progress events as debug logs. Dead checks and remediation
// outcomes are promoted to info so they show up in production output.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.Stringer("run_id", evt.RunUUID()),
			zap.String("stage", string(evt.Stage)),
		}
		switch evt.Stage {
		case progress.StageCheckDone:
			fields = append(fields,
				zap.String("site", evt.Site),
				zap.String("url", evt.URL),
				zap.String("status_class", string(evt.StatusClass)),
				zap.Bool("dead", evt.Dead),
				zap.Int64("done", evt.Done),
				zap.Int64("total", evt.Total),
				zap.Duration("dur", evt.Dur),
			)
		case progress.StageBatchStart, progress.StageBatchDone:
			fields = append(fields, zap.Int64("done", evt.Done), zap.Int64("total", evt.Total))
		case progress.StageRemediation:
			fields = append(fields, zap.String("url", evt.URL), zap.String("outcome", evt.Outcome))
		default:
			if evt.Dur > 0 {
				fields = append(fields, zap.Duration("dur", evt.Dur))
			}
		}
		if evt.Note != "" {
			fields = append(fields, zap.String("note", evt.Note))
		}
		if evt.Dead || evt.Stage == progress.StageRemediation || evt.Stage == progress.StageRunError {
			s.logger.Info("progress event", fields...)
			continue
		}
		s.logger.Debug("progress event", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
