package worker

import (
	"context"
	"fmt"
	"log/slog"

	"reposcan/internal/amqp"
	"reposcan/internal/sources"
)

// EventConsumer delivers export events to a handler until ctx is done.
// *amqp.Client implements it.
type EventConsumer interface {
	ConsumeExportEvents(ctx context.Context, handler func(context.Context, *amqp.ExportEvent) error) error
}

// ExportLogWorker records consumed export events in the export log.
type ExportLogWorker struct {
	recorder sources.ExportRecorder
}

func NewExportLogWorker(recorder sources.ExportRecorder) *ExportLogWorker {
	return &ExportLogWorker{recorder: recorder}
}

// HandleExportEvent stores one event. A returned error makes the consumer
// requeue the message.
func (w *ExportLogWorker) HandleExportEvent(ctx context.Context, ev *amqp.ExportEvent) error {
	slog.DebugContext(ctx, "Recording export event",
		"request_id", ev.RequestID,
		"category", ev.Category,
		"row_count", ev.RowCount)

	if err := w.recorder.RecordExport(ctx, ev.Record()); err != nil {
		return fmt.Errorf("record export: %w", err)
	}
	return nil
}

// Run consumes events until ctx is cancelled.
func (w *ExportLogWorker) Run(ctx context.Context, consumer EventConsumer) error {
	slog.InfoContext(ctx, "Export log worker started")
	err := consumer.ConsumeExportEvents(ctx, w.HandleExportEvent)
	if ctx.Err() != nil {
		slog.InfoContext(ctx, "Export log worker stopped")
		return nil
	}
	return err
}
