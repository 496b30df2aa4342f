package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"reposcan/internal/amqp"
	"reposcan/internal/core"
	"reposcan/internal/csvfile"
)

// EventPublisher publishes export events. *amqp.Client implements it.
type EventPublisher interface {
	PublishExportEvent(ctx context.Context, ev *amqp.ExportEvent) error
}

// ExportRequest describes one CSV download of a filtered view.
type ExportRequest struct {
	RequestID          string
	Filter             core.FilterParams
	IncludeLastUpdated bool
}

// ExportResult is the encoded CSV and the number of data rows in it.
type ExportResult struct {
	Body     []byte
	RowCount int
}

// ExportService encodes filtered views and announces each export.
type ExportService struct {
	publisher EventPublisher
	exports   atomic.Int64
	failures  atomic.Int64
}

// NewExportService creates the service. publisher may be nil when export
// events are disabled.
func NewExportService(publisher EventPublisher) *ExportService {
	return &ExportService{publisher: publisher}
}

// Export serializes rows (the already filtered view of t). Publishing the
// export event is best effort: failures are logged and counted, never returned.
func (s *ExportService) Export(ctx context.Context, t *core.Table, rows []core.Repository, req ExportRequest) (ExportResult, error) {
	body, err := csvfile.Encode(t, rows, csvfile.WriteOptions{IncludeLastUpdated: req.IncludeLastUpdated})
	if err != nil {
		return ExportResult{}, fmt.Errorf("encode export: %w", err)
	}
	s.exports.Add(1)

	if s.publisher != nil {
		ev := amqp.NewExportEvent(req.RequestID, req.Filter, req.IncludeLastUpdated, len(rows))
		if err := s.publisher.PublishExportEvent(ctx, ev); err != nil {
			s.failures.Add(1)
			slog.ErrorContext(ctx, "Failed to publish export event",
				"request_id", req.RequestID, "error", err)
		}
	}

	return ExportResult{Body: body, RowCount: len(rows)}, nil
}

// Stats returns the number of exports served and failed event publishes.
func (s *ExportService) Stats() (exports, publishFailures int64) {
	return s.exports.Load(), s.failures.Load()
}
