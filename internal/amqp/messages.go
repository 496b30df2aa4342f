package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"reposcan/internal/core"
)

// ExportEvent records one CSV download of a filtered view.
type ExportEvent struct {
	RequestID          string    `json:"request_id"`
	Category           string    `json:"category"`
	MinStars           int       `json:"min_stars"`
	Search             string    `json:"search"`
	IncludeLastUpdated bool      `json:"include_last_updated"`
	RowCount           int       `json:"row_count"`
	Timestamp          time.Time `json:"timestamp"`
}

// NewExportEvent builds an event for an export that just completed.
func NewExportEvent(requestID string, p core.FilterParams, includeLastUpdated bool, rowCount int) *ExportEvent {
	return &ExportEvent{
		RequestID:          requestID,
		Category:           p.Category,
		MinStars:           p.MinStars,
		Search:             p.Search,
		IncludeLastUpdated: includeLastUpdated,
		RowCount:           rowCount,
		Timestamp:          time.Now().UTC(),
	}
}

func (m *ExportEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Record converts the event into an export log entry.
func (m *ExportEvent) Record() core.ExportRecord {
	return core.ExportRecord{
		RequestID:          m.RequestID,
		Filter:             core.FilterParams{Category: m.Category, MinStars: m.MinStars, Search: m.Search},
		IncludeLastUpdated: m.IncludeLastUpdated,
		RowCount:           m.RowCount,
		CreatedAt:          m.Timestamp,
	}
}

// ExportEventFromJSON decodes and sanity-checks an event.
func ExportEventFromJSON(data []byte) (*ExportEvent, error) {
	var msg ExportEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Timestamp.IsZero() {
		return nil, errors.New("export event without timestamp")
	}
	if msg.RowCount < 0 || msg.MinStars < 0 {
		return nil, errors.New("export event with negative counts")
	}
	return &msg, nil
}
