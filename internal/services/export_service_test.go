package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reposcan/internal/amqp"
	"reposcan/internal/core"
	"reposcan/internal/csvfile"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishExportEvent(ctx context.Context, ev *amqp.ExportEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func exportTable() *core.Table {
	return core.NewTable([]core.Repository{
		{Name: "A", Description: "chatbot", Stars: 5, Language: "Go", Category: "AI/ML"},
		{Name: "B", Description: "infra tool", Stars: 50, Language: "Rust", Category: "Other"},
	}, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC))
}

func TestExportService_Export(t *testing.T) {
	testCases := []struct {
		name       string
		publisher  bool
		publishErr error
		wantFails  int64
	}{
		{name: "publishes event", publisher: true},
		{name: "publish failure does not fail the export", publisher: true, publishErr: errors.New("broker down"), wantFails: 1},
		{name: "no publisher configured"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tbl := exportTable()
			p := core.FilterParams{Category: "AI/ML"}
			rows := core.Filter(tbl, p)

			var svc *ExportService
			pub := new(mockPublisher)
			if tc.publisher {
				pub.On("PublishExportEvent", mock.Anything, mock.MatchedBy(func(ev *amqp.ExportEvent) bool {
					return ev.RequestID == "req_1" && ev.Category == "AI/ML" && ev.RowCount == 1 && ev.IncludeLastUpdated
				})).Return(tc.publishErr).Once()
				svc = NewExportService(pub)
			} else {
				svc = NewExportService(nil)
			}

			res, err := svc.Export(context.Background(), tbl, rows, ExportRequest{RequestID: "req_1", Filter: p, IncludeLastUpdated: true})
			require.NoError(t, err)
			assert.Equal(t, 1, res.RowCount)

			back, err := csvfile.Load(bytesReader(res.Body), "export", time.Now())
			require.NoError(t, err)
			require.Equal(t, 1, back.Len())
			assert.Equal(t, "2025-06-03", back.Rows()[0].LastUpdated)

			exports, fails := svc.Stats()
			assert.Equal(t, int64(1), exports)
			assert.Equal(t, tc.wantFails, fails)
			pub.AssertExpectations(t)
		})
	}
}
