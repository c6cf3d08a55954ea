package worker

import (
	"context"
	"errors"
	"testing"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/metrics"
	"finledger/internal/ports"
	mock_ports "finledger/internal/ports/mocks"
	"finledger/internal/sheets/memory"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingExporter struct{}

func (failingExporter) ExportHistory(context.Context, string, core.ArchiveEntry) (int, error) {
	return 0, errors.New("quota exceeded")
}

func entry(key string) core.ArchiveEntry {
	return core.ArchiveEntry{
		Key:       key,
		MonthID:   "m-1",
		MonthYear: "October 2026",
		Changes: core.Delta{
			core.Expense: {{LineItem: core.LineItem{Remarks: "rent"}, Kind: core.Created}},
		},
	}
}

func message() *amqp.MonthUpdatedMessage {
	return &amqp.MonthUpdatedMessage{User: "alice", MonthID: "m-1", ArchiveKey: "19-Oct-2026 10:00:00", Version: 2}
}

func TestHandleMonthUpdated_ExportsEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := mock_ports.NewMockHistoryStore(ctrl)
	history.EXPECT().
		GetHistory(gomock.Any(), "alice", "m-1", "19-Oct-2026 10:00:00").
		Return(entry("19-Oct-2026 10:00:00"), nil)

	exporter := memory.New("History")
	m := metrics.NewCollector("test")
	w := NewExportWorker(history, exporter, m)

	require.NoError(t, w.HandleMonthUpdated(context.Background(), message()))
	assert.Len(t, exporter.Rows("2026 History"), 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportedRows))
}

func TestHandleMonthUpdated_MissingEntryIsAcked(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := mock_ports.NewMockHistoryStore(ctrl)
	history.EXPECT().GetHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(core.ArchiveEntry{}, ports.ErrNotFound)

	w := NewExportWorker(history, failingExporter{}, nil)
	assert.NoError(t, w.HandleMonthUpdated(context.Background(), message()))
}

func TestHandleMonthUpdated_ExportFailureIsReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := mock_ports.NewMockHistoryStore(ctrl)
	history.EXPECT().GetHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(entry("k"), nil)

	m := metrics.NewCollector("test")
	w := NewExportWorker(history, failingExporter{}, m)

	err := w.HandleMonthUpdated(context.Background(), message())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportFailures))
}

func TestHandleMonthUpdated_StoreFailureIsReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := mock_ports.NewMockHistoryStore(ctrl)
	history.EXPECT().GetHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(core.ArchiveEntry{}, errors.New("disk I/O error"))

	w := NewExportWorker(history, memory.New(""), nil)
	assert.Error(t, w.HandleMonthUpdated(context.Background(), message()))
}

func TestExportMonth_OldestFirstAndIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := mock_ports.NewMockHistoryStore(ctrl)
	history.EXPECT().ListHistory(gomock.Any(), "alice", "m-1").
		Return([]core.ArchiveEntry{entry("20-Oct-2026 09:00:00"), entry("19-Oct-2026 10:00:00")}, nil).
		Times(2)

	exporter := memory.New("History")
	w := NewExportWorker(history, exporter, nil)

	n, err := w.ExportMonth(context.Background(), "alice", "m-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows := exporter.Rows("2026 History")
	require.Len(t, rows, 3)
	assert.Equal(t, "19-Oct-2026 10:00:00", rows[1][0])
	assert.Equal(t, "20-Oct-2026 09:00:00", rows[2][0])

	n, err = w.ExportMonth(context.Background(), "alice", "m-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
