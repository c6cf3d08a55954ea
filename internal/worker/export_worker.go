package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finledger/internal/amqp"
	"finledger/internal/metrics"
	"finledger/internal/ports"
	"finledger/internal/sheets"
)

// ExportWorker copies archive entries to the history spreadsheet as their
// notifications arrive.
type ExportWorker struct {
	history  ports.HistoryStore
	exporter sheets.HistoryExporter
	metrics  *metrics.Collector
}

func NewExportWorker(history ports.HistoryStore, exporter sheets.HistoryExporter, m *metrics.Collector) *ExportWorker {
	return &ExportWorker{
		history:  history,
		exporter: exporter,
		metrics:  m,
	}
}

// HandleMonthUpdated loads the entry named by msg and exports it. An entry
// that no longer exists is acknowledged without exporting anything.
func (w *ExportWorker) HandleMonthUpdated(ctx context.Context, msg *amqp.MonthUpdatedMessage) error {
	slog.InfoContext(ctx, "Processing month update message",
		"user", msg.User,
		"month_id", msg.MonthID,
		"archive_key", msg.ArchiveKey,
		"version", msg.Version)

	entry, err := w.history.GetHistory(ctx, msg.User, msg.MonthID, msg.ArchiveKey)
	if errors.Is(err, ports.ErrNotFound) {
		slog.WarnContext(ctx, "Archive entry not found, skipping export",
			"month_id", msg.MonthID,
			"archive_key", msg.ArchiveKey)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get archive entry: %w", err)
	}

	rows, err := w.exporter.ExportHistory(ctx, msg.User, entry)
	if err != nil {
		w.metrics.IncExportFailures()
		return fmt.Errorf("export archive entry: %w", err)
	}
	w.metrics.AddExportedRows(rows)

	slog.InfoContext(ctx, "Exported archive entry",
		"month_id", msg.MonthID,
		"archive_key", msg.ArchiveKey,
		"rows", rows)
	return nil
}

// ExportMonth re-exports the whole history of a month, oldest entry first.
// Entries already in the spreadsheet are skipped by the exporter.
func (w *ExportWorker) ExportMonth(ctx context.Context, user, monthID string) (int, error) {
	entries, err := w.history.ListHistory(ctx, user, monthID)
	if err != nil {
		return 0, fmt.Errorf("list archive entries: %w", err)
	}

	total := 0
	for i := len(entries) - 1; i >= 0; i-- {
		rows, err := w.exporter.ExportHistory(ctx, user, entries[i])
		if err != nil {
			w.metrics.IncExportFailures()
			return total, fmt.Errorf("export %s: %w", entries[i].Key, err)
		}
		total += rows
	}
	w.metrics.AddExportedRows(total)

	slog.InfoContext(ctx, "Month history exported",
		"user", user,
		"month_id", monthID,
		"entries", len(entries),
		"rows", total)
	return total, nil
}
