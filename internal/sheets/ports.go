package sheets

import (
	"context"

	"finledger/internal/core"
)

// Ports for outbound adapters.
type (
	// HistoryExporter appends the rows of an archive entry to an external
	// spreadsheet. Exporting an entry that is already present is a no-op
	// reporting zero rows.
	HistoryExporter interface {
		ExportHistory(ctx context.Context, user string, entry core.ArchiveEntry) (rows int, err error)
	}
)
