package memory

import (
	"context"
	"sync"

	"finledger/internal/core"
	ports "finledger/internal/sheets"
)

// Exporter keeps exported history rows per sheet name in memory.
type Exporter struct {
	mu       sync.Mutex
	base     string
	sheets   map[string][][]any
	exported map[string]struct{}
}

var _ ports.HistoryExporter = (*Exporter)(nil)

func New(base string) *Exporter {
	if base == "" {
		base = "History"
	}
	return &Exporter{
		base:     base,
		sheets:   make(map[string][][]any),
		exported: make(map[string]struct{}),
	}
}

func (e *Exporter) ExportHistory(_ context.Context, user string, entry core.ArchiveEntry) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := ports.SheetName(e.base, entry)
	seen := name + "\x00" + user + "\x00" + entry.MonthID + "\x00" + entry.Key
	if _, ok := e.exported[seen]; ok {
		return 0, nil
	}
	rows := ports.HistoryRows(user, entry)
	if len(e.sheets[name]) == 0 {
		e.sheets[name] = append(e.sheets[name], ports.HistoryHeader)
	}
	e.sheets[name] = append(e.sheets[name], rows...)
	e.exported[seen] = struct{}{}
	return len(rows), nil
}

// Rows returns a copy of everything written to the named sheet, header included.
func (e *Exporter) Rows(sheet string) [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]any(nil), e.sheets[sheet]...)
}
