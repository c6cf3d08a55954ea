package memory

import (
	"context"
	"testing"

	"finledger/internal/core"
)

func TestExporterAppendsOnce(t *testing.T) {
	e := New("")
	entry := core.ArchiveEntry{
		Key:       "19-Oct-2026 10:00:00",
		MonthID:   "m-1",
		MonthYear: "October 2026",
		Changes: core.Delta{
			core.Expense: {{LineItem: core.LineItem{Remarks: "rent"}, Kind: core.Created}},
		},
	}

	n, err := e.ExportHistory(context.Background(), "alice", entry)
	if err != nil || n != 1 {
		t.Fatalf("unexpected export: n=%d err=%v", n, err)
	}
	n, err = e.ExportHistory(context.Background(), "alice", entry)
	if err != nil || n != 0 {
		t.Fatalf("re-export should be a no-op: n=%d err=%v", n, err)
	}

	rows := e.Rows("2026 History")
	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %v", rows)
	}
	if rows[1][5] != "rent" {
		t.Errorf("unexpected row %v", rows[1])
	}
}
