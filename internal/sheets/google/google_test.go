package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"finledger/internal/core"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	goption "google.golang.org/api/option"
)

// fakeSheets emulates the subset of the Sheets REST API the client uses.
type fakeSheets struct {
	mu       sync.Mutex
	titles   []string
	values   [][]any
	status   int
	added    []string
	appends  int
	requests int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	if f.status != 0 {
		w.WriteHeader(f.status)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": f.status, "message": "denied"}})
		return
	}

	path := r.URL.Path
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req struct {
			Requests []struct {
				AddSheet struct {
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			f.titles = append(f.titles, rq.AddSheet.Properties.Title)
			f.added = append(f.added, rq.AddSheet.Properties.Title)
		}
		json.NewEncoder(w).Encode(map[string]any{})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr struct {
			Values [][]any `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&vr)
		f.values = append(f.values, vr.Values...)
		f.appends++
		json.NewEncoder(w).Encode(map[string]any{"updates": map[string]any{"updatedRows": len(vr.Values)}})
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var vr struct {
			Values [][]any `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&vr)
		f.values = append(f.values, vr.Values...)
		json.NewEncoder(w).Encode(map[string]any{})
	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		json.NewEncoder(w).Encode(map[string]any{"values": f.values})
	case r.Method == http.MethodGet:
		sheets := make([]any, 0, len(f.titles))
		for _, t := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{SpreadsheetID: "sheet-id"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func testEntry() core.ArchiveEntry {
	return core.ArchiveEntry{
		Key:       "19-Oct-2026 10:00:00",
		MonthID:   "m-1",
		MonthYear: "October 2026",
		Changes: core.Delta{
			core.Expense: {
				{LineItem: core.LineItem{Remarks: "rent", Amount: decimal.NewNullDecimal(decimal.NewFromInt(1200))}, Kind: core.Created},
				{LineItem: core.LineItem{Remarks: "gym"}, Kind: core.Deleted},
			},
		},
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "missing Google credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExportHistory_CreatesSheetAndAppends(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	n, err := c.ExportHistory(context.Background(), "alice", testEntry())
	if err != nil {
		t.Fatalf("ExportHistory() error = %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows, got %d", n)
	}
	if len(fake.added) != 1 || fake.added[0] != "2026 History" {
		t.Errorf("expected sheet creation, got %v", fake.added)
	}
	// header plus two change rows
	if len(fake.values) != 3 {
		t.Fatalf("expected 3 rows written, got %v", fake.values)
	}
	if fake.values[0][0] != "Archive Key" || fake.values[1][5] != "rent" {
		t.Errorf("unexpected rows %v", fake.values)
	}
}

func TestExportHistory_SkipsAlreadyExportedEntry(t *testing.T) {
	fake := &fakeSheets{titles: []string{"2026 History"}}
	c := newTestClient(t, fake)
	ctx := context.Background()

	if _, err := c.ExportHistory(ctx, "alice", testEntry()); err != nil {
		t.Fatal(err)
	}
	n, err := c.ExportHistory(ctx, "alice", testEntry())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || fake.appends != 1 {
		t.Errorf("redelivery duplicated rows: n=%d appends=%d", n, fake.appends)
	}
	if len(fake.added) != 0 {
		t.Errorf("existing sheet should not be added again: %v", fake.added)
	}

	// a different user with the same key is a different entry
	if n, err := c.ExportHistory(ctx, "bob", testEntry()); err != nil || n != 2 {
		t.Errorf("expected bob's rows exported, n=%d err=%v", n, err)
	}
}

func TestExportHistory_EmptyDeltaWritesNothing(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	n, err := c.ExportHistory(context.Background(), "alice", core.ArchiveEntry{Key: "k", MonthYear: "October 2026"})
	if err != nil || n != 0 {
		t.Fatalf("unexpected result n=%d err=%v", n, err)
	}
	if fake.requests != 0 {
		t.Errorf("expected no API calls, got %d", fake.requests)
	}
}

func TestExportHistory_CircuitBreakerOpens(t *testing.T) {
	fake := &fakeSheets{status: http.StatusForbidden}
	c := newTestClient(t, fake)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.ExportHistory(ctx, "alice", testEntry()); err == nil {
			t.Fatal("expected failure")
		}
	}
	before := fake.requests
	_, err := c.ExportHistory(ctx, "alice", testEntry())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if fake.requests != before {
		t.Error("open breaker should not reach the API")
	}
}

func TestA1QuotesSheetNames(t *testing.T) {
	if got := a1("2026 History", "A:C"); got != "'2026 History'!A:C" {
		t.Errorf("a1() = %q", got)
	}
	if got := a1("Bob's", "A1"); got != "'Bob''s'!A1" {
		t.Errorf("a1() = %q", got)
	}
}
