package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"finledger/internal/core"
	ports "finledger/internal/sheets"

	"github.com/sony/gobreaker"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and the credentials used to write it.
type Config struct {
	SpreadsheetID   string
	HistorySheet    string // base name, the tracked year is prefixed
	CredentialsFile string
	CredentialsJSON string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	historyBase   string
	breaker       *gobreaker.CircuitBreaker

	mu     sync.Mutex
	sheets map[string]bool
}

var _ ports.HistoryExporter = (*Client)(nil)

// New creates a Sheets client from service account or authorized-user
// credentials, such as the file written by sheets-auth. Extra
// client options replace the credential lookup; tests use them to point the
// client at a local server.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(cfg.HistorySheet)
	if base == "" {
		base = "History"
	}

	if len(opts) == 0 {
		creds, err := credentialsOption(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{creds, goption.WithScopes(gsheet.SpreadsheetsScope)}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		historyBase:   base,
		breaker:       newBreaker(),
		sheets:        make(map[string]bool),
	}, nil
}

func credentialsOption(ctx context.Context, cfg Config) (goption.ClientOption, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return goption.WithCredentialsJSON([]byte(cfg.CredentialsJSON)), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", cfg.CredentialsFile)
		return goption.WithCredentialsFile(cfg.CredentialsFile), nil
	default:
		return nil, errors.New("missing Google credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
	}
}

func newBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "sheets",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Sheets circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// ExportHistory appends one row per change record of entry to the
// year-prefixed history sheet, creating the sheet on first use.
func (c *Client) ExportHistory(ctx context.Context, user string, entry core.ArchiveEntry) (int, error) {
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}
	rows := ports.HistoryRows(user, entry)
	if len(rows) == 0 {
		return 0, nil
	}
	sheet := ports.SheetName(c.historyBase, entry)

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.export(ctx, sheet, user, entry, rows)
	})
	if err != nil {
		return 0, fmt.Errorf("export %s to %s: %w", entry.Key, sheet, err)
	}
	return res.(int), nil
}

func (c *Client) export(ctx context.Context, sheet, user string, entry core.ArchiveEntry, rows [][]any) (int, error) {
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return 0, err
	}

	done, err := c.alreadyExported(ctx, sheet, user, entry)
	if err != nil {
		return 0, err
	}
	if done {
		slog.InfoContext(ctx, "Archive entry already exported", "sheet", sheet, "archive_key", entry.Key)
		return 0, nil
	}

	rng := a1(sheet, "A:J")
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append %s: %w", rng, err)
	}
	return len(rows), nil
}

// ensureSheet creates the sheet with its header row unless it exists.
func (c *Client) ensureSheet(ctx context.Context, sheet string) error {
	c.mu.Lock()
	known := c.sheets[sheet]
	c.mu.Unlock()
	if known {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == sheet {
			c.markSheet(sheet)
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: sheet}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", sheet, err)
	}

	header := &gsheet.ValueRange{Values: [][]any{ports.HistoryHeader}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1(sheet, "A1:J1"), header).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write header to %s: %w", sheet, err)
	}

	slog.InfoContext(ctx, "Created history sheet", "sheet", sheet)
	c.markSheet(sheet)
	return nil
}

func (c *Client) markSheet(sheet string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sheets[sheet] = true
}

// alreadyExported scans the key, month and user columns for a previous
// export of the same entry; redelivered messages must not duplicate rows.
func (c *Client) alreadyExported(ctx context.Context, sheet, user string, entry core.ArchiveEntry) (bool, error) {
	rng := a1(sheet, "A:C")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read %s: %w", rng, err)
	}
	for _, row := range resp.Values {
		cols := toStrings(row)
		if len(cols) < 3 {
			continue
		}
		if cols[0] == entry.Key && cols[1] == entry.MonthYear && cols[2] == user {
			return true, nil
		}
	}
	return false, nil
}

func a1(sheet, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), cells)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
