package backend

import (
	"context"
	"fmt"
	"log/slog"

	gsheet "finledger/internal/sheets/google"
	sheetsmemory "finledger/internal/sheets/memory"
	"finledger/internal/storage"
	"finledger/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Warn("Initialized memory backend; data is lost on restart")
	store := memory.New()
	return &BackendResult{Store: store, Cleanup: store.Close}, nil
}

// CreateExporter returns the Google Sheets exporter when a spreadsheet is
// configured and an in-memory one otherwise.
func (f *DefaultFactory) CreateExporter(ctx context.Context, config Config) (*ExporterResult, error) {
	if config.GoogleSpreadsheetID == "" {
		f.logger.Warn("No spreadsheet configured, history rows are kept in memory only")
		return &ExporterResult{Exporter: sheetsmemory.New(config.GoogleHistorySheetName)}, nil
	}

	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		HistorySheet:    config.GoogleHistorySheetName,
		CredentialsFile: config.GoogleCredentialsFile,
		CredentialsJSON: config.GoogleCredentialsJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets exporter",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleHistorySheetName)
	return &ExporterResult{Exporter: cli, Remote: true}, nil
}
