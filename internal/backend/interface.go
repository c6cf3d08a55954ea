package backend

import (
	"context"

	"finledger/internal/ports"
	"finledger/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store and the function releasing it.
type BackendResult struct {
	Store   ports.Store
	Cleanup CleanupFunc
}

// ExporterResult is the history exporter the worker writes to.
type ExporterResult struct {
	Exporter sheets.HistoryExporter
	// Remote is false for the in-memory exporter used without a spreadsheet.
	Remote bool
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	CreateExporter(ctx context.Context, config Config) (*ExporterResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string

	// History export; an empty spreadsheet ID selects the memory exporter.
	GoogleSpreadsheetID    string
	GoogleHistorySheetName string
	GoogleCredentialsFile  string
	GoogleCredentialsJSON  string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
