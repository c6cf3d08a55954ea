// Package ports declares the storage contracts implemented by the adapters in
// internal/storage.
package ports

//go:generate mockgen -destination=mocks/mock_ports.go -package=mock_ports finledger/internal/ports MonthStore,HistoryStore,CardStore

import (
	"context"
	"errors"

	"finledger/internal/core"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrVersionConflict  = errors.New("version conflict")
	ErrMonthExists      = errors.New("month already recorded")
	ErrArchiveKeyExists = errors.New("archive key already exists")
)

type (
	MonthStore interface {
		CreateMonth(ctx context.Context, user string, m core.MonthRecord) error
		GetMonth(ctx context.Context, user, id string) (core.MonthRecord, error)
		ListMonths(ctx context.Context, user string) ([]core.MonthRecord, error)
		// ApplyUpdate replaces the record and appends entry in one atomic step.
		// It fails with ErrVersionConflict when the stored version is not
		// expectedVersion and with ErrArchiveKeyExists when entry.Key is taken.
		ApplyUpdate(ctx context.Context, user string, m core.MonthRecord, expectedVersion int64, entry core.ArchiveEntry) error
	}

	HistoryStore interface {
		// ListHistory returns the entries of a month, newest first.
		ListHistory(ctx context.Context, user, monthID string) ([]core.ArchiveEntry, error)
		GetHistory(ctx context.Context, user, monthID, key string) (core.ArchiveEntry, error)
	}

	CardStore interface {
		SaveCard(ctx context.Context, user string, c core.Card) error
		GetCard(ctx context.Context, user, id string) (core.Card, error)
		ListCards(ctx context.Context, user string) ([]core.Card, error)
		// ListCardUsers returns every user holding at least one card.
		ListCardUsers(ctx context.Context) ([]string, error)
		SaveStatement(ctx context.Context, user string, s core.Statement) error
		ListStatements(ctx context.Context, user, cardID string) ([]core.Statement, error)
	}

	// Store is the full persistence surface of a backend.
	Store interface {
		MonthStore
		HistoryStore
		CardStore
		Ping(ctx context.Context) error
		Close() error
	}
)
