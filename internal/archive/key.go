// Package archive builds the keys and entries of the month change history.
package archive

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"finledger/internal/core"
)

const (
	// KeyLayout formats archive keys as DD-Mon-YYYY HH:MM:SS, 24-hour clock.
	KeyLayout = "02-Jan-2006 15:04:05"

	// LegacyKeyLayout is the space separated form written by older clients.
	LegacyKeyLayout = "02 Jan 2006 15:04:05"

	collisionSep = "#"
)

var ErrInvalidKey = errors.New("invalid archive key")

// Keyer produces archive keys in a fixed location.
type Keyer struct {
	loc *time.Location
}

// NewKeyer returns a Keyer for the named IANA zone. An empty name or "Local"
// uses the process local time zone.
func NewKeyer(zone string) (*Keyer, error) {
	if zone == "" || zone == "Local" {
		return &Keyer{loc: time.Local}, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load archive time zone: %w", err)
	}
	return &Keyer{loc: loc}, nil
}

// Location returns the zone keys are rendered in.
func (k *Keyer) Location() *time.Location {
	return k.loc
}

// Key renders t as an archive key.
func (k *Keyer) Key(t time.Time) string {
	return t.In(k.loc).Format(KeyLayout)
}

// WithSuffix disambiguates keys recorded within the same second.
func WithSuffix(key string, n int) string {
	if n <= 0 {
		return key
	}
	return fmt.Sprintf("%s%s%d", key, collisionSep, n+1)
}

// ParseKey reads an archive key in either layout. A collision suffix is ignored.
func (k *Keyer) ParseKey(key string) (time.Time, error) {
	if i := strings.Index(key, collisionSep); i >= 0 {
		key = key[:i]
	}
	for _, layout := range []string{KeyLayout, LegacyKeyLayout} {
		if t, err := time.ParseInLocation(layout, key, k.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidKey
}

// NewEntry assembles the history entry for an update of m.
func NewEntry(key string, m core.MonthRecord, at time.Time, changes core.Delta) core.ArchiveEntry {
	return core.ArchiveEntry{
		Key:        key,
		MonthID:    m.ID,
		MonthYear:  m.MonthYear,
		RecordedAt: at.UTC(),
		Changes:    changes,
	}
}
