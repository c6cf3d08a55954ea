package memory

import (
	"context"
	"sort"
	"sync"

	"finledger/internal/core"
	"finledger/internal/ports"
)

type userData struct {
	months     map[string]core.MonthRecord
	history    map[string][]core.ArchiveEntry
	cards      map[string]core.Card
	statements map[string]map[string]core.Statement
}

// Store keeps every user's ledger in process memory.
type Store struct {
	mu    sync.Mutex
	users map[string]*userData
}

func New() *Store {
	return &Store{users: make(map[string]*userData)}
}

func (s *Store) user(key string) *userData {
	u, ok := s.users[key]
	if !ok {
		u = &userData{
			months:     make(map[string]core.MonthRecord),
			history:    make(map[string][]core.ArchiveEntry),
			cards:      make(map[string]core.Card),
			statements: make(map[string]map[string]core.Statement),
		}
		s.users[key] = u
	}
	return u
}

func (s *Store) CreateMonth(_ context.Context, user string, m core.MonthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(user)
	if _, ok := u.months[m.ID]; ok {
		return ports.ErrMonthExists
	}
	for _, existing := range u.months {
		if existing.MonthYear == m.MonthYear {
			return ports.ErrMonthExists
		}
	}
	u.months[m.ID] = m.Clone()
	return nil
}

func (s *Store) GetMonth(_ context.Context, user, id string) (core.MonthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.user(user).months[id]
	if !ok {
		return core.MonthRecord{}, ports.ErrNotFound
	}
	return m.Clone(), nil
}

func (s *Store) ListMonths(_ context.Context, user string) ([]core.MonthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(user)
	out := make([]core.MonthRecord, 0, len(u.months))
	for _, m := range u.months {
		out = append(out, m.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ApplyUpdate(_ context.Context, user string, m core.MonthRecord, expectedVersion int64, entry core.ArchiveEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(user)
	current, ok := u.months[m.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if current.Version != expectedVersion {
		return ports.ErrVersionConflict
	}
	for _, e := range u.history[m.ID] {
		if e.Key == entry.Key {
			return ports.ErrArchiveKeyExists
		}
	}
	u.months[m.ID] = m.Clone()
	u.history[m.ID] = append(u.history[m.ID], entry)
	return nil
}

func (s *Store) ListHistory(_ context.Context, user, monthID string) ([]core.ArchiveEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(user)
	if _, ok := u.months[monthID]; !ok {
		return nil, ports.ErrNotFound
	}
	entries := u.history[monthID]
	out := make([]core.ArchiveEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (s *Store) GetHistory(_ context.Context, user, monthID, key string) (core.ArchiveEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.user(user).history[monthID] {
		if e.Key == key {
			return e, nil
		}
	}
	return core.ArchiveEntry{}, ports.ErrNotFound
}

func (s *Store) SaveCard(_ context.Context, user string, c core.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(user).cards[c.ID] = c
	return nil
}

func (s *Store) GetCard(_ context.Context, user, id string) (core.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.user(user).cards[id]
	if !ok {
		return core.Card{}, ports.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCards(_ context.Context, user string) ([]core.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(user)
	out := make([]core.Card, 0, len(u.cards))
	for _, c := range u.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BankName != out[j].BankName {
			return out[i].BankName < out[j].BankName
		}
		return out[i].CardName < out[j].CardName
	})
	return out, nil
}

func (s *Store) ListCardUsers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for key, u := range s.users {
		if len(u.cards) > 0 {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) SaveStatement(_ context.Context, user string, st core.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(user)
	if _, ok := u.cards[st.CardID]; !ok {
		return ports.ErrNotFound
	}
	byMonth, ok := u.statements[st.CardID]
	if !ok {
		byMonth = make(map[string]core.Statement)
		u.statements[st.CardID] = byMonth
	}
	byMonth[st.Month] = st
	return nil
}

func (s *Store) ListStatements(_ context.Context, user, cardID string) ([]core.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(user)
	if _, ok := u.cards[cardID]; !ok {
		return nil, ports.ErrNotFound
	}
	out := make([]core.Statement, 0, len(u.statements[cardID]))
	for _, st := range u.statements[cardID] {
		out = append(out, st)
	}
	core.SortStatements(out)
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
