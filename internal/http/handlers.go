package http

import (
	"net/http"
	"strings"

	"finledger/internal/core"
	"finledger/internal/log"
	"finledger/internal/reconcile"

	"github.com/go-chi/chi/v5"
)

// updateMonthResponse pairs the stored record with the archive entry the
// update produced.
type updateMonthResponse struct {
	Month   core.MonthRecord  `json:"month"`
	Archive core.ArchiveEntry `json:"archive"`
}

// reconcileRequest asks for the changes between two snapshots. Empty
// selectors fall back to remarks and amount.
type reconcileRequest struct {
	Previous      core.Snapshot `json:"previous"`
	Current       core.Snapshot `json:"current"`
	IdentityField string        `json:"identityField,omitempty"`
	AmountField   string        `json:"amountField,omitempty"`
	Strict        bool          `json:"strict,omitempty"`
}

func (s *Server) handleCreateMonth(w http.ResponseWriter, r *http.Request) {
	var draft core.MonthRecord
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.months.Create(r.Context(), userOf(r), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/months/"+m.ID)
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleListMonths(w http.ResponseWriter, r *http.Request) {
	months, err := s.months.List(r.Context(), userOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if months == nil {
		months = []core.MonthRecord{}
	}
	writeJSON(w, http.StatusOK, months)
}

func (s *Server) handleGetMonth(w http.ResponseWriter, r *http.Request) {
	m, err := s.months.Get(r.Context(), userOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleUpdateMonth(w http.ResponseWriter, r *http.Request) {
	var draft core.MonthRecord
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, r, err)
		return
	}
	m, entry, err := s.months.Update(r.Context(), userOf(r), chi.URLParam(r, "id"), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updateMonthResponse{Month: m, Archive: entry})
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.months.History(r.Context(), userOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.ArchiveEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	entry, err := s.months.HistoryEntry(r.Context(), userOf(r), chi.URLParam(r, "id"), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleReconcile previews a diff without touching storage. The strict query
// flag is accepted as an alternative to the body field.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var opts []reconcile.Option
	if f := strings.TrimSpace(req.IdentityField); f != "" {
		opts = append(opts, reconcile.WithIdentityField(f))
	}
	if f := strings.TrimSpace(req.AmountField); f != "" {
		opts = append(opts, reconcile.WithAmountField(f))
	}

	delta, err := s.months.Diff(req.Previous, req.Current, req.Strict || queryBool(r, "strict"), opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Snapshots reconciled",
		log.FieldOperation, log.OpReconcile,
		"categories", len(delta))
	writeJSON(w, http.StatusOK, delta)
}
