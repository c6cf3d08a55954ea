package http

import (
	"net/http"

	"finledger/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// billRequest records the current bill of a card.
type billRequest struct {
	TotalDue   decimal.Decimal `json:"totalDue"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
	BillPaid   bool            `json:"billPaid"`
}

// closeStatementRequest archives a statement; an empty month means the
// current one.
type closeStatementRequest struct {
	Month string `json:"month"`
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	list, err := s.cards.List(r.Context(), userOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	var draft core.Card
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.cards.Add(r.Context(), userOf(r), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/cards/"+c.ID)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	c, err := s.cards.Get(r.Context(), userOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleEditCard(w http.ResponseWriter, r *http.Request) {
	var patch core.Card
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.cards.Edit(r.Context(), userOf(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleRecordBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.cards.RecordBill(r.Context(), userOf(r), chi.URLParam(r, "id"), req.TotalDue, req.AmountPaid, req.BillPaid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleListStatements(w http.ResponseWriter, r *http.Request) {
	stmts, err := s.cards.Statements(r.Context(), userOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stmts)
}

func (s *Server) handleCloseStatement(w http.ResponseWriter, r *http.Request) {
	var req closeStatementRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	stmt, err := s.cards.CloseStatement(r.Context(), userOf(r), chi.URLParam(r, "id"), req.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stmt)
}
