package http

import (
	"fmt"
	"net/http"

	"contas/internal/core"
	"contas/internal/log"
)

// Month partition and debt lifecycle handlers. Debt mutations invalidate
// the month summary cache: the toggle knows its month and evicts one key,
// everything else may touch several months and purges.

func (s *Server) handleListMonths(w http.ResponseWriter, r *http.Request) {
	keys := s.debts.Months()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	respondJSON(w, http.StatusOK, map[string]any{"months": out})
}

func (s *Server) handleAddMonths(w http.ResponseWriter, r *http.Request) {
	var payload monthsPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.debts.AddMonths(r.Context(), payload.toKeys()); err != nil {
		respondError(w, r, err)
		return
	}
	s.summaryCache.Purge()
	respondJSON(w, http.StatusCreated, map[string]any{"added": true})
}

func (s *Server) handleDeleteMonth(w http.ResponseWriter, r *http.Request) {
	key := core.MonthKey(r.PathValue("key"))
	if _, _, err := key.Parse(); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.debts.DeleteMonth(r.Context(), key); err != nil {
		respondError(w, r, err)
		return
	}
	s.summaryCache.Delete(string(key))
	w.WriteHeader(http.StatusNoContent)
}

// handleMonthSummary serves the dashboard projection, cached per month.
func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	key := core.MonthKey(r.PathValue("key"))
	if _, _, err := key.Parse(); err != nil {
		respondError(w, r, err)
		return
	}

	summary, found := s.summaryCache.Get(string(key))
	if !found {
		summary = s.debts.Summary(key)
		s.summaryCache.Set(string(key), summary)
	}
	respondJSON(w, http.StatusOK, toSummaryJSON(summary))
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	key := core.MonthKey(r.PathValue("key"))
	if _, _, err := key.Parse(); err != nil {
		respondError(w, r, err)
		return
	}
	debts := core.FilterDebts(s.debts.DebtsFor(key), parseListControls(r.URL.Query()))
	respondJSON(w, http.StatusOK, map[string]any{"debts": toDebtListJSON(debts)})
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var payload debtPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	tpl, current := payload.toTemplate()

	created, err := s.debts.SaveNew(r.Context(), tpl, current)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.summaryCache.Purge()
	respondJSON(w, http.StatusCreated, map[string]any{"created": created})
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var payload debtUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.debts.Update(r.Context(), id, payload.toUpdate()); err != nil {
		respondError(w, r, err)
		return
	}
	s.summaryCache.Purge()
	respondJSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (s *Server) handleToggleDebt(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	debt, key, found := s.debts.FindDebt(id)
	if !found {
		respondError(w, r, fmt.Errorf("debt %d: %w", id, core.ErrNotFound))
		return
	}
	if err := s.debts.ToggleStatus(r.Context(), key, id); err != nil {
		respondError(w, r, err)
		return
	}
	s.summaryCache.Delete(string(key))
	log.FromContext(r.Context()).InfoContext(r.Context(), "debt status toggled",
		log.FieldDebtID, id,
		log.FieldMonthKey, string(key))

	updated, _, _ := s.debts.FindDebt(debt.ID)
	respondJSON(w, http.StatusOK, toDebtJSON(updated))
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	debt, _, found := s.debts.FindDebt(id)
	if !found {
		respondError(w, r, fmt.Errorf("debt %d: %w", id, core.ErrNotFound))
		return
	}
	wholeChain := r.URL.Query().Get("chain") == "true"
	if err := s.debts.Delete(r.Context(), debt, wholeChain); err != nil {
		respondError(w, r, err)
		return
	}
	s.summaryCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}
