package http

import (
	"net/http"

	"contas/internal/core"
	"contas/internal/log"
)

func (s *Server) handleListInstallments(w http.ResponseWriter, r *http.Request) {
	list, err := s.installments.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	list = core.FilterInstallments(list, parseListControls(r.URL.Query()))
	respondJSON(w, http.StatusOK, map[string]any{"installments": toInstallmentListJSON(list)})
}

func (s *Server) handleCreateInstallment(w http.ResponseWriter, r *http.Request) {
	var payload installmentPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	id, err := s.installments.SaveNew(r.Context(), payload.toInstallment(0))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleGetInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	in, err := s.installments.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toInstallmentJSON(in))
}

func (s *Server) handleUpdateInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var payload installmentPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.installments.Update(r.Context(), payload.toInstallment(id)); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"updated": true})
}

// handleMarkInstallment records payment through the clicked installment
// number and returns the reprojected record so the client can redraw the
// progress dots without a second round trip.
func (s *Server) handleMarkInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var payload markPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	in, err := s.installments.MarkThrough(r.Context(), id, payload.InstallmentNumber)
	if err != nil {
		respondError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "installment progress marked",
		log.FieldInstallmentID, id,
		"paid_installments", in.PaidInstallments)
	respondJSON(w, http.StatusOK, toInstallmentJSON(in))
}

func (s *Server) handleCancelInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.installments.Cancel(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cancelled": true})
}

func (s *Server) handleDeleteInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.installments.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
