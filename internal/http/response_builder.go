// Package http serves the JSON API over net/http. Handlers decode
// snake_case payloads, call the services and encode snake_case responses;
// domain sentinel errors map onto HTTP statuses in one place here.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"contas/internal/core"
	"contas/internal/log"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error string `json:"error"`
}

// respondJSON writes v as the JSON response body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps a service error onto its status code and writes the
// error body. Anything not recognized as a domain error is a 500 and gets
// logged; client errors only surface in the trace middleware's completion
// line.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			log.FieldPath, r.URL.Path,
			log.FieldMethod, r.Method,
			log.FieldError, err.Error())
		respondJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	respondJSON(w, status, errorBody{Error: err.Error()})
}

// validationErrors are the advisory checks that block a submission. They
// come back as 400s with the sentinel's message.
var validationErrors = []error{
	core.ErrEmptyName,
	core.ErrInvalidAmount,
	core.ErrInvalidDueDay,
	core.ErrInvalidDate,
	core.ErrInvalidRecurrence,
	core.ErrInvalidMonthKey,
	core.ErrInvalidStatus,
	core.ErrInvalidBillingCycle,
	core.ErrInvalidInstallments,
	core.ErrInvalidPaidCount,
	core.ErrInvalidCardEnding,
	core.ErrInvalidClosingDay,
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, errBadBody):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNoTargetMonths), errors.Is(err, core.ErrUnknownMonth):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInstallmentCancelled):
		return http.StatusConflict
	}
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}
