package http

import "net/http"

// handleUpcoming aggregates what is due within the ?days window across all
// three obligation kinds. It feeds the notification panel.
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	days := parseDays(r.URL.Query())

	installments, err := s.installments.Upcoming(r.Context(), days)
	if err != nil {
		respondError(w, r, err)
		return
	}
	subscriptions, err := s.subscriptions.UpcomingBillings(r.Context(), days)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"days":          days,
		"debts":         toDebtListJSON(s.debts.UpcomingDebts(days)),
		"installments":  toInstallmentListJSON(installments),
		"subscriptions": toSubscriptionListJSON(subscriptions),
	})
}
