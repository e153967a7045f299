package http

import (
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
)

// handleSummary aggregates one calendar month. Without year/month query
// params it summarizes the current month.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		year  int
		month time.Month
	)
	if raw := q.Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1970 || parsed > 9999 {
			writeError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}
	if raw := q.Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			writeError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = time.Month(parsed)
	}
	if (year == 0) != (month == 0) {
		writeError(w, http.StatusBadRequest, "Year and month must be supplied together")
		return
	}

	summary, err := s.ledger.Summary(r.Context(), ownerFromContext(r.Context()), year, month)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := s.ledger.Trends(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]core.MonthSummary{"trends": trends})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.SuggestedCategories())
}
