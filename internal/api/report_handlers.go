package api

import (
	"net/http"
	"strconv"
	"time"
)

func (h *Handler) stockReport(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, canReadReports) {
		return
	}
	rows, err := h.reports.StockReport(r.Context())
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) transactionReport(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, canReadReports) {
		return
	}
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	rows, err := h.reports.TransactionReport(r.Context(), from, to)
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) financialSummary(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, canReadReports) {
		return
	}
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	summary, err := h.reports.FinancialSummary(r.Context(), from, to)
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// yearMonthParams reads year/month query parameters, defaulting to the
// current month.
func yearMonthParams(r *http.Request) (year, month int, ok bool) {
	now := time.Now()
	year, month = now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			return 0, 0, false
		}
		month = parsed
	}
	return year, month, true
}

func (h *Handler) monthlySales(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, canReadReports) {
		return
	}
	year, month, ok := yearMonthParams(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid year or month")
		return
	}
	total, err := h.reports.TotalMonthlySales(r.Context(), year, month)
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"year": year, "month": month, "total_sales": total})
}

func (h *Handler) detailedMonthlySales(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, canReadReports) {
		return
	}
	year, month, ok := yearMonthParams(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid year or month")
		return
	}
	report, err := h.reports.DetailedMonthlySales(r.Context(), year, month)
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
