package api

import (
	"net/http"
)

func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.ListUnresolved(r.Context())
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

func (h *Handler) resolveAlert(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, canWriteStock) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	if err := h.alerts.Resolve(r.Context(), id); err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}
