package api

import (
	"net/http"

	"medware/m/domain"
	"medware/m/internal/store"
)

type createSupplierRequest struct {
	Name        string `json:"name" validate:"required"`
	ContactInfo string `json:"contact_info"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, canWriteStock) {
		return
	}
	var req createSupplierRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondOpError(w, r, err)
		return
	}

	id, err := h.suppliers.Create(r.Context(), store.CreateSupplierInput{
		Name:        req.Name,
		ContactInfo: nullIfEmpty(req.ContactInfo),
		Email:       nullIfEmpty(req.Email),
		Phone:       nullIfEmpty(req.Phone),
		Address:     nullIfEmpty(req.Address),
	})
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.suppliers.ListActive(r.Context())
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, suppliers)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid supplier id")
		return
	}
	supplier, err := h.suppliers.GetByID(r.Context(), id)
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, supplier)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, canWriteStock) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid supplier id")
		return
	}
	var patch domain.SupplierPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.suppliers.Update(r.Context(), id, patch); err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deactivateSupplier(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, func(role string) bool { return role == domain.RoleAdmin }) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid supplier id")
		return
	}
	if err := h.suppliers.Deactivate(r.Context(), id); err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *Handler) supplierMedicines(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid supplier id")
		return
	}
	medicines, err := h.suppliers.Medicines(r.Context(), id)
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}
