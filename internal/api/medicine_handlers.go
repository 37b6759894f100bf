package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"medware/m/domain"
	"medware/m/internal/stock"
	"medware/m/internal/store"
)

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

type createMedicineRequest struct {
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" validate:"gte=0"`
	SupplierID   *int64  `json:"supplier_id"`
	BatchNumber  string  `json:"batch_number"`
	ExpiryDate   string  `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	MinimumStock int64   `json:"minimum_stock" validate:"gte=0"`
	MaximumStock int64   `json:"maximum_stock" validate:"gtefield=MinimumStock"`
	Location     string  `json:"location"`
	Category     string  `json:"category"`
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, canWriteStock) {
		return
	}
	var req createMedicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondOpError(w, r, err)
		return
	}

	id, err := h.medicines.Create(r.Context(), store.CreateMedicineInput{
		Name:         req.Name,
		Description:  nullIfEmpty(req.Description),
		Price:        req.Price,
		SupplierID:   req.SupplierID,
		BatchNumber:  nullIfEmpty(req.BatchNumber),
		ExpiryDate:   nullIfEmpty(req.ExpiryDate),
		MinimumStock: req.MinimumStock,
		MaximumStock: req.MaximumStock,
		Location:     nullIfEmpty(req.Location),
		Category:     nullIfEmpty(req.Category),
	})
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.medicines.List(r.Context())
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) searchMedicines(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("query"))
	medicines, err := h.medicines.Search(r.Context(), term)
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) lowStockMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.medicines.LowStock(r.Context())
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) expiredMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.medicines.Expired(r.Context())
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	medicine, err := h.medicines.GetByID(r.Context(), id)
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, medicine)
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, canWriteStock) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	var patch domain.MedicinePatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.medicines.Update(r.Context(), id, patch, userIDFromContext(r)); err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type updateStockRequest struct {
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
	Direction   string `json:"transaction_type" validate:"required,oneof=incoming outgoing"`
	BatchNumber string `json:"batch_number"`
	ExpiryDate  string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	Reason      string `json:"reason"`
}

func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, canWriteStock) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	var req updateStockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondOpError(w, r, err)
		return
	}

	newQuantity, err := h.engine.UpdateStock(r.Context(), stock.UpdateStockInput{
		MedicineID:  id,
		Quantity:    req.Quantity,
		Direction:   req.Direction,
		UserID:      userIDFromContext(r),
		BatchNumber: nullIfEmpty(req.BatchNumber),
		ExpiryDate:  nullIfEmpty(req.ExpiryDate),
		Reason:      nullIfEmpty(req.Reason),
	})
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "stock updated", "quantity": newQuantity})
}

func (h *Handler) medicineTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	transactions, err := h.transactions.ListByMedicine(r.Context(), id)
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}

func (h *Handler) medicineAudit(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, func(role string) bool { return role == domain.RoleAdmin }) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	entries, err := h.audit.ListByRecord(r.Context(), "medicines", id)
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
