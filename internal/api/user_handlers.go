package api

import (
	"net/http"

	"medware/m/domain"
	"medware/m/internal/store"
)

func isAdmin(role string) bool { return role == domain.RoleAdmin }

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin warehouse_worker accountant"`
	FullName string `json:"full_name"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, isAdmin) {
		return
	}
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondOpError(w, r, err)
		return
	}

	id, err := h.users.Create(r.Context(), store.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		FullName: nullIfEmpty(req.FullName),
		Email:    nullIfEmpty(req.Email),
	})
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "username": req.Username})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, isAdmin) {
		return
	}
	users, err := h.users.List(r.Context())
	if err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, isAdmin) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var patch domain.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.users.Update(r.Context(), id, patch, userIDFromContext(r)); err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deactivateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, isAdmin) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if id == userIDFromContext(r) {
		respondError(w, http.StatusBadRequest, "cannot deactivate your own account")
		return
	}
	if err := h.users.Deactivate(r.Context(), id); err != nil {
		h.respondOpError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
