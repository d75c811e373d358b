package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"server/src/schemas"
	"server/src/utils"
)

// RegisterUser ensures the session user has an aggregator identity.
// Idempotent: repeated calls reuse the stored secret.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var req schemas.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("Invalid JSON in request body"))
		return
	}
	if req.UserID == "" {
		h.HandleErrors(w, utils.BadRequest("User ID is required"))
		return
	}
	if !h.requireUser(w, r, req.UserID) {
		return
	}

	user, err := h.Registration.RegisterUser(ctx, req.UserID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.RegisterUserResponse{Success: true, UserID: user.UserID}, http.StatusOK)
}

// RefreshUser force-registers the user again to refresh credentials. The
// registration flow reuses a stored secret, so this is safe to repeat.
func (h *Handler) RefreshUser(w http.ResponseWriter, r *http.Request) {
	h.RegisterUser(w, r)
}

// DeleteUser removes the aggregator identity and soft-deletes the local
// connection record.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.HandleErrors(w, utils.BadRequest("User ID is required"))
		return
	}
	if !h.requireUser(w, r, userID) {
		return
	}

	if err := h.Registration.DeleteUser(ctx, userID); err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, map[string]interface{}{
		"success": true,
		"message": "User deleted successfully",
	}, http.StatusOK)
}
