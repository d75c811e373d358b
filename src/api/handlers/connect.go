package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"server/src/schemas"
	"server/src/utils"
)

// CreateConnection requests a broker portal URL for the session user. The
// response always carries a usable redirect target, with the error message
// surfaced alongside it on aggregator failure.
func (h *Handler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var req schemas.ConnectRequest
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

	link := h.Connections.CreateConnectionLink(ctx, &req)
	h.respond(w, r, schemas.ConnectResponse{
		Success:     link.Error == "",
		RedirectURI: link.RedirectURI,
		Error:       link.Error,
	}, http.StatusOK)
}

// DeleteConnection disconnects the user's brokerage authorization. Local
// state is authoritative; aggregator cleanup is best-effort.
func (h *Handler) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := r.URL.Query().Get("userId")
	connectionID := r.URL.Query().Get("connectionId")
	if userID == "" || connectionID == "" {
		h.HandleErrors(w, utils.BadRequest("User ID and connection ID are required"))
		return
	}
	if !h.requireUser(w, r, userID) {
		return
	}

	if err := h.Connections.DeleteConnection(ctx, userID); err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, map[string]interface{}{
		"success": true,
		"message": "Connection deleted successfully",
	}, http.StatusOK)
}

// ConnectionStatus reports whether the session is authenticated and how
// many broker connections it has.
func (h *Handler) ConnectionStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, email := h.sessionIdentity(r)

	status, err := h.Connections.Status(ctx, userID, email)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, status, http.StatusOK)
}

// Debug reports whether aggregator credentials are configured, without
// revealing them.
func (h *Handler) Debug(w http.ResponseWriter, r *http.Request) {
	set := func(ok bool) string {
		if ok {
			return "Set"
		}
		return "Not set"
	}
	h.respond(w, r, map[string]interface{}{
		"status": "ok",
		"environment": map[string]string{
			"clientId":    set(h.ClientConfigured),
			"consumerKey": set(h.KeyConfigured),
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}
