package handlers

import (
	"context"
	"net/http"
	"time"

	"server/src/schemas"
)

// Callback receives the post-authorization redirect from the broker portal.
// It never errors to the browser: every outcome is a 302 whose query string
// carries the result. Sits outside the authenticated route group; a missing
// session surfaces as a user-mismatch redirect, not a 401.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	sessionUser, _ := h.sessionIdentity(r)

	query := r.URL.Query()
	req := &schemas.CallbackRequest{
		UserID:          query.Get("userId"),
		Success:         query.Get("success"),
		Brokerage:       query.Get("brokerage"),
		AuthorizationID: query.Get("authorizationId"),
		Redirect:        query.Get("redirect"),
		Origin:          requestOrigin(r),
		SessionUserID:   sessionUser,
	}

	location := h.Connections.ResolveCallback(ctx, req)
	http.Redirect(w, r, location, http.StatusFound)
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	if r.Host == "" {
		return ""
	}
	return scheme + "://" + r.Host
}
