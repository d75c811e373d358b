package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"server/src/utils"
)

// SyncData runs the non-persisting sync for the session user.
func (h *Handler) SyncData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	sessionUser, _ := h.sessionIdentity(r)
	if sessionUser == "" {
		h.HandleErrors(w, utils.Unauthorized("User not authenticated"))
		return
	}

	h.respond(w, r, h.Sync.SyncData(ctx, sessionUser), http.StatusOK)
}

// RefreshAssets runs the persisting refresh. The user id is taken from the
// request body; the route trusts it without a session check.
func (h *Handler) RefreshAssets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("Invalid JSON in request body"))
		return
	}
	if req.UserID == "" {
		h.HandleErrors(w, utils.BadRequest("User ID is required"))
		return
	}

	result, err := h.Sync.RefreshAssets(ctx, req.UserID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, result, http.StatusOK)
}

// GetAccounts lists the user's brokerage accounts.
func (h *Handler) GetAccounts(w http.ResponseWriter, r *http.Request) {
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

	accounts, _ := h.Sync.FetchAccounts(ctx, userID)
	h.respond(w, r, map[string]interface{}{"accounts": accounts}, http.StatusOK)
}

// GetHoldings lists holdings across accounts, optionally scoped to one.
func (h *Handler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.HandleErrors(w, utils.BadRequest("User ID is required"))
		return
	}
	if !h.requireUser(w, r, userID) {
		return
	}

	holdings, _ := h.Sync.FetchHoldings(ctx, userID, r.URL.Query().Get("accountId"))
	h.respond(w, r, map[string]interface{}{"holdings": holdings}, http.StatusOK)
}

// GetBalance returns the cash balance of one account.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := r.URL.Query().Get("userId")
	accountID := r.URL.Query().Get("accountId")
	if userID == "" || accountID == "" {
		h.HandleErrors(w, utils.BadRequest("User ID and account ID are required"))
		return
	}
	if !h.requireUser(w, r, userID) {
		return
	}

	balance, err := h.Sync.GetBalance(ctx, userID, accountID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, balance, http.StatusOK)
}

// GetActivities returns the account's transaction feed, defaulting to the
// trailing 90 days.
func (h *Handler) GetActivities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	query := r.URL.Query()
	userID := query.Get("userId")
	accountID := query.Get("accountId")
	if userID == "" || accountID == "" {
		h.HandleErrors(w, utils.BadRequest("User ID and account ID are required"))
		return
	}
	if !h.requireUser(w, r, userID) {
		return
	}

	activities, err := h.Sync.GetActivities(ctx, userID, accountID,
		query.Get("startDate"), query.Get("endDate"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, map[string]interface{}{"activities": activities}, http.StatusOK)
}

// MockHoldings serves the demo dataset used by the integration page.
func (h *Handler) MockHoldings(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, map[string]interface{}{"holdings": h.Sync.SampleHoldings()}, http.StatusOK)
}
