package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"server/src/schemas"
	"server/src/utils"

	"github.com/go-chi/chi/v5"
)

// GetAssets lists the session user's assets, largest first.
func (h *Handler) GetAssets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionUser, _ := h.sessionIdentity(r)
	if sessionUser == "" {
		h.HandleErrors(w, utils.Unauthorized("User not authenticated"))
		return
	}

	assets, err := h.Assets.GetAssets(ctx, sessionUser)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, map[string]interface{}{"assets": assets}, http.StatusOK)
}

// CreateAsset records a manual asset entry.
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionUser, _ := h.sessionIdentity(r)
	if sessionUser == "" {
		h.HandleErrors(w, utils.Unauthorized("User not authenticated"))
		return
	}

	var req schemas.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("Invalid JSON in request body"))
		return
	}

	asset, err := h.Assets.CreateAsset(ctx, sessionUser, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, asset, http.StatusCreated)
}

// DeleteAsset removes one asset by id.
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionUser, _ := h.sessionIdentity(r)
	if sessionUser == "" {
		h.HandleErrors(w, utils.Unauthorized("User not authenticated"))
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("asset id must be an integer"))
		return
	}

	if err := h.Assets.DeleteAsset(ctx, sessionUser, id); err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, map[string]interface{}{"success": true}, http.StatusOK)
}

// GetAssetCategories lists the static category lookup.
func (h *Handler) GetAssetCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	categories, err := h.Assets.GetCategories(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	type category struct {
		ID   int    `json:"id"`
		Slug string `json:"slug"`
		Name string `json:"name"`
	}
	out := make([]category, len(categories))
	for i, c := range categories {
		out[i] = category{ID: c.ID, Slug: c.Slug, Name: c.Name}
	}
	h.respond(w, r, map[string]interface{}{"categories": out}, http.StatusOK)
}
