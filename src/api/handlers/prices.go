package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"server/src/utils"
)

// GetMetalPrice proxies the metals price vendor, cached for a few minutes.
func (h *Handler) GetMetalPrice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	metal := r.URL.Query().Get("metal")
	if metal == "" {
		h.HandleErrors(w, utils.BadRequest("metal is required"))
		return
	}

	price, err := h.Prices.GetMetalPrice(ctx, metal, r.URL.Query().Get("currency"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, price, http.StatusOK)
}

// GetVehiclePricing estimates a vehicle's market value from comparable
// listings.
func (h *Handler) GetVehiclePricing(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	query := r.URL.Query()
	vehicleMake := query.Get("make")
	model := query.Get("model")
	year, err := strconv.Atoi(query.Get("year"))
	if vehicleMake == "" || model == "" || err != nil {
		h.HandleErrors(w, utils.BadRequest("make, model and a numeric year are required"))
		return
	}

	pricing, err := h.Prices.GetVehiclePricing(ctx, vehicleMake, model, year)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, pricing, http.StatusOK)
}
