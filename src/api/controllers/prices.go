package controllers

import (
	"context"
	"errors"
	"time"

	"server/src/clients/goldapi"
	"server/src/clients/marketcheck"
	"server/src/schemas"
	redis_utils "server/src/utils/redis"

	"github.com/redis/go-redis/v9"
)

// metalPriceTTL bounds how stale a cached quote may get. The vendor's free
// tier is heavily rate limited, so quotes are cached aggressively.
const metalPriceTTL = 5 * time.Minute

type PricesControllerI interface {
	GetMetalPrice(ctx context.Context, metal, currency string) (*schemas.MetalPrice, error)
	GetVehiclePricing(ctx context.Context, vehicleMake, model string, year int) (*schemas.VehiclePricing, error)
}

type PricesController struct {
	Metals   goldapi.Client
	Vehicles marketcheck.Client
	// Cache may be nil, in which case every quote hits the vendor.
	Cache *redis_utils.RedisHandler
}

func NewPricesController(metals goldapi.Client, vehicles marketcheck.Client, cache *redis_utils.RedisHandler) *PricesController {
	return &PricesController{Metals: metals, Vehicles: vehicles, Cache: cache}
}

func (c *PricesController) GetMetalPrice(ctx context.Context, metal, currency string) (*schemas.MetalPrice, error) {
	logger := loggerFor(ctx)

	symbol, ok := goldapi.MetalSymbol(metal)
	if !ok {
		return c.Metals.GetPrice(ctx, metal, currency)
	}
	if currency == "" {
		currency = "USD"
	}
	key := "metal:" + symbol + ":" + currency

	if c.Cache != nil {
		var cached schemas.MetalPrice
		err := c.Cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			logger.WithField("key", key).WithError(err).Warn("metal price cache read failed")
		}
	}

	price, err := c.Metals.GetPrice(ctx, metal, currency)
	if err != nil {
		return nil, err
	}

	if c.Cache != nil {
		if err := c.Cache.Set(ctx, key, price, metalPriceTTL); err != nil {
			logger.WithField("key", key).WithError(err).Warn("metal price cache write failed")
		}
	}
	return price, nil
}

func (c *PricesController) GetVehiclePricing(ctx context.Context, vehicleMake, model string, year int) (*schemas.VehiclePricing, error) {
	return c.Vehicles.GetPricing(ctx, vehicleMake, model, year)
}
