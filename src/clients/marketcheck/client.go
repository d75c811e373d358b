package marketcheck

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"time"

	"server/src/schemas"
	"server/src/utils"
)

// basePrices holds new-vehicle reference prices by make. Unknown makes fall
// back to defaultBasePrice.
var basePrices = map[string]int{
	"toyota":     30000,
	"honda":      28000,
	"ford":       32000,
	"chevrolet":  33000,
	"bmw":        50000,
	"mercedes":   55000,
	"audi":       48000,
	"tesla":      60000,
	"volkswagen": 28000,
	"hyundai":    25000,
	"kia":        24000,
	"nissan":     27000,
	"subaru":     29000,
	"mazda":      26000,
	"lexus":      45000,
}

const defaultBasePrice = 30000

// maxDepreciation caps total age depreciation at 80% of the base price.
const maxDepreciation = 0.8

type Client interface {
	GetPricing(ctx context.Context, vehicleMake, model string, year int) (*schemas.VehiclePricing, error)
}

// mockPricer generates plausible market estimates without calling the real
// listings API. Real credentials are not required for the dashboard's
// vehicle widget, so this is the only implementation for now.
type mockPricer struct {
	rng *rand.Rand
}

func NewClient(baseURL, apiKey string) Client {
	return &mockPricer{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *mockPricer) GetPricing(ctx context.Context, vehicleMake, model string, year int) (*schemas.VehiclePricing, error) {
	if vehicleMake == "" || model == "" || year <= 0 {
		return nil, utils.BadRequest("make, model and year are required")
	}

	base := defaultBasePrice
	if p, ok := basePrices[strings.ToLower(strings.TrimSpace(vehicleMake))]; ok {
		base = p
	}

	age := time.Now().Year() - year
	if age < 0 {
		age = 0
	}
	depreciation := float64(age) * 0.1
	if depreciation > maxDepreciation {
		depreciation = maxDepreciation
	}
	estimate := float64(base) * (1 - depreciation)

	count := 3 + c.rng.Intn(5)
	listings := make([]schemas.VehicleListing, 0, count)
	total := 0
	for i := 0; i < count; i++ {
		// Each comparable sits within 10% of the estimate.
		noise := 1 + (c.rng.Float64()*0.2 - 0.1)
		price := int(estimate * noise)
		miles := int((10000 + c.rng.Float64()*15000) * float64(age))
		listings = append(listings, schemas.VehicleListing{Price: price, Miles: miles})
		total += price
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].Price < listings[j].Price })

	return &schemas.VehiclePricing{
		Make:         vehicleMake,
		Model:        model,
		Year:         year,
		AveragePrice: total / count,
		PriceLow:     listings[0].Price,
		PriceHigh:    listings[count-1].Price,
		Listings:     listings,
	}, nil
}
