package goldapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"server/src/schemas"
	"server/src/utils"
	"server/src/utils/requests"
)

// symbols maps the metal names the API accepts to GoldAPI ticker symbols.
var symbols = map[string]string{
	"gold":      "XAU",
	"silver":    "XAG",
	"platinum":  "XPT",
	"palladium": "XPD",
}

type Client interface {
	GetPrice(ctx context.Context, metal, currency string) (*schemas.MetalPrice, error)
}

type client struct {
	api *requests.ExternalAPIService
}

func NewClient(baseURL, apiKey string) Client {
	if baseURL == "" {
		baseURL = "https://www.goldapi.io/api"
	}
	return &client{
		api: requests.NewExternalAPIService(baseURL, map[string]string{
			"x-access-token": apiKey,
		}),
	}
}

// MetalSymbol resolves a metal name or ticker to its GoldAPI symbol.
// Unknown metals return ok=false.
func MetalSymbol(metal string) (string, bool) {
	m := strings.ToLower(strings.TrimSpace(metal))
	if sym, ok := symbols[m]; ok {
		return sym, true
	}
	upper := strings.ToUpper(m)
	for _, sym := range symbols {
		if sym == upper {
			return sym, true
		}
	}
	return "", false
}

type priceResponse struct {
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Metal     string  `json:"metal"`
	Timestamp int64   `json:"timestamp"`
}

func (c *client) GetPrice(ctx context.Context, metal, currency string) (*schemas.MetalPrice, error) {
	symbol, ok := MetalSymbol(metal)
	if !ok {
		return nil, utils.BadRequest("unsupported metal: " + metal)
	}
	if currency == "" {
		currency = "USD"
	}
	currency = strings.ToUpper(currency)

	resp, err := c.api.Get(ctx, "/"+symbol+"/"+currency, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, utils.NewHTTPError(http.StatusBadGateway, "goldapi: malformed response")
	}
	return &schemas.MetalPrice{
		Price:     out.Price,
		Currency:  currency,
		Timestamp: out.Timestamp,
		Metal:     symbol,
	}, nil
}
