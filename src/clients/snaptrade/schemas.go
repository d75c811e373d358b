package snaptrade

import (
	"encoding/json"

	"server/src/utils"
)

// FlexFloat decodes aggregator numeric fields that arrive as numbers,
// quoted numbers, empty strings or null. All coercion funnels through
// utils.ToFloat.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(utils.ToFloat(raw))
	return nil
}

func (f FlexFloat) Float64() float64 {
	return float64(f)
}

// Symbol arrives either as a bare string or as an object with its own
// "symbol" field depending on the upstream brokerage.
type Symbol struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
}

func (s *Symbol) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Symbol = str
		return nil
	}
	type alias Symbol
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	*s = Symbol(obj)
	return nil
}

type RegisterUserResponse struct {
	UserID     string `json:"userId"`
	UserSecret string `json:"userSecret"`
}

type LoginRequest struct {
	UserID         string `json:"userId"`
	UserSecret     string `json:"userSecret"`
	Broker         string `json:"broker,omitempty"`
	CustomRedirect string `json:"customRedirect,omitempty"`
}

type LoginResponse struct {
	RedirectURI string `json:"redirectURI"`
}

type Brokerage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Number       string    `json:"number"`
	Type         string    `json:"type"`
	Brokerage    Brokerage `json:"brokerage"`
	ConnectionID string    `json:"connection_id"`
	TotalValue   FlexFloat `json:"totalValue"`
	GainLoss     FlexFloat `json:"gainLoss"`
}

type Position struct {
	Symbol        Symbol    `json:"symbol"`
	Name          string    `json:"name"`
	Quantity      FlexFloat `json:"quantity"`
	Price         FlexFloat `json:"price"`
	PricePerShare FlexFloat `json:"pricePerShare"`
	BookValue     FlexFloat `json:"bookValue"`
	PurchasePrice FlexFloat `json:"purchasePrice"`
	TotalValue    FlexFloat `json:"totalValue"`
	GainLoss      FlexFloat `json:"gainLoss"`
	Currency      string    `json:"currency"`
	IsCash        bool      `json:"isCash"`
}

// UnitPrice resolves the two spellings of the per-share price the
// aggregator uses across endpoints.
func (p *Position) UnitPrice() float64 {
	if p.Price != 0 {
		return p.Price.Float64()
	}
	return p.PricePerShare.Float64()
}

type Balance struct {
	Cash     bool      `json:"cash"`
	Type     string    `json:"type"`
	Amount   FlexFloat `json:"amount"`
	Currency string    `json:"currency"`
}

type Activity struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Symbol      Symbol    `json:"symbol"`
	Currency    string    `json:"currency"`
	Amount      FlexFloat `json:"amount"`
	Quantity    FlexFloat `json:"quantity"`
	Price       FlexFloat `json:"price"`
}
