package schemas

// AggregatorUser is the identity the aggregator issues for a dashboard user.
type AggregatorUser struct {
	UserID     string `json:"userId"`
	UserSecret string `json:"userSecret"`
}

// ConnectionLink is the result of requesting a broker-authorization portal
// URL. Error is populated on best-effort fallbacks; RedirectURI is always a
// usable target.
type ConnectionLink struct {
	RedirectURI string `json:"redirectUri"`
	Error       string `json:"error,omitempty"`
}

type Brokerage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BrokerAccount is an aggregator account normalized for display. Accounts
// are fetched live on each request and never persisted.
type BrokerAccount struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Number       string    `json:"number"`
	Type         string    `json:"type"`
	Brokerage    Brokerage `json:"brokerage"`
	ConnectionID string    `json:"connection_id"`
	TotalValue   float64   `json:"totalValue"`
	GainLoss     float64   `json:"gainLoss"`
}

// BrokerHolding is a per-account position with derived display fields.
// Ephemeral: recomputed on every fetch.
type BrokerHolding struct {
	Symbol             string  `json:"symbol"`
	Name               string  `json:"name"`
	Quantity           float64 `json:"quantity"`
	PricePerShare      float64 `json:"pricePerShare"`
	TotalValue         float64 `json:"totalValue"`
	GainLoss           float64 `json:"gainLoss"`
	PurchasePrice      float64 `json:"purchasePrice"`
	CostBasis          float64 `json:"costBasis"`
	PercentOfPortfolio float64 `json:"percentOfPortfolio"`
	AccountID          string  `json:"accountId"`
	AccountName        string  `json:"accountName"`
	BrokerName         string  `json:"brokerName"`
	Currency           string  `json:"currency"`
	IsCash             bool    `json:"isCash"`
}

// PortfolioSummary aggregates a user's holdings into the headline numbers
// the dashboard cards show.
type PortfolioSummary struct {
	TotalValue    float64 `json:"totalValue"`
	CashAvailable float64 `json:"cashAvailable"`
	InvestedValue float64 `json:"investedValue"`
	HoldingCount  int     `json:"holdingCount"`
}

type AccountBalance struct {
	Cash        float64 `json:"cash"`
	BuyingPower float64 `json:"buying_power"`
	Currency    string  `json:"currency"`
}

type Activity struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Symbol      string  `json:"symbol,omitempty"`
	Currency    string  `json:"currency"`
	Amount      float64 `json:"amount"`
	Quantity    float64 `json:"quantity,omitempty"`
	Price       float64 `json:"price,omitempty"`
}

// SyncResponse is the payload of the non-persisting sync endpoint.
type SyncResponse struct {
	Success     bool              `json:"success"`
	SyncStatus  string            `json:"syncStatus"`
	SyncMessage string            `json:"syncMessage"`
	Accounts    []BrokerAccount   `json:"accounts"`
	Holdings    []BrokerHolding   `json:"holdings"`
	Summary     *PortfolioSummary `json:"summary"`
}

// RefreshResult is the payload of the persisting refresh endpoint.
type RefreshResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Accounts   int    `json:"accounts"`
	AssetCount int    `json:"assetCount"`
}

// ConnectionStatus reports session identity plus broker-connection counts.
type ConnectionStatus struct {
	Authenticated    bool   `json:"authenticated"`
	UserID           string `json:"userId,omitempty"`
	Email            string `json:"email,omitempty"`
	HasConnections   bool   `json:"hasConnections"`
	ConnectionsCount int    `json:"connectionsCount"`
}
