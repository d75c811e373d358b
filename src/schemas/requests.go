package schemas

// RegisterUserRequest is the body of POST /api/snaptrade/register.
type RegisterUserRequest struct {
	UserID string `json:"userId"`
}

type RegisterUserResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

// ConnectRequest is the body of POST /api/snaptrade/connect.
type ConnectRequest struct {
	UserID      string `json:"userId"`
	BrokerID    string `json:"brokerId,omitempty"`
	RedirectURI string `json:"redirectUri,omitempty"`
}

type ConnectResponse struct {
	Success     bool   `json:"success"`
	RedirectURI string `json:"redirectUri"`
	Error       string `json:"error,omitempty"`
}

// CallbackRequest carries the query parameters of the post-authorization
// redirect plus the verified session user.
type CallbackRequest struct {
	UserID          string
	Success         string
	Brokerage       string
	AuthorizationID string
	Redirect        string
	Origin          string
	SessionUserID   string
}

// CreateAssetRequest is the body of POST /api/assets (manual entry forms).
type CreateAssetRequest struct {
	Name             string                 `json:"name"`
	Value            float64                `json:"value"`
	Description      string                 `json:"description,omitempty"`
	Location         string                 `json:"location,omitempty"`
	Category         string                 `json:"category"`
	AcquisitionDate  string                 `json:"acquisitionDate,omitempty"`
	AcquisitionValue float64                `json:"acquisitionValue,omitempty"`
	IsLiability      bool                   `json:"isLiability,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// AssetResponse is one row of GET /api/assets.
type AssetResponse struct {
	ID               int                    `json:"id"`
	Name             string                 `json:"name"`
	Value            float64                `json:"value"`
	Description      string                 `json:"description,omitempty"`
	Location         string                 `json:"location,omitempty"`
	Category         string                 `json:"category"`
	AcquisitionDate  string                 `json:"acquisitionDate,omitempty"`
	AcquisitionValue float64                `json:"acquisitionValue,omitempty"`
	IsLiability      bool                   `json:"isLiability"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// MetalPrice is the normalized quote returned by the metal-prices proxy.
type MetalPrice struct {
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Timestamp int64   `json:"timestamp"`
	Metal     string  `json:"metal"`
}

// VehicleListing is one mock comparable in a vehicle-price estimate.
type VehicleListing struct {
	Price int `json:"price"`
	Miles int `json:"miles"`
}

// VehiclePricing is the mock estimate returned by the car-prices endpoint.
type VehiclePricing struct {
	Make         string           `json:"make"`
	Model        string           `json:"model"`
	Year         int              `json:"year"`
	AveragePrice int              `json:"averagePrice"`
	PriceLow     int              `json:"priceLow"`
	PriceHigh    int              `json:"priceHigh"`
	Listings     []VehicleListing `json:"listings"`
}
