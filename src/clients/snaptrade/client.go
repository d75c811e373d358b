package snaptrade

import (
	"context"

	"server/src/config"
)

// BrokerID is the broker_connections.broker_id value for this aggregator.
const BrokerID = "snaptrade"

// DefaultPortalURL is the standing fallback redirect target when no portal
// URL could be obtained from the aggregator.
const DefaultPortalURL = "https://app.snaptrade.com/connect"

// Client is the aggregator surface the server depends on. Two
// implementations exist: the REST client and the deterministic mock.
// Which one a caller gets is decided once, at construction, from config.
type Client interface {
	RegisterUser(ctx context.Context, userID string) (*RegisterUserResponse, error)
	// DeleteUser removes the aggregator identity. userSecret may be empty;
	// the aggregator accepts deletion without it for orphaned identities.
	DeleteUser(ctx context.Context, userID, userSecret string) error
	LoginUser(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	RemoveConnection(ctx context.Context, userID, userSecret, authorizationID string) error
	RefreshAuthorization(ctx context.Context, userID, userSecret, authorizationID string) error
	ListAccounts(ctx context.Context, userID, userSecret string) ([]Account, error)
	GetPositions(ctx context.Context, userID, userSecret, accountID string) ([]Position, error)
	GetBalances(ctx context.Context, userID, userSecret, accountID string) ([]Balance, error)
	GetActivities(ctx context.Context, userID, userSecret, accountID, startDate, endDate string) ([]Activity, error)
}

// NewClient builds the aggregator client the configuration asks for.
func NewClient(cfg *config.Config) Client {
	st := cfg.ExternalClients.SnapTrade
	if st.UseMock() {
		return NewMockClient()
	}
	return NewAPIClient(st.BaseURL, st.ClientID, st.ConsumerKey)
}
