package snaptrade

import (
	"context"
	"time"
)

// mockClient is the deterministic in-process aggregator used when no vendor
// credentials are configured and as the fallback dataset when the real
// vendor fails. The datasets are fixed so repeated syncs stay idempotent.
type mockClient struct{}

func NewMockClient() Client {
	return &mockClient{}
}

func (c *mockClient) RegisterUser(ctx context.Context, userID string) (*RegisterUserResponse, error) {
	return &RegisterUserResponse{
		UserID:     userID,
		UserSecret: "mock-user-secret",
	}, nil
}

func (c *mockClient) DeleteUser(ctx context.Context, userID, userSecret string) error {
	return nil
}

func (c *mockClient) LoginUser(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	redirect := req.CustomRedirect
	if redirect == "" {
		redirect = DefaultPortalURL + "?mockConnection=true"
	}
	return &LoginResponse{RedirectURI: redirect}, nil
}

func (c *mockClient) RemoveConnection(ctx context.Context, userID, userSecret, authorizationID string) error {
	return nil
}

func (c *mockClient) RefreshAuthorization(ctx context.Context, userID, userSecret, authorizationID string) error {
	return nil
}

func (c *mockClient) ListAccounts(ctx context.Context, userID, userSecret string) ([]Account, error) {
	return MockAccounts(), nil
}

func (c *mockClient) GetPositions(ctx context.Context, userID, userSecret, accountID string) ([]Position, error) {
	var positions []Position
	for _, p := range mockPositions() {
		if p.account == accountID {
			positions = append(positions, p.Position)
		}
	}
	return positions, nil
}

func (c *mockClient) GetBalances(ctx context.Context, userID, userSecret, accountID string) ([]Balance, error) {
	if accountID != "mock-account-1" {
		return nil, nil
	}
	return []Balance{
		{Cash: true, Type: "CASH", Amount: 2500.75, Currency: "USD"},
	}, nil
}

func (c *mockClient) GetActivities(ctx context.Context, userID, userSecret, accountID, startDate, endDate string) ([]Activity, error) {
	return MockActivities(), nil
}

// MockAccounts is the fixed account list served in mock mode and used by
// the sync engine as its fallback dataset.
func MockAccounts() []Account {
	return []Account{
		{
			ID:           "mock-account-1",
			Name:         "Mock Investment Account",
			Number:       "*****1234",
			Type:         "INVESTMENT",
			Brokerage:    Brokerage{ID: "mock-broker-1", Name: "Mock Broker"},
			ConnectionID: "mock-connection-1",
			TotalValue:   25000,
			GainLoss:     1500,
		},
		{
			ID:           "mock-account-2",
			Name:         "Mock Retirement Account",
			Number:       "*****5678",
			Type:         "RETIREMENT",
			Brokerage:    Brokerage{ID: "mock-broker-1", Name: "Mock Broker"},
			ConnectionID: "mock-connection-1",
			TotalValue:   75000,
			GainLoss:     3200,
		},
	}
}

type mockPosition struct {
	Position
	account string
}

// mockPositions is the fixed position list backing the mock holdings
// dataset: two equities and one cash line in the first account, one ETF in
// the second.
func mockPositions() []mockPosition {
	return []mockPosition{
		{
			account: "mock-account-1",
			Position: Position{
				Symbol:        Symbol{Symbol: "AAPL", Description: "Apple Inc."},
				Name:          "Apple Inc.",
				Quantity:      10,
				Price:         175.05,
				TotalValue:    1750.5,
				GainLoss:      250.5,
				PurchasePrice: 150.0,
				BookValue:     1500.0,
				Currency:      "USD",
			},
		},
		{
			account: "mock-account-1",
			Position: Position{
				Symbol:        Symbol{Symbol: "MSFT", Description: "Microsoft Corporation"},
				Name:          "Microsoft Corporation",
				Quantity:      5,
				Price:         250.15,
				TotalValue:    1250.75,
				GainLoss:      150.75,
				PurchasePrice: 220.0,
				BookValue:     1100.0,
				Currency:      "USD",
			},
		},
		{
			account: "mock-account-1",
			Position: Position{
				Symbol:        Symbol{Symbol: "CASH", Description: "Cash Balance"},
				Name:          "Cash Balance",
				Quantity:      1,
				Price:         2500.75,
				TotalValue:    2500.75,
				GainLoss:      0,
				PurchasePrice: 2500.75,
				BookValue:     2500.75,
				Currency:      "USD",
				IsCash:        true,
			},
		},
		{
			account: "mock-account-2",
			Position: Position{
				Symbol:        Symbol{Symbol: "VTI", Description: "Vanguard Total Stock Market ETF"},
				Name:          "Vanguard Total Stock Market ETF",
				Quantity:      20,
				Price:         125.0,
				TotalValue:    2500.0,
				GainLoss:      300.0,
				PurchasePrice: 110.0,
				BookValue:     2200.0,
				Currency:      "USD",
			},
		},
	}
}

// MockActivities returns the fixed activity feed, dated relative to now so
// the dashboard's recent-activity widget always has content in range.
func MockActivities() []Activity {
	day := func(daysAgo int) string {
		return time.Now().AddDate(0, 0, -daysAgo).Format("2006-01-02")
	}
	return []Activity{
		{
			ID:          "act1",
			Date:        day(2),
			Type:        "buy",
			Description: "Purchased shares",
			Symbol:      Symbol{Symbol: "AAPL"},
			Currency:    "USD",
			Amount:      1250.75,
			Quantity:    5,
			Price:       250.15,
		},
		{
			ID:          "act2",
			Date:        day(7),
			Type:        "dividend",
			Description: "Dividend payment",
			Symbol:      Symbol{Symbol: "MSFT"},
			Currency:    "USD",
			Amount:      125.5,
		},
		{
			ID:          "act3",
			Date:        day(14),
			Type:        "sell",
			Description: "Sold shares",
			Symbol:      Symbol{Symbol: "TSLA"},
			Currency:    "USD",
			Amount:      750.25,
			Quantity:    2,
			Price:       375.12,
		},
		{
			ID:          "act4",
			Date:        day(30),
			Type:        "deposit",
			Description: "Account deposit",
			Currency:    "USD",
			Amount:      5000,
		},
	}
}
