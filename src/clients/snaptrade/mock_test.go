package snaptrade

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClientAccounts(t *testing.T) {
	client := NewMockClient()

	accounts, err := client.ListAccounts(context.Background(), "user-1", "secret")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "mock-account-1", accounts[0].ID)
	assert.Equal(t, "Mock Investment Account", accounts[0].Name)
	assert.Equal(t, 25000.0, accounts[0].TotalValue.Float64())
	assert.Equal(t, "mock-account-2", accounts[1].ID)
	assert.Equal(t, "RETIREMENT", accounts[1].Type)
}

func TestMockClientPositionsByAccount(t *testing.T) {
	client := NewMockClient()

	first, err := client.GetPositions(context.Background(), "user-1", "secret", "mock-account-1")
	require.NoError(t, err)
	require.Len(t, first, 3)

	var symbols []string
	for _, p := range first {
		symbols = append(symbols, p.Symbol.Symbol)
	}
	assert.ElementsMatch(t, []string{"AAPL", "MSFT", "CASH"}, symbols)

	second, err := client.GetPositions(context.Background(), "user-1", "secret", "mock-account-2")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "VTI", second[0].Symbol.Symbol)

	none, err := client.GetPositions(context.Background(), "user-1", "secret", "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMockClientLoginEchoesRedirect(t *testing.T) {
	client := NewMockClient()

	login, err := client.LoginUser(context.Background(), &LoginRequest{
		UserID: "user-1", UserSecret: "secret", CustomRedirect: "https://example.com/back",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/back", login.RedirectURI)

	login, err = client.LoginUser(context.Background(), &LoginRequest{UserID: "user-1"})
	require.NoError(t, err)
	assert.Contains(t, login.RedirectURI, DefaultPortalURL)
}

func TestMockClientBalances(t *testing.T) {
	client := NewMockClient()

	balances, err := client.GetBalances(context.Background(), "user-1", "secret", "mock-account-1")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Cash)
	assert.Equal(t, 2500.75, balances[0].Amount.Float64())

	balances, err = client.GetBalances(context.Background(), "user-1", "secret", "mock-account-2")
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestMockClientActivitiesDatedWithinRange(t *testing.T) {
	client := NewMockClient()

	activities, err := client.GetActivities(context.Background(), "user-1", "secret", "mock-account-1", "", "")
	require.NoError(t, err)
	require.Len(t, activities, 4)
	assert.Equal(t, "buy", activities[0].Type)
	assert.Equal(t, "deposit", activities[3].Type)
}

func TestFlexFloatDecoding(t *testing.T) {
	var p Position
	payload := []byte(`{
		"symbol": {"symbol": "AAPL", "description": "Apple Inc."},
		"quantity": "10",
		"price": 175.05,
		"bookValue": "",
		"totalValue": null
	}`)
	require.NoError(t, json.Unmarshal(payload, &p))
	assert.Equal(t, 10.0, p.Quantity.Float64())
	assert.Equal(t, 175.05, p.Price.Float64())
	assert.Equal(t, 0.0, p.BookValue.Float64())
	assert.Equal(t, 0.0, p.TotalValue.Float64())
	assert.Equal(t, "AAPL", p.Symbol.Symbol)
}

func TestSymbolDecodesBareString(t *testing.T) {
	var p Position
	require.NoError(t, json.Unmarshal([]byte(`{"symbol": "MSFT", "quantity": 5}`), &p))
	assert.Equal(t, "MSFT", p.Symbol.Symbol)
}
