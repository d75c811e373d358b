package controllers

import (
	"context"
	"math"
	"testing"

	"server/src/clients/snaptrade"
	"server/src/models"
	"server/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncFixture struct {
	controller *SyncController
	aggregator *stubAggregator
	conns      *fakeConnectionRepo
	assets     *fakeAssetRepo
	syncLogs   *fakeSyncLogRepo
}

func newSyncFixture() *syncFixture {
	aggregator := newStubAggregator()
	conns := newFakeConnectionRepo()
	assets := newFakeAssetRepo()
	syncLogs := newFakeSyncLogRepo()
	controller := NewSyncController(aggregator, conns, assets, newFakeCategoryRepo(), syncLogs)
	return &syncFixture{
		controller: controller,
		aggregator: aggregator,
		conns:      conns,
		assets:     assets,
		syncLogs:   syncLogs,
	}
}

func position(symbol string, quantity, price, bookValue, totalValue, gainLoss float64) snaptrade.Position {
	return snaptrade.Position{
		Symbol:    snaptrade.Symbol{Symbol: symbol},
		Name:      symbol,
		Quantity:  snaptrade.FlexFloat(quantity),
		Price:     snaptrade.FlexFloat(price),
		BookValue:  snaptrade.FlexFloat(bookValue),
		TotalValue: snaptrade.FlexFloat(totalValue),
		GainLoss:   snaptrade.FlexFloat(gainLoss),
		Currency:   "USD",
	}
}

func TestNormalizeHoldingDerivesMissingFields(t *testing.T) {
	account := snaptrade.Account{ID: "acc-1", Name: "Brokerage", Brokerage: snaptrade.Brokerage{Name: "Alpaca"}}

	// Total value derived from quantity and price when upstream reports zero.
	h := NormalizeHolding(position("AAPL", 10, 175.05, 1500, 0, 0), account)
	assert.InDelta(t, 1750.5, h.TotalValue, 1e-9)
	// Gain/loss derived from total and cost basis when upstream omits it.
	assert.InDelta(t, 250.5, h.GainLoss, 1e-9)
	assert.Equal(t, 1500.0, h.CostBasis)
	assert.Equal(t, "acc-1", h.AccountID)
	assert.Equal(t, "Alpaca", h.BrokerName)

	// Cost basis derived from purchase price when book value is missing.
	p := position("MSFT", 5, 250.15, 0, 0, 0)
	p.PurchasePrice = snaptrade.FlexFloat(220)
	h = NormalizeHolding(p, account)
	assert.InDelta(t, 1100.0, h.CostBasis, 1e-9)

	// Reported values win over derivation.
	h = NormalizeHolding(position("VTI", 20, 125, 2200, 2500, 300), account)
	assert.Equal(t, 2500.0, h.TotalValue)
	assert.Equal(t, 300.0, h.GainLoss)
}

func TestNormalizeHoldingCashDetection(t *testing.T) {
	account := snaptrade.Account{ID: "acc-1"}

	flagged := position("USD", 1, 100, 0, 100, 0)
	flagged.IsCash = true
	assert.True(t, NormalizeHolding(flagged, account).IsCash)

	bySymbol := position("CASH", 1, 100, 0, 100, 0)
	assert.True(t, NormalizeHolding(bySymbol, account).IsCash)

	byName := position("X", 1, 100, 0, 100, 0)
	byName.Name = "Cash Balance"
	assert.True(t, NormalizeHolding(byName, account).IsCash)

	equity := position("AAPL", 1, 100, 0, 100, 0)
	assert.False(t, NormalizeHolding(equity, account).IsCash)
}

func TestApplyPortfolioPercentagesSumsToHundred(t *testing.T) {
	fixture := newSyncFixture()
	holdings := fixture.controller.MockHoldings()
	ApplyPortfolioPercentages(holdings)

	sum := 0.0
	for _, h := range holdings {
		assert.GreaterOrEqual(t, h.PercentOfPortfolio, 0.0)
		sum += h.PercentOfPortfolio
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestSummarize(t *testing.T) {
	fixture := newSyncFixture()
	summary := Summarize(fixture.controller.MockHoldings())

	expectedTotal := 1750.5 + 1250.75 + 2500.75 + 2500.0
	assert.InDelta(t, expectedTotal, summary.TotalValue, 1e-9)
	assert.InDelta(t, 2500.75, summary.CashAvailable, 1e-9)
	assert.InDelta(t, expectedTotal-2500.75, summary.InvestedValue, 1e-9)
	assert.Equal(t, 4, summary.HoldingCount)

	empty := Summarize(nil)
	assert.Zero(t, empty.TotalValue)
	assert.Zero(t, empty.HoldingCount)
}

func TestFetchAccountsFallsBackWithoutConnection(t *testing.T) {
	fixture := newSyncFixture()

	accounts, fellBack := fixture.controller.FetchAccounts(context.Background(), "user-1")
	assert.True(t, fellBack)
	require.Len(t, accounts, 2)
	assert.Equal(t, "mock-account-1", accounts[0].ID)
}

func TestSyncDataDegradesToPartial(t *testing.T) {
	fixture := newSyncFixture()

	response := fixture.controller.SyncData(context.Background(), "user-1")
	assert.True(t, response.Success)
	assert.Equal(t, "partial", response.SyncStatus)
	assert.NotEmpty(t, response.Accounts)
	assert.NotEmpty(t, response.Holdings)
	require.NotNil(t, response.Summary)
	assert.Greater(t, response.Summary.TotalValue, 0.0)

	log, err := fixture.syncLogs.GetLatestByUser(context.Background(), "user-1", snaptrade.BrokerID)
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, "partial", log.Status)
}

func TestSyncDataSucceedsWithLiveConnection(t *testing.T) {
	fixture := newSyncFixture()
	seedConnection(fixture.conns, "user-1", "secret", nil)
	fixture.aggregator.accounts = []snaptrade.Account{
		{ID: "acc-1", Name: "Live Account", Brokerage: snaptrade.Brokerage{Name: "Alpaca"}},
	}
	fixture.aggregator.positions = map[string][]snaptrade.Position{
		"acc-1": {position("AAPL", 10, 175.05, 1500, 0, 0)},
	}

	response := fixture.controller.SyncData(context.Background(), "user-1")
	assert.Equal(t, "success", response.SyncStatus)
	require.Len(t, response.Holdings, 1)
	assert.Equal(t, "AAPL", response.Holdings[0].Symbol)
	assert.InDelta(t, 100.0, response.Holdings[0].PercentOfPortfolio, 1e-9)
}

func TestRefreshAssetsRequiresConnectionAndAuthorization(t *testing.T) {
	fixture := newSyncFixture()

	_, err := fixture.controller.RefreshAssets(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, 404, utils.ErrorStatus(err))

	seedConnection(fixture.conns, "user-1", "secret", nil)
	_, err = fixture.controller.RefreshAssets(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, 404, utils.ErrorStatus(err))
}

func TestRefreshAssetsReplacesSyncedRows(t *testing.T) {
	fixture := newSyncFixture()
	seedConnection(fixture.conns, "user-1", "secret", map[string]interface{}{"authorization_id": "auth-1"})

	fixture.aggregator.accounts = []snaptrade.Account{
		{ID: "acc-1", Name: "Live Account", Brokerage: snaptrade.Brokerage{Name: "Alpaca"}},
	}
	noSymbol := position("", 3, 10, 0, 0, 0)
	fixture.aggregator.positions = map[string][]snaptrade.Position{
		"acc-1": {
			position("AAPL", 10, 175.05, 1500, 0, 0),
			position("MSFT", 5, 250.15, 1100, 0, 0),
			noSymbol,
		},
	}
	fixture.aggregator.balances = map[string][]snaptrade.Balance{
		"acc-1": {
			{Cash: true, Type: "CASH", Amount: snaptrade.FlexFloat(2500.75), Currency: "USD"},
			{Cash: true, Type: "CASH", Amount: snaptrade.FlexFloat(0), Currency: "EUR"},
		},
	}

	// Stale synced rows and one manual row before the pass.
	seedSyncedAsset(fixture, "user-1", "OLD-1")
	seedSyncedAsset(fixture, "user-1", "OLD-2")
	manual := seedManualAsset(fixture, "user-1", "House")

	result, err := fixture.controller.RefreshAssets(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Accounts)
	assert.Equal(t, 3, result.AssetCount)

	rows, err := fixture.assets.GetAllByUser(context.Background(), "user-1")
	require.NoError(t, err)

	var synced, manualCount int
	symbols := map[string]bool{}
	for _, row := range rows {
		if row.Source() == snaptrade.BrokerID {
			synced++
			symbol, _ := row.Metadata["symbol"].(string)
			symbols[symbol] = true
			assert.Equal(t, 2, row.CategoryID)
		} else {
			manualCount++
			assert.Equal(t, manual.ID, row.ID)
		}
	}
	assert.Equal(t, 3, synced)
	assert.Equal(t, 1, manualCount)
	assert.True(t, symbols["AAPL"])
	assert.True(t, symbols["MSFT"])
	assert.True(t, symbols["CASH"])
	assert.False(t, symbols["OLD-1"])

	// Position rows carry the derived purchase price and quantity.
	for _, row := range rows {
		if row.Source() != snaptrade.BrokerID {
			continue
		}
		if symbol, _ := row.Metadata["symbol"].(string); symbol == "AAPL" {
			assert.InDelta(t, 1750.5, row.Value, 1e-9)
			assert.InDelta(t, 150.0, row.Metadata["purchase_price"].(float64), 1e-9)
			assert.Equal(t, "stock", row.Metadata["asset_type"])
		}
	}
}

func TestRefreshAssetsInteractiveBrokersCashQuirk(t *testing.T) {
	fixture := newSyncFixture()
	seedConnection(fixture.conns, "user-1", "secret", map[string]interface{}{"authorization_id": "auth-1"})

	fixture.aggregator.accounts = []snaptrade.Account{
		{ID: "acc-1", Name: "IB Account", Brokerage: snaptrade.Brokerage{Name: "Interactive Brokers"}},
	}
	fixture.aggregator.positions = map[string][]snaptrade.Position{"acc-1": {}}
	// IB reports cash without the cash flag; positive amounts still persist.
	fixture.aggregator.balances = map[string][]snaptrade.Balance{
		"acc-1": {
			{Cash: false, Type: "BUYING_POWER", Amount: snaptrade.FlexFloat(1234.5), Currency: "USD"},
			{Cash: false, Type: "BUYING_POWER", Amount: snaptrade.FlexFloat(-50), Currency: "USD"},
		},
	}

	result, err := fixture.controller.RefreshAssets(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.AssetCount)

	rows, _ := fixture.assets.GetAllByUser(context.Background(), "user-1")
	require.Len(t, rows, 1)
	assert.Equal(t, "Cash (USD)", rows[0].Name)
	assert.InDelta(t, 1234.5, rows[0].Value, 1e-9)
	assert.Equal(t, "cash", rows[0].Metadata["asset_type"])
	assert.Equal(t, "BUYING_POWER", rows[0].Metadata["balance_type"])
}

func TestRefreshAssetsPropagatesAuthorizationFailure(t *testing.T) {
	fixture := newSyncFixture()
	seedConnection(fixture.conns, "user-1", "secret", map[string]interface{}{"authorization_id": "auth-1"})
	fixture.aggregator.refreshErr = errAggregatorDown

	seedSyncedAsset(fixture, "user-1", "OLD-1")

	_, err := fixture.controller.RefreshAssets(context.Background(), "user-1")
	require.Error(t, err)

	// Nothing was purged before the failure.
	rows, _ := fixture.assets.GetAllByUser(context.Background(), "user-1")
	assert.Len(t, rows, 1)
}

func TestGetBalanceFindsCashHolding(t *testing.T) {
	fixture := newSyncFixture()

	balance, err := fixture.controller.GetBalance(context.Background(), "user-1", "mock-account-1")
	require.NoError(t, err)
	assert.InDelta(t, 2500.75, balance.Cash, 1e-9)
	assert.InDelta(t, 2500.75, balance.BuyingPower, 1e-9)
	assert.Equal(t, "USD", balance.Currency)

	// No cash line in the retirement account.
	balance, err = fixture.controller.GetBalance(context.Background(), "user-1", "mock-account-2")
	require.NoError(t, err)
	assert.Zero(t, balance.Cash)
}

func TestGetActivitiesFallsBackToMock(t *testing.T) {
	fixture := newSyncFixture()

	activities, err := fixture.controller.GetActivities(context.Background(), "user-1", "mock-account-1", "", "")
	require.NoError(t, err)
	require.Len(t, activities, 4)
	for _, a := range activities {
		assert.False(t, math.IsNaN(a.Amount))
		assert.NotEmpty(t, a.Date)
	}
}

func seedSyncedAsset(fixture *syncFixture, userID, symbol string) {
	_ = fixture.assets.Create(context.Background(), &models.Asset{
		UserID: userID,
		Name:   symbol,
		Value:  100,
		Metadata: map[string]interface{}{
			"symbol": symbol,
			"source": snaptrade.BrokerID,
		},
	})
}

func seedManualAsset(fixture *syncFixture, userID, name string) *models.Asset {
	asset := &models.Asset{UserID: userID, Name: name, Value: 350000}
	_ = fixture.assets.Create(context.Background(), asset)
	return asset
}
