package controllers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"server/src/clients/snaptrade"
	"server/src/models"
	"server/src/repositories"
	"server/src/schemas"
	"server/src/utils"
)

// investmentsCategorySlug is the asset category every synced brokerage row
// lands in.
const investmentsCategorySlug = "investments"

type SyncControllerI interface {
	FetchAccounts(ctx context.Context, userID string) ([]schemas.BrokerAccount, bool)
	FetchHoldings(ctx context.Context, userID, accountID string) ([]schemas.BrokerHolding, bool)
	SyncData(ctx context.Context, userID string) *schemas.SyncResponse
	RefreshAssets(ctx context.Context, userID string) (*schemas.RefreshResult, error)
	GetBalance(ctx context.Context, userID, accountID string) (*schemas.AccountBalance, error)
	GetActivities(ctx context.Context, userID, accountID, startDate, endDate string) ([]schemas.Activity, error)
	MockHoldings() []schemas.BrokerHolding
	SampleHoldings() []schemas.BrokerHolding
}

type SyncController struct {
	Aggregator  snaptrade.Client
	Connections repositories.BrokerConnectionRepository
	Assets      repositories.AssetRepository
	Categories  repositories.AssetCategoryRepository
	SyncLogs    repositories.SyncLogRepository
}

func NewSyncController(aggregator snaptrade.Client,
	connections repositories.BrokerConnectionRepository,
	assets repositories.AssetRepository,
	categories repositories.AssetCategoryRepository,
	syncLogs repositories.SyncLogRepository) *SyncController {
	return &SyncController{
		Aggregator:  aggregator,
		Connections: connections,
		Assets:      assets,
		Categories:  categories,
		SyncLogs:    syncLogs,
	}
}

// liveConnection returns the user's connection when it carries a real,
// usable secret. A nil result means callers must serve mock data.
func (c *SyncController) liveConnection(ctx context.Context, userID string) *models.BrokerConnection {
	conn, err := c.Connections.GetByUserAndBroker(ctx, userID, snaptrade.BrokerID)
	if err != nil || conn == nil || conn.APISecretEncrypted == "" || conn.IsMock() {
		return nil
	}
	return conn
}

// FetchAccounts lists the user's aggregator accounts, falling back to the
// fixed mock list on any failure. The second return reports whether the
// fallback was used.
func (c *SyncController) FetchAccounts(ctx context.Context, userID string) ([]schemas.BrokerAccount, bool) {
	logger := loggerFor(ctx)

	conn := c.liveConnection(ctx, userID)
	if conn == nil {
		return toBrokerAccounts(snaptrade.MockAccounts()), true
	}

	accounts, err := c.Aggregator.ListAccounts(ctx, userID, conn.APISecretEncrypted)
	if err != nil || len(accounts) == 0 {
		logger.WithField("user_id", userID).WithError(err).
			Warn("account listing failed, serving mock accounts")
		return toBrokerAccounts(snaptrade.MockAccounts()), true
	}
	return toBrokerAccounts(accounts), false
}

// FetchHoldings collects positions across the user's accounts, normalized
// for display. Pass accountID to restrict to one account. Per-account
// failures are skipped; an empty result falls back to mock holdings.
func (c *SyncController) FetchHoldings(ctx context.Context, userID, accountID string) ([]schemas.BrokerHolding, bool) {
	logger := loggerFor(ctx)

	conn := c.liveConnection(ctx, userID)
	if conn == nil {
		return filterHoldings(c.MockHoldings(), accountID), true
	}

	accounts, err := c.Aggregator.ListAccounts(ctx, userID, conn.APISecretEncrypted)
	if err != nil {
		logger.WithField("user_id", userID).WithError(err).
			Warn("account listing failed, serving mock holdings")
		return filterHoldings(c.MockHoldings(), accountID), true
	}

	var holdings []schemas.BrokerHolding
	for _, account := range accounts {
		if accountID != "" && account.ID != accountID {
			continue
		}
		positions, err := c.Aggregator.GetPositions(ctx, userID, conn.APISecretEncrypted, account.ID)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"user_id":    userID,
				"account_id": account.ID,
			}).WithError(err).Warn("position fetch failed, skipping account")
			continue
		}
		for _, position := range positions {
			holdings = append(holdings, NormalizeHolding(position, account))
		}
	}

	if len(holdings) == 0 {
		return filterHoldings(c.MockHoldings(), accountID), true
	}
	ApplyPortfolioPercentages(holdings)
	return holdings, false
}

// NormalizeHolding coerces one aggregator position into a display holding,
// deriving the fields upstream brokerages report inconsistently.
func NormalizeHolding(position snaptrade.Position, account snaptrade.Account) schemas.BrokerHolding {
	quantity := position.Quantity.Float64()
	price := position.UnitPrice()
	totalValue := position.TotalValue.Float64()
	if totalValue == 0 && quantity > 0 && price > 0 {
		totalValue = quantity * price
	}
	costBasis := position.BookValue.Float64()
	if costBasis == 0 && position.PurchasePrice != 0 && quantity > 0 {
		costBasis = position.PurchasePrice.Float64() * quantity
	}
	gainLoss := position.GainLoss.Float64()
	if gainLoss == 0 && totalValue != 0 && costBasis != 0 {
		gainLoss = totalValue - costBasis
	}

	name := position.Name
	if name == "" {
		name = position.Symbol.Description
	}
	currency := position.Currency
	if currency == "" {
		currency = "USD"
	}

	return schemas.BrokerHolding{
		Symbol:        position.Symbol.Symbol,
		Name:          name,
		Quantity:      quantity,
		PricePerShare: price,
		TotalValue:    totalValue,
		GainLoss:      gainLoss,
		PurchasePrice: position.PurchasePrice.Float64(),
		CostBasis:     costBasis,
		AccountID:     account.ID,
		AccountName:   account.Name,
		BrokerName:    account.Brokerage.Name,
		Currency:      currency,
		IsCash:        isCashHolding(position.IsCash, position.Symbol.Symbol, name),
	}
}

func isCashHolding(flagged bool, symbol, name string) bool {
	return flagged || symbol == "CASH" || strings.Contains(name, "Cash")
}

// ApplyPortfolioPercentages recomputes each holding's share of the grand
// total. Percentages are derived on every fetch, never stored.
func ApplyPortfolioPercentages(holdings []schemas.BrokerHolding) {
	total := 0.0
	for i := range holdings {
		total += holdings[i].TotalValue
	}
	for i := range holdings {
		if total > 0 {
			holdings[i].PercentOfPortfolio = holdings[i].TotalValue / total * 100
		} else {
			holdings[i].PercentOfPortfolio = 0
		}
	}
}

// Summarize aggregates holdings into the dashboard's headline numbers.
func Summarize(holdings []schemas.BrokerHolding) *schemas.PortfolioSummary {
	summary := &schemas.PortfolioSummary{HoldingCount: len(holdings)}
	for _, h := range holdings {
		summary.TotalValue += h.TotalValue
		if h.IsCash {
			summary.CashAvailable += h.TotalValue
		}
	}
	summary.InvestedValue = summary.TotalValue - summary.CashAvailable
	return summary
}

// SyncData is the non-persisting sync: fetch everything, normalize, report.
// Failures along the way degrade the status to "partial" with mock data
// standing in, so the dashboard always has something to render.
func (c *SyncController) SyncData(ctx context.Context, userID string) *schemas.SyncResponse {
	logger := loggerFor(ctx)

	status := "success"
	message := "Data synchronized successfully"

	accounts, accountsFellBack := c.FetchAccounts(ctx, userID)
	if accountsFellBack {
		status = "partial"
		message = "Could not fetch all account information"
	}
	holdings, holdingsFellBack := c.FetchHoldings(ctx, userID, "")
	if holdingsFellBack {
		status = "partial"
		message = "Could not fetch all holdings information"
	}

	if err := c.SyncLogs.Create(ctx, &models.SyncLog{
		UserID:     userID,
		Source:     snaptrade.BrokerID,
		Status:     status,
		AssetCount: len(holdings),
		SyncDate:   time.Now().UTC(),
	}); err != nil {
		logger.WithField("user_id", userID).WithError(err).Warn("could not record sync log")
	}

	return &schemas.SyncResponse{
		Success:     true,
		SyncStatus:  status,
		SyncMessage: message,
		Accounts:    accounts,
		Holdings:    holdings,
		Summary:     Summarize(holdings),
	}
}

// RefreshAssets is the persisting sync: refresh the brokerage authorization,
// then replace every previously synced asset row with freshly fetched
// positions and cash balances. Delete-then-insert keeps each pass a full
// replace, never a merge.
func (c *SyncController) RefreshAssets(ctx context.Context, userID string) (*schemas.RefreshResult, error) {
	logger := loggerFor(ctx)

	conn, err := c.Connections.GetByUserAndBroker(ctx, userID, snaptrade.BrokerID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, utils.NotFound("No brokerage connection found")
	}
	authorizationID := conn.AuthorizationID()
	if authorizationID == "" {
		return nil, utils.NotFound("No authorization ID found")
	}
	secret := conn.APISecretEncrypted

	if err := c.Aggregator.RefreshAuthorization(ctx, userID, secret, authorizationID); err != nil {
		return nil, err
	}

	category, err := c.Categories.GetBySlug(ctx, investmentsCategorySlug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, utils.NotFound("Investment category not found")
	}

	accounts, _ := c.FetchAccounts(ctx, userID)

	deleted, err := c.Assets.DeleteBySource(ctx, userID, snaptrade.BrokerID)
	if err != nil {
		return nil, err
	}
	logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"deleted": deleted,
	}).Info("purged previously synced assets")

	inserted := 0
	for _, account := range accounts {
		positions, err := c.Aggregator.GetPositions(ctx, userID, secret, account.ID)
		if err != nil {
			logger.WithField("account_id", account.ID).WithError(err).
				Warn("position fetch failed during refresh, skipping account")
		}
		for _, position := range positions {
			if position.Symbol.Symbol == "" {
				continue
			}
			if err := c.insertPositionAsset(ctx, userID, category.ID, account, position); err != nil {
				return nil, err
			}
			inserted++
		}

		balances, err := c.Aggregator.GetBalances(ctx, userID, secret, account.ID)
		if err != nil {
			logger.WithField("account_id", account.ID).WithError(err).
				Warn("balance fetch failed during refresh, skipping account")
		}
		for _, balance := range balances {
			if !persistableCash(balance, account.Brokerage.Name) {
				continue
			}
			if err := c.insertCashAsset(ctx, userID, category.ID, account, balance); err != nil {
				return nil, err
			}
			inserted++
		}
	}

	if err := c.SyncLogs.Create(ctx, &models.SyncLog{
		UserID:     userID,
		Source:     snaptrade.BrokerID,
		Status:     "success",
		AssetCount: inserted,
		SyncDate:   time.Now().UTC(),
	}); err != nil {
		logger.WithField("user_id", userID).WithError(err).Warn("could not record sync log")
	}

	return &schemas.RefreshResult{
		Success:    true,
		Message:    "Brokerage data refreshed successfully",
		Accounts:   len(accounts),
		AssetCount: inserted,
	}, nil
}

// persistableCash decides whether a balance line becomes an asset row.
// Interactive Brokers reports cash without the cash flag, so any positive
// amount from those accounts counts.
func persistableCash(balance snaptrade.Balance, brokerName string) bool {
	amount := balance.Amount.Float64()
	isCash := balance.Cash || balance.Type == "CASH"
	if isCash && amount > 0 {
		return true
	}
	return strings.Contains(strings.ToUpper(brokerName), "INTERACTIVE") && amount > 0
}

func (c *SyncController) insertPositionAsset(ctx context.Context, userID string, categoryID int,
	account schemas.BrokerAccount, position snaptrade.Position) error {
	quantity := position.Quantity.Float64()
	price := position.UnitPrice()
	bookValue := position.BookValue.Float64()
	totalValue := quantity * price

	purchasePrice := 0.0
	if quantity > 0 {
		purchasePrice = bookValue / quantity
	}
	acquisitionValue := bookValue
	if acquisitionValue == 0 {
		acquisitionValue = totalValue
	}
	currency := position.Currency
	if currency == "" {
		currency = "USD"
	}
	location := account.Name
	if location == "" {
		location = "Brokerage"
	}
	accountName := account.Name
	if accountName == "" {
		accountName = "Investment Account"
	}
	brokerName := account.Brokerage.Name
	if brokerName == "" {
		brokerName = "Brokerage"
	}

	symbol := position.Symbol.Symbol
	return c.Assets.Create(ctx, &models.Asset{
		UserID:      userID,
		Name:        symbol,
		Value:       totalValue,
		Description: formatQuantity(quantity) + " shares of " + symbol,
		Location:    location,

		AcquisitionDate:  time.Now().UTC(),
		AcquisitionValue: acquisitionValue,
		CategoryID:       categoryID,
		Metadata: map[string]interface{}{
			"symbol":          symbol,
			"price_per_share": price,
			"purchase_price":  purchasePrice,
			"quantity":        quantity,
			"currency":        currency,
			"asset_type":      "stock",
			"source":          snaptrade.BrokerID,
			"account_id":      account.ID,
			"account_name":    accountName,
			"broker_name":     brokerName,
		},
	})
}

func (c *SyncController) insertCashAsset(ctx context.Context, userID string, categoryID int,
	account schemas.BrokerAccount, balance snaptrade.Balance) error {
	amount := balance.Amount.Float64()
	currency := balance.Currency
	if currency == "" {
		currency = "USD"
	}
	balanceType := balance.Type
	if balanceType == "" {
		balanceType = "CASH"
	}
	accountName := account.Name
	if accountName == "" {
		accountName = "Investment Account"
	}
	brokerName := account.Brokerage.Name
	if brokerName == "" {
		brokerName = "Brokerage"
	}

	return c.Assets.Create(ctx, &models.Asset{
		UserID:           userID,
		Name:             fmt.Sprintf("Cash (%s)", currency),
		Value:            amount,
		Description:      "Cash balance in " + accountName,
		Location:         accountName,
		AcquisitionDate:  time.Now().UTC(),
		AcquisitionValue: amount,
		CategoryID:       categoryID,
		Metadata: map[string]interface{}{
			"symbol":          "CASH",
			"price_per_share": amount,
			"purchase_price":  amount,
			"quantity":        1,
			"currency":        currency,
			"asset_type":      "cash",
			"source":          snaptrade.BrokerID,
			"account_id":      account.ID,
			"account_name":    accountName,
			"broker_name":     brokerName,
			"balance_type":    balanceType,
		},
	})
}

// GetBalance extracts the cash position from one account's holdings.
func (c *SyncController) GetBalance(ctx context.Context, userID, accountID string) (*schemas.AccountBalance, error) {
	holdings, _ := c.FetchHoldings(ctx, userID, accountID)
	balance := &schemas.AccountBalance{Currency: "USD"}
	for _, h := range holdings {
		if h.IsCash {
			balance.Cash = h.TotalValue
			balance.BuyingPower = h.TotalValue
			balance.Currency = h.Currency
			break
		}
	}
	return balance, nil
}

// GetActivities returns the account's transaction feed, defaulting to the
// trailing 90 days. Aggregator failures fall back to the mock feed.
func (c *SyncController) GetActivities(ctx context.Context, userID, accountID, startDate, endDate string) ([]schemas.Activity, error) {
	logger := loggerFor(ctx)

	if startDate == "" {
		startDate = time.Now().AddDate(0, 0, -90).Format("2006-01-02")
	}
	if endDate == "" {
		endDate = time.Now().Format("2006-01-02")
	}

	conn := c.liveConnection(ctx, userID)
	if conn == nil {
		return toActivities(snaptrade.MockActivities()), nil
	}

	activities, err := c.Aggregator.GetActivities(ctx, userID, conn.APISecretEncrypted, accountID, startDate, endDate)
	if err != nil {
		logger.WithField("user_id", userID).WithError(err).
			Warn("activity fetch failed, serving mock activities")
		return toActivities(snaptrade.MockActivities()), nil
	}
	return toActivities(activities), nil
}

// MockHoldings is the fixed holdings dataset served when no live connection
// exists, mirroring the mock accounts.
func (c *SyncController) MockHoldings() []schemas.BrokerHolding {
	return []schemas.BrokerHolding{
		{
			Symbol: "AAPL", Name: "Apple Inc.",
			Quantity: 10, PricePerShare: 175.05, TotalValue: 1750.5,
			GainLoss: 250.5, PurchasePrice: 150.0, CostBasis: 1500.0,
			PercentOfPortfolio: 7.0,
			AccountID:          "mock-account-1", AccountName: "Mock Investment Account",
			BrokerName: "Mock Broker", Currency: "USD",
		},
		{
			Symbol: "MSFT", Name: "Microsoft Corporation",
			Quantity: 5, PricePerShare: 250.15, TotalValue: 1250.75,
			GainLoss: 150.75, PurchasePrice: 220.0, CostBasis: 1100.0,
			PercentOfPortfolio: 5.0,
			AccountID:          "mock-account-1", AccountName: "Mock Investment Account",
			BrokerName: "Mock Broker", Currency: "USD",
		},
		{
			Symbol: "CASH", Name: "Cash Balance",
			Quantity: 1, PricePerShare: 2500.75, TotalValue: 2500.75,
			PurchasePrice: 2500.75, CostBasis: 2500.75,
			PercentOfPortfolio: 10.0, IsCash: true,
			AccountID: "mock-account-1", AccountName: "Mock Investment Account",
			BrokerName: "Mock Broker", Currency: "USD",
		},
		{
			Symbol: "VTI", Name: "Vanguard Total Stock Market ETF",
			Quantity: 20, PricePerShare: 125.0, TotalValue: 2500.0,
			GainLoss: 300.0, PurchasePrice: 110.0, CostBasis: 2200.0,
			PercentOfPortfolio: 3.33,
			AccountID:          "mock-account-2", AccountName: "Mock Retirement Account",
			BrokerName: "Mock Broker", Currency: "USD",
		},
	}
}

// SampleHoldings backs the demo endpoint the dashboard's integration page
// uses. Distinct from the sync fallback dataset.
func (c *SyncController) SampleHoldings() []schemas.BrokerHolding {
	return []schemas.BrokerHolding{
		{
			Symbol: "SCHD", Name: "Schwab US Dividend Equity ETF",
			Quantity: 25, PricePerShare: 27.81, TotalValue: 695.25,
			GainLoss: 45.25, PurchasePrice: 26.0, CostBasis: 650.0,
			PercentOfPortfolio: 46.35,
			AccountID:          "mock-account-1", AccountName: "Retirement Account",
			BrokerName: "Schwab", Currency: "USD",
		},
		{
			Symbol: "XLV", Name: "Health Care Select Sector SPDR Fund",
			Quantity: 5, PricePerShare: 146.45, TotalValue: 732.25,
			GainLoss: 32.25, PurchasePrice: 140.0, CostBasis: 700.0,
			PercentOfPortfolio: 48.82,
			AccountID:          "mock-account-1", AccountName: "Retirement Account",
			BrokerName: "Schwab", Currency: "USD",
		},
		{
			Symbol: "CASH", Name: "Cash (USD)",
			Quantity: 1, PricePerShare: 72.5, TotalValue: 72.5,
			PurchasePrice: 72.5, CostBasis: 72.5,
			PercentOfPortfolio: 4.83, IsCash: true,
			AccountID: "mock-account-1", AccountName: "Retirement Account",
			BrokerName: "Schwab", Currency: "USD",
		},
	}
}

func filterHoldings(holdings []schemas.BrokerHolding, accountID string) []schemas.BrokerHolding {
	if accountID == "" {
		return holdings
	}
	var filtered []schemas.BrokerHolding
	for _, h := range holdings {
		if h.AccountID == accountID {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

func toBrokerAccounts(accounts []snaptrade.Account) []schemas.BrokerAccount {
	out := make([]schemas.BrokerAccount, len(accounts))
	for i, a := range accounts {
		out[i] = schemas.BrokerAccount{
			ID:           a.ID,
			Name:         a.Name,
			Number:       a.Number,
			Type:         a.Type,
			Brokerage:    schemas.Brokerage{ID: a.Brokerage.ID, Name: a.Brokerage.Name},
			ConnectionID: a.ConnectionID,
			TotalValue:   a.TotalValue.Float64(),
			GainLoss:     a.GainLoss.Float64(),
		}
	}
	return out
}

func toActivities(activities []snaptrade.Activity) []schemas.Activity {
	out := make([]schemas.Activity, len(activities))
	for i, a := range activities {
		currency := a.Currency
		if currency == "" {
			currency = "USD"
		}
		out[i] = schemas.Activity{
			ID:          a.ID,
			Date:        a.Date,
			Type:        a.Type,
			Description: a.Description,
			Symbol:      a.Symbol.Symbol,
			Currency:    currency,
			Amount:      a.Amount.Float64(),
			Quantity:    a.Quantity.Float64(),
			Price:       a.Price.Float64(),
		}
	}
	return out
}

func formatQuantity(quantity float64) string {
	return strconv.FormatFloat(quantity, 'f', -1, 64)
}
