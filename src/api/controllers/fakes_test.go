package controllers

import (
	"context"
	"errors"
	"sort"

	"server/src/clients/snaptrade"
	"server/src/models"

	"github.com/jackc/pgx/v5"
)

// In-memory repository fakes. They mimic the persistence semantics the
// controllers rely on: upsert on (user, broker), jsonb merges, and
// delete-by-source returning the affected count.

type fakeConnectionRepo struct {
	rows   map[string]*models.BrokerConnection
	nextID int
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{rows: map[string]*models.BrokerConnection{}}
}

func connKey(userID, brokerID string) string { return userID + "|" + brokerID }

func (r *fakeConnectionRepo) GetByUserAndBroker(_ context.Context, userID, brokerID string) (*models.BrokerConnection, error) {
	conn, ok := r.rows[connKey(userID, brokerID)]
	if !ok {
		return nil, nil
	}
	clone := *conn
	clone.BrokerData = cloneMap(conn.BrokerData)
	return &clone, nil
}

func (r *fakeConnectionRepo) Create(_ context.Context, conn *models.BrokerConnection) error {
	if conn.BrokerData == nil {
		conn.BrokerData = map[string]interface{}{}
	}
	key := connKey(conn.UserID, conn.BrokerID)
	if existing, ok := r.rows[key]; ok {
		existing.APISecretEncrypted = conn.APISecretEncrypted
		existing.IsActive = conn.IsActive
		existing.BrokerData = cloneMap(conn.BrokerData)
		conn.ID = existing.ID
		return nil
	}
	r.nextID++
	conn.ID = r.nextID
	clone := *conn
	clone.BrokerData = cloneMap(conn.BrokerData)
	r.rows[key] = &clone
	return nil
}

func (r *fakeConnectionRepo) UpdateSecret(_ context.Context, userID, brokerID, secret string, brokerData map[string]interface{}) error {
	conn, ok := r.rows[connKey(userID, brokerID)]
	if !ok {
		return nil
	}
	conn.APISecretEncrypted = secret
	conn.IsActive = true
	mergeInto(conn, brokerData)
	return nil
}

func (r *fakeConnectionRepo) MergeBrokerData(_ context.Context, userID, brokerID string, patch map[string]interface{}) error {
	conn, ok := r.rows[connKey(userID, brokerID)]
	if !ok {
		return nil
	}
	mergeInto(conn, patch)
	return nil
}

func (r *fakeConnectionRepo) Deactivate(_ context.Context, userID, brokerID string, patch map[string]interface{}) error {
	conn, ok := r.rows[connKey(userID, brokerID)]
	if !ok {
		return nil
	}
	conn.IsActive = false
	mergeInto(conn, patch)
	return nil
}

func (r *fakeConnectionRepo) CountByUser(_ context.Context, userID string) (int, error) {
	count := 0
	for _, conn := range r.rows {
		if conn.UserID == userID {
			count++
		}
	}
	return count, nil
}

func mergeInto(conn *models.BrokerConnection, patch map[string]interface{}) {
	if conn.BrokerData == nil {
		conn.BrokerData = map[string]interface{}{}
	}
	for k, v := range patch {
		conn.BrokerData[k] = v
	}
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type fakeAssetRepo struct {
	rows   []models.Asset
	nextID int
}

func newFakeAssetRepo() *fakeAssetRepo { return &fakeAssetRepo{} }

func (r *fakeAssetRepo) GetAllByUser(_ context.Context, userID string) ([]models.Asset, error) {
	var out []models.Asset
	for _, a := range r.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeAssetRepo) GetByID(_ context.Context, userID string, id int) (*models.Asset, error) {
	for _, a := range r.rows {
		if a.UserID == userID && a.ID == id {
			clone := a
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeAssetRepo) Create(_ context.Context, asset *models.Asset) error {
	r.nextID++
	asset.ID = r.nextID
	r.rows = append(r.rows, *asset)
	return nil
}

func (r *fakeAssetRepo) Delete(_ context.Context, userID string, id int) error {
	for i, a := range r.rows {
		if a.UserID == userID && a.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeAssetRepo) DeleteBySource(_ context.Context, userID, source string) (int64, error) {
	var kept []models.Asset
	var deleted int64
	for _, a := range r.rows {
		if a.UserID == userID && a.Source() == source {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	r.rows = kept
	return deleted, nil
}

type fakeCategoryRepo struct {
	categories []models.AssetCategory
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: []models.AssetCategory{
		{ID: 1, Slug: "cash", Name: "Cash"},
		{ID: 2, Slug: "investments", Name: "Investments"},
		{ID: 3, Slug: "vehicles", Name: "Vehicles"},
	}}
}

func (r *fakeCategoryRepo) GetAll(_ context.Context) ([]models.AssetCategory, error) {
	return r.categories, nil
}

func (r *fakeCategoryRepo) GetBySlug(_ context.Context, slug string) (*models.AssetCategory, error) {
	for _, c := range r.categories {
		if c.Slug == slug {
			clone := c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id int) (*models.AssetCategory, error) {
	for _, c := range r.categories {
		if c.ID == id {
			clone := c
			return &clone, nil
		}
	}
	return nil, nil
}

type fakeSyncLogRepo struct {
	logs []models.SyncLog
}

func newFakeSyncLogRepo() *fakeSyncLogRepo { return &fakeSyncLogRepo{} }

func (r *fakeSyncLogRepo) Create(_ context.Context, log *models.SyncLog) error {
	log.ID = len(r.logs) + 1
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeSyncLogRepo) GetLatestByUser(_ context.Context, userID, source string) (*models.SyncLog, error) {
	for i := len(r.logs) - 1; i >= 0; i-- {
		if r.logs[i].UserID == userID && r.logs[i].Source == source {
			clone := r.logs[i]
			return &clone, nil
		}
	}
	return nil, nil
}

// stubAggregator wraps the deterministic mock client, letting individual
// tests force errors or substitute fixed data per method.
type stubAggregator struct {
	snaptrade.Client

	registerCalls int
	registerErr   error
	registerResp  *snaptrade.RegisterUserResponse

	loginErr  error
	loginResp *snaptrade.LoginResponse

	deleteSecrets []string
	deleteErr     error

	removeSecrets []string
	removeErr     error

	refreshErr error

	listErr  error
	accounts []snaptrade.Account

	positionsErr error
	positions    map[string][]snaptrade.Position

	balances map[string][]snaptrade.Balance
}

func newStubAggregator() *stubAggregator {
	return &stubAggregator{Client: snaptrade.NewMockClient()}
}

func (s *stubAggregator) RegisterUser(ctx context.Context, userID string) (*snaptrade.RegisterUserResponse, error) {
	s.registerCalls++
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	if s.registerResp != nil {
		return s.registerResp, nil
	}
	return s.Client.RegisterUser(ctx, userID)
}

func (s *stubAggregator) DeleteUser(_ context.Context, _, userSecret string) error {
	s.deleteSecrets = append(s.deleteSecrets, userSecret)
	return s.deleteErr
}

func (s *stubAggregator) LoginUser(ctx context.Context, req *snaptrade.LoginRequest) (*snaptrade.LoginResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	if s.loginResp != nil {
		return s.loginResp, nil
	}
	return s.Client.LoginUser(ctx, req)
}

func (s *stubAggregator) RemoveConnection(_ context.Context, _, userSecret, _ string) error {
	s.removeSecrets = append(s.removeSecrets, userSecret)
	return s.removeErr
}

func (s *stubAggregator) RefreshAuthorization(_ context.Context, _, _, _ string) error {
	return s.refreshErr
}

func (s *stubAggregator) ListAccounts(ctx context.Context, userID, userSecret string) ([]snaptrade.Account, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if s.accounts != nil {
		return s.accounts, nil
	}
	return s.Client.ListAccounts(ctx, userID, userSecret)
}

func (s *stubAggregator) GetPositions(ctx context.Context, userID, userSecret, accountID string) ([]snaptrade.Position, error) {
	if s.positionsErr != nil {
		return nil, s.positionsErr
	}
	if s.positions != nil {
		return s.positions[accountID], nil
	}
	return s.Client.GetPositions(ctx, userID, userSecret, accountID)
}

func (s *stubAggregator) GetBalances(ctx context.Context, userID, userSecret, accountID string) ([]snaptrade.Balance, error) {
	if s.balances != nil {
		return s.balances[accountID], nil
	}
	return s.Client.GetBalances(ctx, userID, userSecret, accountID)
}

var errAggregatorDown = errors.New("aggregator unavailable")
