package repositories

import (
	"context"
	"errors"

	"server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AssetRepository interface {
	GetAllByUser(ctx context.Context, userID string) ([]models.Asset, error)
	GetByID(ctx context.Context, userID string, id int) (*models.Asset, error)
	Create(ctx context.Context, asset *models.Asset) error
	Delete(ctx context.Context, userID string, id int) error
	// DeleteBySource removes every asset a given source tag produced for the
	// user. The sync engine runs this before re-inserting so each pass is a
	// full replace, never a merge.
	DeleteBySource(ctx context.Context, userID, source string) (int64, error)
}

type assetRepo struct {
	db *pgxpool.Pool
}

func NewAssetRepository(db *pgxpool.Pool) AssetRepository {
	return &assetRepo{db: db}
}

const assetColumns = `id, user_id, name, value, description, location,
	acquisition_date, acquisition_value, category_id, is_liability, metadata, created_at`

func scanAsset(row pgx.Row) (*models.Asset, error) {
	var asset models.Asset
	err := row.Scan(&asset.ID, &asset.UserID, &asset.Name, &asset.Value,
		&asset.Description, &asset.Location, &asset.AcquisitionDate,
		&asset.AcquisitionValue, &asset.CategoryID, &asset.IsLiability,
		&asset.Metadata, &asset.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepo) GetAllByUser(ctx context.Context, userID string) ([]models.Asset, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE user_id = $1 ORDER BY value DESC, id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *asset)
	}
	return assets, rows.Err()
}

func (r *assetRepo) GetByID(ctx context.Context, userID string, id int) (*models.Asset, error) {
	asset, err := scanAsset(r.db.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE user_id = $1 AND id = $2`,
		userID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (r *assetRepo) Create(ctx context.Context, asset *models.Asset) error {
	if asset.Metadata == nil {
		asset.Metadata = map[string]interface{}{}
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO assets (user_id, name, value, description, location,
			acquisition_date, acquisition_value, category_id, is_liability, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		asset.UserID, asset.Name, asset.Value, asset.Description, asset.Location,
		asset.AcquisitionDate, asset.AcquisitionValue, asset.CategoryID,
		asset.IsLiability, asset.Metadata,
	).Scan(&asset.ID)
}

func (r *assetRepo) Delete(ctx context.Context, userID string, id int) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM assets WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assetRepo) DeleteBySource(ctx context.Context, userID, source string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM assets WHERE user_id = $1 AND metadata->>'source' = $2`,
		userID, source)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
