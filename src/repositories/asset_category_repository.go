package repositories

import (
	"context"
	"errors"

	"server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AssetCategoryRepository interface {
	GetAll(ctx context.Context) ([]models.AssetCategory, error)
	// GetBySlug returns nil when the slug is unknown.
	GetBySlug(ctx context.Context, slug string) (*models.AssetCategory, error)
	GetByID(ctx context.Context, id int) (*models.AssetCategory, error)
}

type assetCategoryRepo struct {
	db *pgxpool.Pool
}

func NewAssetCategoryRepository(db *pgxpool.Pool) AssetCategoryRepository {
	return &assetCategoryRepo{db: db}
}

func (r *assetCategoryRepo) GetAll(ctx context.Context) ([]models.AssetCategory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, slug, name, created_at FROM asset_categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.AssetCategory
	for rows.Next() {
		var category models.AssetCategory
		if err := rows.Scan(&category.ID, &category.Slug, &category.Name, &category.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *assetCategoryRepo) GetBySlug(ctx context.Context, slug string) (*models.AssetCategory, error) {
	var category models.AssetCategory
	err := r.db.QueryRow(ctx,
		`SELECT id, slug, name, created_at FROM asset_categories WHERE slug = $1`, slug,
	).Scan(&category.ID, &category.Slug, &category.Name, &category.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *assetCategoryRepo) GetByID(ctx context.Context, id int) (*models.AssetCategory, error) {
	var category models.AssetCategory
	err := r.db.QueryRow(ctx,
		`SELECT id, slug, name, created_at FROM asset_categories WHERE id = $1`, id,
	).Scan(&category.ID, &category.Slug, &category.Name, &category.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}
