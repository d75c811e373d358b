package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"server/src/models"
	"server/src/repositories"
	"server/src/schemas"
	"server/src/utils"

	"github.com/jackc/pgx/v5"
)

type AssetsControllerI interface {
	GetAssets(ctx context.Context, userID string) ([]schemas.AssetResponse, error)
	CreateAsset(ctx context.Context, userID string, req *schemas.CreateAssetRequest) (*schemas.AssetResponse, error)
	DeleteAsset(ctx context.Context, userID string, id int) error
	GetCategories(ctx context.Context) ([]models.AssetCategory, error)
}

type AssetsController struct {
	Assets     repositories.AssetRepository
	Categories repositories.AssetCategoryRepository
}

func NewAssetsController(assets repositories.AssetRepository, categories repositories.AssetCategoryRepository) *AssetsController {
	return &AssetsController{Assets: assets, Categories: categories}
}

func (c *AssetsController) GetAssets(ctx context.Context, userID string) ([]schemas.AssetResponse, error) {
	assets, err := c.Assets.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	categories, err := c.Categories.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	slugByID := make(map[int]string, len(categories))
	for _, category := range categories {
		slugByID[category.ID] = category.Slug
	}

	out := make([]schemas.AssetResponse, len(assets))
	for i, asset := range assets {
		out[i] = toAssetResponse(&asset, slugByID[asset.CategoryID])
	}
	return out, nil
}

func (c *AssetsController) CreateAsset(ctx context.Context, userID string, req *schemas.CreateAssetRequest) (*schemas.AssetResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, utils.BadRequest("asset name is required")
	}
	if req.Value < 0 {
		return nil, utils.BadRequest("asset value must not be negative")
	}

	category, err := c.Categories.GetBySlug(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, utils.BadRequest("unknown asset category: " + req.Category)
	}

	acquisitionDate := time.Now().UTC()
	if req.AcquisitionDate != "" {
		parsed, err := time.Parse("2006-01-02", req.AcquisitionDate)
		if err != nil {
			return nil, utils.BadRequest("acquisitionDate must be YYYY-MM-DD")
		}
		acquisitionDate = parsed
	}

	asset := &models.Asset{
		UserID:           userID,
		Name:             req.Name,
		Value:            req.Value,
		Description:      req.Description,
		Location:         req.Location,
		AcquisitionDate:  acquisitionDate,
		AcquisitionValue: req.AcquisitionValue,
		CategoryID:       category.ID,
		IsLiability:      req.IsLiability,
		Metadata:         req.Metadata,
	}
	if err := c.Assets.Create(ctx, asset); err != nil {
		return nil, err
	}
	response := toAssetResponse(asset, category.Slug)
	return &response, nil
}

func (c *AssetsController) DeleteAsset(ctx context.Context, userID string, id int) error {
	err := c.Assets.Delete(ctx, userID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.NotFound("asset not found")
	}
	return err
}

func (c *AssetsController) GetCategories(ctx context.Context) ([]models.AssetCategory, error) {
	return c.Categories.GetAll(ctx)
}

func toAssetResponse(asset *models.Asset, categorySlug string) schemas.AssetResponse {
	acquisitionDate := ""
	if !asset.AcquisitionDate.IsZero() {
		acquisitionDate = asset.AcquisitionDate.Format("2006-01-02")
	}
	return schemas.AssetResponse{
		ID:               asset.ID,
		Name:             asset.Name,
		Value:            asset.Value,
		Description:      asset.Description,
		Location:         asset.Location,
		Category:         categorySlug,
		AcquisitionDate:  acquisitionDate,
		AcquisitionValue: asset.AcquisitionValue,
		IsLiability:      asset.IsLiability,
		Metadata:         asset.Metadata,
	}
}
