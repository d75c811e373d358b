package controllers

import (
	"context"
	"testing"

	"server/src/schemas"
	"server/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssetsFixture() (*AssetsController, *fakeAssetRepo) {
	assets := newFakeAssetRepo()
	return NewAssetsController(assets, newFakeCategoryRepo()), assets
}

func TestCreateAssetValidation(t *testing.T) {
	controller, _ := newAssetsFixture()

	_, err := controller.CreateAsset(context.Background(), "user-1", &schemas.CreateAssetRequest{
		Name: "  ", Value: 100, Category: "cash",
	})
	require.Error(t, err)
	assert.Equal(t, 400, utils.ErrorStatus(err))

	_, err = controller.CreateAsset(context.Background(), "user-1", &schemas.CreateAssetRequest{
		Name: "Savings", Value: -1, Category: "cash",
	})
	require.Error(t, err)
	assert.Equal(t, 400, utils.ErrorStatus(err))

	_, err = controller.CreateAsset(context.Background(), "user-1", &schemas.CreateAssetRequest{
		Name: "Boat", Value: 100, Category: "boats",
	})
	require.Error(t, err)
	assert.Equal(t, 400, utils.ErrorStatus(err))

	_, err = controller.CreateAsset(context.Background(), "user-1", &schemas.CreateAssetRequest{
		Name: "Car", Value: 100, Category: "vehicles", AcquisitionDate: "03/15/2024",
	})
	require.Error(t, err)
	assert.Equal(t, 400, utils.ErrorStatus(err))
}

func TestCreateAndListAssets(t *testing.T) {
	controller, _ := newAssetsFixture()

	created, err := controller.CreateAsset(context.Background(), "user-1", &schemas.CreateAssetRequest{
		Name: "Family Car", Value: 18000, Category: "vehicles",
		AcquisitionDate: "2022-06-01", AcquisitionValue: 25000,
		Metadata: map[string]interface{}{"make": "Toyota"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "vehicles", created.Category)
	assert.Equal(t, "2022-06-01", created.AcquisitionDate)

	_, err = controller.CreateAsset(context.Background(), "user-1", &schemas.CreateAssetRequest{
		Name: "Emergency Fund", Value: 30000, Category: "cash",
	})
	require.NoError(t, err)

	// Another user's rows stay invisible.
	_, err = controller.CreateAsset(context.Background(), "user-2", &schemas.CreateAssetRequest{
		Name: "Other", Value: 1, Category: "cash",
	})
	require.NoError(t, err)

	assets, err := controller.GetAssets(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, assets, 2)
	// Largest holdings come first.
	assert.Equal(t, "Emergency Fund", assets[0].Name)
	assert.Equal(t, "cash", assets[0].Category)
	assert.Equal(t, "Family Car", assets[1].Name)
}

func TestDeleteAsset(t *testing.T) {
	controller, _ := newAssetsFixture()

	created, err := controller.CreateAsset(context.Background(), "user-1", &schemas.CreateAssetRequest{
		Name: "Savings", Value: 100, Category: "cash",
	})
	require.NoError(t, err)

	// Deleting under the wrong user is a 404, not a cross-user delete.
	err = controller.DeleteAsset(context.Background(), "user-2", created.ID)
	require.Error(t, err)
	assert.Equal(t, 404, utils.ErrorStatus(err))

	require.NoError(t, controller.DeleteAsset(context.Background(), "user-1", created.ID))

	err = controller.DeleteAsset(context.Background(), "user-1", created.ID)
	require.Error(t, err)
	assert.Equal(t, 404, utils.ErrorStatus(err))
}

func TestGetCategories(t *testing.T) {
	controller, _ := newAssetsFixture()

	categories, err := controller.GetCategories(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, categories)
	assert.Equal(t, "cash", categories[0].Slug)
}
