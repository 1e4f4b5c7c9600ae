package storage_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/recipebot/internal/model"
	"github.com/forkful/recipebot/internal/storage"
	"github.com/forkful/recipebot/internal/testdb"
)

func TestPostgresStorage_Integration(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TESTS=true to run.")
	}

	ctx := context.Background()
	td := testdb.SetupTestDB(t)
	defer td.Close()

	store := storage.NewPostgresStorageWithDB(td.DB)
	require.NoError(t, store.Initialize(ctx))

	t.Run("full recipe lifecycle", func(t *testing.T) {
		recipe := model.NewRecipe(42, "Pancakes", "Mix and fry.", true)
		require.NoError(t, store.SaveRecipe(ctx, 42, recipe))

		got, err := store.GetRecipe(ctx, 42, recipe.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, recipe, got)

		recipe.UpdateContent("Mix, rest, fry.")
		require.NoError(t, store.UpdateRecipe(ctx, 42, recipe.ID, recipe))

		got, err = store.GetRecipe(ctx, 42, recipe.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Mix, rest, fry.", got.Content)

		require.NoError(t, store.DeleteRecipe(ctx, 42, recipe.ID))
		got, err = store.GetRecipe(ctx, 42, recipe.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("jsonb payload survives the round trip", func(t *testing.T) {
		recipe := model.NewRecipe(43, "Stew # with symbols", "Step 1: \"sear\"\nStep 2: simmer.", false)
		require.NoError(t, store.SaveRecipe(ctx, 43, recipe))

		recipes, err := store.GetRecipes(ctx, 43)
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, recipe, recipes[0])
	})

	t.Run("initialize against an existing schema", func(t *testing.T) {
		again := storage.NewPostgresStorageWithDB(td.DB)
		assert.NoError(t, again.Initialize(ctx))
	})
}
