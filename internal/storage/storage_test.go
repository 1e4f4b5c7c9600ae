package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/recipebot/internal/model"
)

// runStorageContract exercises the behavior every backend must share.
func runStorageContract(t *testing.T, newStore func(t *testing.T) Storage) {
	ctx := context.Background()

	t.Run("save then get returns an equal recipe", func(t *testing.T) {
		store := newStore(t)
		recipe := model.NewRecipe(1, "Pancakes", "Mix and fry.", true)

		require.NoError(t, store.SaveRecipe(ctx, 1, recipe))

		got, err := store.GetRecipe(ctx, 1, recipe.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, recipe, got)
	})

	t.Run("get missing recipe returns nil without error", func(t *testing.T) {
		store := newStore(t)

		got, err := store.GetRecipe(ctx, 1, "recipe_1_does_not_exist")

		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("empty collection lists as empty", func(t *testing.T) {
		store := newStore(t)

		recipes, err := store.GetRecipes(ctx, 404)

		require.NoError(t, err)
		assert.Empty(t, recipes)
	})

	t.Run("recipes list newest first", func(t *testing.T) {
		store := newStore(t)
		older := stampedRecipe("recipe_1_100", "Old", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		newer := stampedRecipe("recipe_1_200", "New", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

		require.NoError(t, store.SaveRecipe(ctx, 1, older))
		require.NoError(t, store.SaveRecipe(ctx, 1, newer))

		recipes, err := store.GetRecipes(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recipes, 2)
		assert.Equal(t, "New", recipes[0].Name)
		assert.Equal(t, "Old", recipes[1].Name)
	})

	t.Run("collections are partitioned by user", func(t *testing.T) {
		store := newStore(t)
		mine := model.NewRecipe(1, "Mine", "a", false)
		theirs := model.NewRecipe(2, "Theirs", "b", false)

		require.NoError(t, store.SaveRecipe(ctx, 1, mine))
		require.NoError(t, store.SaveRecipe(ctx, 2, theirs))

		recipes, err := store.GetRecipes(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, "Mine", recipes[0].Name)

		got, err := store.GetRecipe(ctx, 1, theirs.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("update replaces content and advances updated_at", func(t *testing.T) {
		store := newStore(t)
		recipe := model.NewRecipe(1, "Soup", "Boil.", false)
		require.NoError(t, store.SaveRecipe(ctx, 1, recipe))

		time.Sleep(5 * time.Millisecond)
		recipe.UpdateContent("Boil longer.")
		require.NoError(t, store.UpdateRecipe(ctx, 1, recipe.ID, recipe))

		got, err := store.GetRecipe(ctx, 1, recipe.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Boil longer.", got.Content)
		assert.Equal(t, recipe.CreatedAt, got.CreatedAt)
		assert.True(t, got.UpdatedTime().After(got.CreatedTime()))
	})

	t.Run("update of a missing id changes nothing and does not fail", func(t *testing.T) {
		store := newStore(t)
		recipe := model.NewRecipe(1, "Soup", "Boil.", false)
		require.NoError(t, store.SaveRecipe(ctx, 1, recipe))

		ghost := model.NewRecipe(1, "Ghost", "Vanish.", false)
		require.NoError(t, store.UpdateRecipe(ctx, 1, "recipe_1_missing", ghost))

		recipes, err := store.GetRecipes(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, "Soup", recipes[0].Name)
	})

	t.Run("delete removes the recipe", func(t *testing.T) {
		store := newStore(t)
		recipe := model.NewRecipe(1, "Soup", "Boil.", false)
		require.NoError(t, store.SaveRecipe(ctx, 1, recipe))

		require.NoError(t, store.DeleteRecipe(ctx, 1, recipe.ID))

		got, err := store.GetRecipe(ctx, 1, recipe.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		recipes, err := store.GetRecipes(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, recipes)
	})

	t.Run("delete of a missing id does not fail", func(t *testing.T) {
		store := newStore(t)

		assert.NoError(t, store.DeleteRecipe(ctx, 1, "recipe_1_missing"))
	})
}

// stampedRecipe builds a recipe with a fixed creation time, for ordering tests.
func stampedRecipe(id, name string, created time.Time) *model.Recipe {
	ts := created.Format(time.RFC3339Nano)
	return &model.Recipe{
		ID:        id,
		Name:      name,
		Content:   "content of " + name,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}
