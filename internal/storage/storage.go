// Package storage persists per-user recipe collections. Three interchangeable
// backends implement the same contract: a plain JSON-file store, a
// persistent-volume JSON store, and a Postgres store. Which one runs is
// selected by configuration at startup.
package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/forkful/recipebot/internal/model"
)

// Storage is the contract shared by all backends.
//
// GetRecipe returns (nil, nil) when the recipe does not exist; absence is not
// an error anywhere in this contract. UpdateRecipe and DeleteRecipe on a
// missing id are no-ops. GetRecipes returns recipes newest-first and degrades
// to an empty collection on read failures.
type Storage interface {
	// Initialize acquires backend resources (directories, connections).
	Initialize(ctx context.Context) error
	// Close releases backend resources. Safe to call even if Initialize
	// did not fully succeed.
	Close(ctx context.Context) error

	SaveRecipe(ctx context.Context, userID int64, recipe *model.Recipe) error
	GetRecipes(ctx context.Context, userID int64) ([]*model.Recipe, error)
	GetRecipe(ctx context.Context, userID int64, recipeID string) (*model.Recipe, error)
	UpdateRecipe(ctx context.Context, userID int64, recipeID string, recipe *model.Recipe) error
	DeleteRecipe(ctx context.Context, userID int64, recipeID string) error
}

// Error wraps an I/O, parse or connection failure from a storage backend.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// sortNewestFirst orders recipes by creation time descending. The sort is
// stable so records with identical timestamps keep their stored order.
func sortNewestFirst(recipes []*model.Recipe) {
	sort.SliceStable(recipes, func(i, j int) bool {
		return recipes[i].CreatedTime().After(recipes[j].CreatedTime())
	})
}
