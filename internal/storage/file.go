package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/forkful/recipebot/internal/model"
)

// FileStorage keeps one JSON file per user under a base directory. Every
// write is a full-file rewrite: read, modify, write to a temp file, rename
// over the target. Writes for the same user are serialized by a per-user
// mutex; different users never contend.
type FileStorage struct {
	basePath string

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewFileStorage creates a file-backed store rooted at basePath.
func NewFileStorage(basePath string) *FileStorage {
	return &FileStorage{
		basePath: basePath,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Initialize creates the base directory.
func (s *FileStorage) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return wrapErr("create storage directory", err)
	}
	return nil
}

// Close is a no-op; file handles are never held between operations.
func (s *FileStorage) Close(ctx context.Context) error {
	return nil
}

// userLock returns the mutex guarding one user's file, creating it on first use.
func (s *FileStorage) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

func (s *FileStorage) userFile(userID int64) string {
	return filepath.Join(s.basePath, fmt.Sprintf("user_%d.json", userID))
}

// SaveRecipe appends a recipe to the user's collection.
func (s *FileStorage) SaveRecipe(ctx context.Context, userID int64, recipe *model.Recipe) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	recipes := s.readAll(userID)
	recipes = append(recipes, recipe)

	if err := s.writeAll(userID, recipes); err != nil {
		return err
	}
	log.Printf("Saved recipe %s for user %d", recipe.ID, userID)
	return nil
}

// GetRecipes returns the user's recipes newest-first. A missing or unreadable
// file yields an empty collection, never an error.
func (s *FileStorage) GetRecipes(ctx context.Context, userID int64) ([]*model.Recipe, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	recipes := s.readAll(userID)
	sortNewestFirst(recipes)
	return recipes, nil
}

// GetRecipe returns the matching recipe or (nil, nil) when absent.
func (s *FileStorage) GetRecipe(ctx context.Context, userID int64, recipeID string) (*model.Recipe, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	for _, r := range s.readAll(userID) {
		if r.ID == recipeID {
			return r, nil
		}
	}
	return nil, nil
}

// UpdateRecipe replaces the stored recipe with the given one and refreshes
// its update timestamp. A missing id logs a warning and changes nothing.
func (s *FileStorage) UpdateRecipe(ctx context.Context, userID int64, recipeID string, recipe *model.Recipe) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	recipes := s.readAll(userID)
	updated := false
	for i, r := range recipes {
		if r.ID == recipeID {
			recipe.Touch()
			recipes[i] = recipe
			updated = true
			break
		}
	}

	if !updated {
		log.Printf("Recipe %s not found for user %d", recipeID, userID)
		return nil
	}

	if err := s.writeAll(userID, recipes); err != nil {
		return err
	}
	log.Printf("Updated recipe %s for user %d", recipeID, userID)
	return nil
}

// DeleteRecipe removes the recipe if present; absence is not an error.
func (s *FileStorage) DeleteRecipe(ctx context.Context, userID int64, recipeID string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	recipes := s.readAll(userID)
	kept := recipes[:0]
	for _, r := range recipes {
		if r.ID != recipeID {
			kept = append(kept, r)
		}
	}

	if err := s.writeAll(userID, kept); err != nil {
		return err
	}
	log.Printf("Deleted recipe %s for user %d", recipeID, userID)
	return nil
}

// readAll loads the user's file. Any read or parse failure degrades to an
// empty collection; the failure is logged, not surfaced.
func (s *FileStorage) readAll(userID int64) []*model.Recipe {
	data, err := os.ReadFile(s.userFile(userID))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error reading recipes for user %d: %v", userID, err)
		}
		return []*model.Recipe{}
	}

	var recipes []*model.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		log.Printf("Error parsing recipes for user %d: %v", userID, err)
		return []*model.Recipe{}
	}
	return recipes
}

// writeAll rewrites the user's file through a temp file and atomic rename,
// so a crash mid-write leaves the previous contents intact.
func (s *FileStorage) writeAll(userID int64, recipes []*model.Recipe) error {
	data, err := json.MarshalIndent(recipes, "", "  ")
	if err != nil {
		return wrapErr("encode recipes", err)
	}

	target := s.userFile(userID)
	tmp, err := os.CreateTemp(s.basePath, fmt.Sprintf(".user_%d-*.tmp", userID))
	if err != nil {
		return wrapErr("create temp file", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return wrapErr("write recipes", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return wrapErr("close temp file", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return wrapErr("replace recipes file", err)
	}
	return nil
}
