package storage

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/forkful/recipebot/internal/model"
)

// PersistentFileStorage is the file backend for deployments with a mounted
// persistent volume. It differs from FileStorage in two ways: Initialize
// proves the volume is writable (falling back to the OS temp dir when it is
// not), and SaveRecipe upserts by id instead of blindly appending.
type PersistentFileStorage struct {
	*FileStorage
}

// NewPersistentFileStorage creates a persistent-volume store rooted at basePath.
func NewPersistentFileStorage(basePath string) *PersistentFileStorage {
	return &PersistentFileStorage{FileStorage: NewFileStorage(basePath)}
}

// Initialize creates the directory and runs a write self-test: a marker file
// is created and removed to confirm the volume accepts writes. When the
// primary location is read-only the store falls back to a temp directory so
// the bot stays usable, at the cost of durability.
func (s *PersistentFileStorage) Initialize(ctx context.Context) error {
	if err := s.prepare(s.basePath); err == nil {
		log.Printf("Storage initialized at: %s", s.basePath)
		return nil
	} else {
		log.Printf("Cannot write to storage path %s: %v", s.basePath, err)
	}

	fallback := filepath.Join(os.TempDir(), "recipes")
	if err := s.prepare(fallback); err != nil {
		return wrapErr("initialize fallback storage", err)
	}
	s.basePath = fallback
	log.Printf("Using fallback storage at: %s", s.basePath)
	return nil
}

func (s *PersistentFileStorage) prepare(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}
	marker := filepath.Join(path, ".write_test")
	if err := os.WriteFile(marker, []byte("test"), 0o644); err != nil {
		return err
	}
	return os.Remove(marker)
}

// SaveRecipe upserts by id: an existing recipe is overwritten in place,
// anything else is appended.
func (s *PersistentFileStorage) SaveRecipe(ctx context.Context, userID int64, recipe *model.Recipe) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	recipes := s.readAll(userID)
	exists := false
	for i, r := range recipes {
		if r.ID == recipe.ID {
			recipes[i] = recipe
			exists = true
			break
		}
	}
	if !exists {
		recipes = append(recipes, recipe)
	}

	if err := s.writeAll(userID, recipes); err != nil {
		return err
	}
	log.Printf("Saved recipe %s for user %d", recipe.ID, userID)
	return nil
}
