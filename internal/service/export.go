package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/forkful/recipebot/config"
	"github.com/forkful/recipebot/internal/model"
	"github.com/forkful/recipebot/internal/storage"
)

// ExportService snapshots a user's recipe collection to S3 and hands back a
// time-limited download link.
type ExportService struct {
	s3      *config.S3Config
	storage storage.Storage
}

// NewExportService creates a new ExportService instance
func NewExportService(s3 *config.S3Config, st storage.Storage) *ExportService {
	return &ExportService{s3: s3, storage: st}
}

type exportSnapshot struct {
	ExportedAt string          `json:"exported_at"`
	Count      int             `json:"count"`
	Recipes    []*model.Recipe `json:"recipes"`
}

// ExportRecipes uploads an indented JSON snapshot of the user's recipes and
// returns a presigned URL valid for 24 hours.
func (s *ExportService) ExportRecipes(ctx context.Context, userID int64) (string, error) {
	recipes, err := s.storage.GetRecipes(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load recipes: %w", err)
	}

	snapshot := exportSnapshot{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(recipes),
		Recipes:    recipes,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := fmt.Sprintf("exports/user_%d/%s.json", userID, uuid.New().String())
	if err := s.s3.Upload(ctx, key, "application/json", bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %w", err)
	}

	url, err := s.s3.GeneratePresignedURL(ctx, key, 24*time.Hour)
	if err != nil {
		return "", fmt.Errorf("failed to presign snapshot: %w", err)
	}

	log.Printf("Exported %d recipes for user %d to %s", len(recipes), userID, key)
	return url, nil
}
