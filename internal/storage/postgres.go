package storage

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forkful/recipebot/internal/database"
	"github.com/forkful/recipebot/internal/model"
)

// jsonbRecipe stores the full serialized recipe in a JSONB column. The
// relational columns exist for queryability; reads hydrate from this payload.
type jsonbRecipe map[string]interface{}

// Value implements the driver.Valuer interface
func (j jsonbRecipe) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "{}", nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *jsonbRecipe) Scan(value interface{}) error {
	if value == nil {
		*j = jsonbRecipe{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}

	return json.Unmarshal(bytes, j)
}

type recipeRow struct {
	ID            string      `gorm:"primaryKey;size:255"`
	UserID        int64       `gorm:"index:idx_recipes_user_id;not null"`
	Name          string      `gorm:"type:text;not null"`
	Content       string      `gorm:"type:text;not null"`
	CreatedAt     time.Time   `gorm:"not null"`
	UpdatedAt     time.Time   `gorm:"not null"`
	IsAIGenerated bool        `gorm:"default:false"`
	Data          jsonbRecipe `gorm:"type:jsonb"`
}

func (recipeRow) TableName() string {
	return "recipes"
}

func rowFromRecipe(userID int64, recipe *model.Recipe) recipeRow {
	return recipeRow{
		ID:            recipe.ID,
		UserID:        userID,
		Name:          recipe.Name,
		Content:       recipe.Content,
		CreatedAt:     recipe.CreatedTime(),
		UpdatedAt:     recipe.UpdatedTime(),
		IsAIGenerated: recipe.IsAIGenerated,
		Data:          jsonbRecipe(recipe.ToMap()),
	}
}

// PostgresStorage keeps all users' recipes in one table keyed by recipe id,
// partitioned by an indexed user_id column.
type PostgresStorage struct {
	dsn string
	db  *gorm.DB

	connectAttempts int
	connectDelay    time.Duration
}

// NewPostgresStorage creates a Postgres-backed store for the given connection
// string. The connection is established by Initialize.
func NewPostgresStorage(dsn string) *PostgresStorage {
	return &PostgresStorage{
		dsn:             dsn,
		connectAttempts: 5,
		connectDelay:    5 * time.Second,
	}
}

// NewPostgresStorageWithDB wraps an existing gorm connection. Used by tests
// and by callers that manage the connection themselves.
func NewPostgresStorageWithDB(db *gorm.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// Initialize connects to the database, retrying a bounded number of times
// with a fixed delay in case the instance is still waking up, then creates
// the schema idempotently.
func (s *PostgresStorage) Initialize(ctx context.Context) error {
	if s.db == nil {
		if err := database.WaitForPostgres(ctx, s.dsn, s.connectAttempts, s.connectDelay); err != nil {
			return wrapErr("connect to database", err)
		}
		db, err := database.OpenGorm(s.dsn)
		if err != nil {
			return wrapErr("open database", err)
		}
		s.db = db
	}

	if err := s.db.WithContext(ctx).AutoMigrate(&recipeRow{}); err != nil {
		return wrapErr("create recipes table", err)
	}
	log.Printf("Postgres storage initialized successfully")
	return nil
}

// Close releases the underlying connection pool. Safe to call before a
// successful Initialize.
func (s *PostgresStorage) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrapErr("close database", err)
	}
	return wrapErr("close database", sqlDB.Close())
}

// SaveRecipe upserts the recipe by id. Concurrent saves of the same id are
// last-write-wins at the row level, a single atomic statement.
func (s *PostgresStorage) SaveRecipe(ctx context.Context, userID int64, recipe *model.Recipe) error {
	row := rowFromRecipe(userID, recipe)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "content", "updated_at", "is_ai_generated", "data",
		}),
	}).Create(&row).Error
	if err != nil {
		return wrapErr("save recipe", err)
	}
	log.Printf("Saved recipe %s for user %d", recipe.ID, userID)
	return nil
}

// GetRecipes returns the user's recipes newest-first. Rows whose payload does
// not parse are logged and dropped individually.
func (s *PostgresStorage) GetRecipes(ctx context.Context, userID int64) ([]*model.Recipe, error) {
	var rows []recipeRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		log.Printf("Error reading recipes for user %d: %v", userID, err)
		return []*model.Recipe{}, nil
	}

	recipes := make([]*model.Recipe, 0, len(rows))
	for _, row := range rows {
		if len(row.Data) == 0 {
			log.Printf("Error parsing recipe data for %s: empty payload", row.ID)
			continue
		}
		recipes = append(recipes, model.RecipeFromMap(row.Data))
	}
	return recipes, nil
}

// GetRecipe returns the matching recipe or (nil, nil) when absent.
func (s *PostgresStorage) GetRecipe(ctx context.Context, userID int64, recipeID string) (*model.Recipe, error) {
	var row recipeRow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, recipeID).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		log.Printf("Error reading recipe %s for user %d: %v", recipeID, userID, err)
		return nil, nil
	}
	if len(row.Data) == 0 {
		log.Printf("Error parsing recipe data for %s: empty payload", row.ID)
		return nil, nil
	}
	return model.RecipeFromMap(row.Data), nil
}

// UpdateRecipe replaces the stored recipe and refreshes its update timestamp.
// A missing id logs a warning and changes nothing.
func (s *PostgresStorage) UpdateRecipe(ctx context.Context, userID int64, recipeID string, recipe *model.Recipe) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&recipeRow{}).
		Where("user_id = ? AND id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return wrapErr("update recipe", err)
	}
	if count == 0 {
		log.Printf("Recipe %s not found for user %d", recipeID, userID)
		return nil
	}

	recipe.Touch()
	if err := s.SaveRecipe(ctx, userID, recipe); err != nil {
		return err
	}
	log.Printf("Updated recipe %s for user %d", recipeID, userID)
	return nil
}

// DeleteRecipe removes the recipe if present; absence is not an error.
func (s *PostgresStorage) DeleteRecipe(ctx context.Context, userID int64, recipeID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, recipeID).
		Delete(&recipeRow{}).Error
	if err != nil {
		return wrapErr("delete recipe", err)
	}
	log.Printf("Deleted recipe %s for user %d", recipeID, userID)
	return nil
}
