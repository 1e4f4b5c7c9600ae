package model

import (
	"fmt"
	"time"
)

// Recipe represents a single saved recipe. The owning user is not stored on
// the entity; every storage backend partitions by user id, which keeps the
// record serializable on its own.
type Recipe struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Content       string `json:"content"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	IsAIGenerated bool   `json:"is_ai_generated"`
}

// NewRecipe creates a recipe with a generated id and both timestamps set to
// now. The id embeds the user id and creation time, which makes it unique
// within a user's collection.
func NewRecipe(userID int64, name, content string, aiGenerated bool) *Recipe {
	now := time.Now()
	ts := now.UTC().Format(time.RFC3339Nano)
	return &Recipe{
		ID:            fmt.Sprintf("recipe_%d_%d", userID, now.UnixNano()),
		Name:          name,
		Content:       content,
		CreatedAt:     ts,
		UpdatedAt:     ts,
		IsAIGenerated: aiGenerated,
	}
}

// UpdateContent replaces the recipe text and refreshes the update timestamp.
// The id, name and creation timestamp are left untouched.
func (r *Recipe) UpdateContent(content string) {
	r.Content = content
	r.Touch()
}

// Touch refreshes the update timestamp.
func (r *Recipe) Touch() {
	r.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
}

// CreatedTime parses the creation timestamp. Records with an unparseable
// timestamp sort as the zero time, i.e. last in newest-first listings.
func (r *Recipe) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// UpdatedTime parses the update timestamp, falling back to the creation time.
func (r *Recipe) UpdatedTime() time.Time {
	t, err := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	if err != nil {
		return r.CreatedTime()
	}
	return t
}

// ToMap converts the recipe to a generic string-keyed map, field for field.
func (r *Recipe) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":              r.ID,
		"name":            r.Name,
		"content":         r.Content,
		"created_at":      r.CreatedAt,
		"updated_at":      r.UpdatedAt,
		"is_ai_generated": r.IsAIGenerated,
	}
}

// RecipeFromMap builds a recipe from a generic map. is_ai_generated defaults
// to false when absent; no other defaulting is applied.
func RecipeFromMap(data map[string]interface{}) *Recipe {
	r := &Recipe{}
	if v, ok := data["id"].(string); ok {
		r.ID = v
	}
	if v, ok := data["name"].(string); ok {
		r.Name = v
	}
	if v, ok := data["content"].(string); ok {
		r.Content = v
	}
	if v, ok := data["created_at"].(string); ok {
		r.CreatedAt = v
	}
	if v, ok := data["updated_at"].(string); ok {
		r.UpdatedAt = v
	}
	if v, ok := data["is_ai_generated"].(bool); ok {
		r.IsAIGenerated = v
	}
	return r
}
