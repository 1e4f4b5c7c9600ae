package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/forkful/recipebot/internal/model"
	"github.com/forkful/recipebot/internal/service"
	"github.com/forkful/recipebot/internal/storage"
)

// LLM is the language-model boundary the controller depends on.
type LLM interface {
	GenerateRecipe(ctx context.Context, ingredients []string) (string, error)
	VerifyRecipe(ctx context.Context, content string) (string, error)
}

// Exporter produces a download link for a user's recipe collection.
type Exporter interface {
	ExportRecipes(ctx context.Context, userID int64) (string, error)
}

// Controller drives the conversation flows: generate, manual add, list,
// view, edit, AI verify, delete, export. It holds no durable state of its
// own; recipes live in storage and in-flight scratch data in the session
// store.
type Controller struct {
	storage  storage.Storage
	llm      LLM
	sessions SessionStore
	exporter Exporter // nil when exports are not configured
}

// NewController creates a new Controller instance.
func NewController(st storage.Storage, llm LLM, sessions SessionStore, exporter Exporter) *Controller {
	return &Controller{
		storage:  st,
		llm:      llm,
		sessions: sessions,
		exporter: exporter,
	}
}

// Handle processes one inbound event and returns the reply to deliver. The
// returned Reply is empty when the event is not for this subsystem (free
// text outside an active flow).
func (c *Controller) Handle(ctx context.Context, ev Event) Reply {
	switch {
	case ev.Callback != "":
		return c.handleCallback(ctx, ev)
	case strings.HasPrefix(ev.Text, "/"):
		return c.handleCommand(ctx, ev)
	default:
		return c.handleText(ctx, ev)
	}
}

func (c *Controller) handleCommand(ctx context.Context, ev Event) Reply {
	command := strings.Fields(ev.Text)[0]
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}

	switch command {
	case "/start":
		c.clearSession(ctx, ev.UserID)
		return Reply{Text: welcomeMessage}
	case "/help":
		return Reply{Text: helpMessage}
	case "/cancel":
		c.clearSession(ctx, ev.UserID)
		return Reply{Text: cancelledMessage}
	case "/generate":
		c.putSession(ctx, ev.UserID, &Session{State: StateWaitingIngredients})
		return Reply{Text: generatePromptMessage}
	case "/add":
		c.putSession(ctx, ev.UserID, &Session{State: StateWaitingRecipeName})
		return Reply{Text: addNamePromptMessage}
	case "/list":
		recipes, _ := c.storage.GetRecipes(ctx, ev.UserID)
		return listReply(recipes, false)
	case "/export":
		return c.handleExport(ctx, ev)
	default:
		return Reply{Text: unknownCommandMessage}
	}
}

func (c *Controller) handleText(ctx context.Context, ev Event) Reply {
	session, err := c.sessions.Get(ctx, ev.UserID)
	if err != nil {
		log.Printf("Failed to load session for user %d: %v", ev.UserID, err)
		return Reply{}
	}
	if session == nil || session.State == StateIdle {
		// Free text outside a flow is not ours to answer.
		return Reply{}
	}

	switch session.State {
	case StateWaitingIngredients:
		return c.finishGenerate(ctx, ev)
	case StateWaitingRecipeName:
		session.State = StateWaitingRecipeContent
		session.PendingName = ev.Text
		c.putSession(ctx, ev.UserID, session)
		return Reply{Text: addContentPromptMessage}
	case StateWaitingRecipeContent:
		return c.finishAdd(ctx, ev, session.PendingName)
	case StateWaitingRecipeUpdate:
		return c.finishManualEdit(ctx, ev, session.EditingRecipeID)
	default:
		return Reply{}
	}
}

// finishGenerate runs the generate flow's second step: call the LLM once,
// persist the result and echo it back.
func (c *Controller) finishGenerate(ctx context.Context, ev Event) Reply {
	defer c.clearSession(ctx, ev.UserID)

	ingredients := splitIngredients(ev.Text)
	content, err := c.llm.GenerateRecipe(ctx, ingredients)
	if err != nil {
		log.Printf("Error generating recipe for user %d: %v", ev.UserID, err)
		return Reply{Text: llmFailureText(err, "generate a recipe")}
	}

	recipe := model.NewRecipe(ev.UserID, recipeNameFromContent(content), content, true)
	if err := c.storage.SaveRecipe(ctx, ev.UserID, recipe); err != nil {
		log.Printf("Error saving generated recipe for user %d: %v", ev.UserID, err)
		return Reply{Text: saveFailedMessage}
	}

	return Reply{Text: fmt.Sprintf("✅ Recipe generated and saved!\n\n%s", content)}
}

func (c *Controller) finishAdd(ctx context.Context, ev Event, name string) Reply {
	defer c.clearSession(ctx, ev.UserID)

	recipe := model.NewRecipe(ev.UserID, name, ev.Text, false)
	if err := c.storage.SaveRecipe(ctx, ev.UserID, recipe); err != nil {
		log.Printf("Error saving recipe for user %d: %v", ev.UserID, err)
		return Reply{Text: saveFailedMessage}
	}

	return Reply{Text: fmt.Sprintf("✅ Recipe '%s' has been saved successfully!", recipe.Name)}
}

func (c *Controller) finishManualEdit(ctx context.Context, ev Event, recipeID string) Reply {
	defer c.clearSession(ctx, ev.UserID)

	recipe, _ := c.storage.GetRecipe(ctx, ev.UserID, recipeID)
	if recipe == nil {
		return Reply{Text: notFoundMessage}
	}

	recipe.UpdateContent(ev.Text)
	if err := c.storage.UpdateRecipe(ctx, ev.UserID, recipeID, recipe); err != nil {
		log.Printf("Error updating recipe %s for user %d: %v", recipeID, ev.UserID, err)
		return Reply{Text: saveFailedMessage}
	}

	return Reply{Text: fmt.Sprintf("✅ Recipe '%s' has been updated!", recipe.Name)}
}

func (c *Controller) handleCallback(ctx context.Context, ev Event) Reply {
	data := ev.Callback
	switch {
	case data == "list":
		recipes, _ := c.storage.GetRecipes(ctx, ev.UserID)
		return listReply(recipes, true)
	case strings.HasPrefix(data, "view_"):
		return c.handleView(ctx, ev, strings.TrimPrefix(data, "view_"))
	case strings.HasPrefix(data, "edit_"):
		recipeID := strings.TrimPrefix(data, "edit_")
		c.putSession(ctx, ev.UserID, &Session{EditingRecipeID: recipeID})
		return editMenuReply(recipeID)
	case strings.HasPrefix(data, "manual_edit_"):
		recipeID := strings.TrimPrefix(data, "manual_edit_")
		c.putSession(ctx, ev.UserID, &Session{State: StateWaitingRecipeUpdate, EditingRecipeID: recipeID})
		return Reply{Text: manualEditPromptMessage, Edit: true}
	case strings.HasPrefix(data, "ai_verify_"):
		return c.handleVerify(ctx, ev, strings.TrimPrefix(data, "ai_verify_"))
	case strings.HasPrefix(data, "delete_"):
		return c.handleDelete(ctx, ev, strings.TrimPrefix(data, "delete_"))
	default:
		return Reply{}
	}
}

func (c *Controller) handleView(ctx context.Context, ev Event, recipeID string) Reply {
	recipe, _ := c.storage.GetRecipe(ctx, ev.UserID, recipeID)
	if recipe == nil {
		return Reply{
			Text:    notFoundMessage,
			Buttons: [][]Button{{{Text: "« Back to List", Data: "list"}}},
			Edit:    true,
		}
	}
	return viewReply(recipe)
}

// handleVerify runs the AI-verify flow: one LLM call, then an in-place
// overwrite of the recipe. On any failure the stored recipe is untouched.
func (c *Controller) handleVerify(ctx context.Context, ev Event, recipeID string) Reply {
	defer c.clearSession(ctx, ev.UserID)

	recipe, _ := c.storage.GetRecipe(ctx, ev.UserID, recipeID)
	if recipe == nil {
		return Reply{Text: notFoundMessage, Edit: true}
	}

	improved, err := c.llm.VerifyRecipe(ctx, recipe.Content)
	if err != nil {
		log.Printf("Error during recipe verification for user %d: %v", ev.UserID, err)
		return Reply{Text: llmFailureText(err, "verify the recipe"), Edit: true}
	}

	recipe.UpdateContent(improved)
	recipe.IsAIGenerated = true
	if err := c.storage.UpdateRecipe(ctx, ev.UserID, recipeID, recipe); err != nil {
		log.Printf("Error saving verified recipe %s for user %d: %v", recipeID, ev.UserID, err)
		return Reply{Text: saveFailedMessage, Edit: true}
	}

	return verifiedReply(recipe)
}

func (c *Controller) handleDelete(ctx context.Context, ev Event, recipeID string) Reply {
	if err := c.storage.DeleteRecipe(ctx, ev.UserID, recipeID); err != nil {
		log.Printf("Error deleting recipe %s for user %d: %v", recipeID, ev.UserID, err)
		return Reply{Text: saveFailedMessage, Edit: true}
	}

	recipes, _ := c.storage.GetRecipes(ctx, ev.UserID)
	reply := listReply(recipes, true)
	reply.Text = "🗑 Recipe deleted successfully!\n\n" + reply.Text
	return reply
}

func (c *Controller) handleExport(ctx context.Context, ev Event) Reply {
	if c.exporter == nil {
		return Reply{Text: "Export is not configured."}
	}
	url, err := c.exporter.ExportRecipes(ctx, ev.UserID)
	if err != nil {
		log.Printf("Error exporting recipes for user %d: %v", ev.UserID, err)
		return Reply{Text: "❌ Sorry, I couldn't export your recipes. Please try again later."}
	}
	return Reply{Text: fmt.Sprintf("📦 Your recipes are ready! Download them here (link valid for 24 hours):\n%s", url)}
}

func (c *Controller) putSession(ctx context.Context, userID int64, session *Session) {
	if err := c.sessions.Put(ctx, userID, session); err != nil {
		log.Printf("Failed to store session for user %d: %v", userID, err)
	}
}

func (c *Controller) clearSession(ctx context.Context, userID int64) {
	if err := c.sessions.Clear(ctx, userID); err != nil {
		log.Printf("Failed to clear session for user %d: %v", userID, err)
	}
}

func splitIngredients(text string) []string {
	parts := strings.Split(text, ",")
	ingredients := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ingredients = append(ingredients, trimmed)
		}
	}
	return ingredients
}

// recipeNameFromContent takes the first non-empty line as the title.
func recipeNameFromContent(content string) string {
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		if trimmed := strings.TrimSpace(strings.Trim(line, "#* ")); trimmed != "" {
			return trimmed
		}
	}
	return "Generated Recipe"
}

// llmFailureText renders an LLM failure for the end user by category.
func llmFailureText(err error, action string) string {
	var llmErr *service.LLMError
	if errors.As(err, &llmErr) {
		switch llmErr.Kind {
		case service.LLMErrInvalidCredential:
			return "Error: Invalid OpenAI API key. Please check your API key."
		case service.LLMErrRateLimited:
			return "Error: Rate limit exceeded. Please try again in a few moments."
		}
	}
	return fmt.Sprintf("Sorry, I couldn't %s at this time. Please try again later.", action)
}
