package bot

import (
	"fmt"

	"github.com/forkful/recipebot/internal/model"
)

const welcomeMessage = `👨‍🍳 Welcome to Recipe Bot!

I can help you manage your recipes and generate new ones using AI.

Available commands:
/generate - Generate a recipe from ingredients
/add - Add your own recipe
/list - View all your saved recipes
/export - Download your recipes as a file
/help - Show this help message

Let's start cooking! 🍳`

const helpMessage = `📚 Recipe Bot Commands:

/generate - I'll ask you for ingredients and create a recipe
/add - Save your own recipe
/list - View all your saved recipes
/export - Download your recipes as a file
/help - Show this help message

When viewing recipes, you can:
- 👁 View full recipe
- ✏️ Edit recipe
- 🗑 Delete recipe

All measurements are in metric units! 📏`

const generatePromptMessage = "🥘 Let's create a recipe!\n\n" +
	"Please list the ingredients you have, separated by commas.\n" +
	"Example: chicken breast, tomatoes, garlic, olive oil, pasta"

const addNamePromptMessage = "📝 Let's save your recipe!\n\n" +
	"First, what's the name of your recipe?"

const addContentPromptMessage = "Great! Now please share your recipe.\n\n" +
	"Include ingredients (with metric measurements) and instructions.\n" +
	"You can format it however you like!"

const manualEditPromptMessage = "✏️ Please send the updated recipe content.\n" +
	"Send /cancel to cancel editing."

const editMenuMessage = "How would you like to edit this recipe?\n\n" +
	"✏️ Manual Edit - Write your own changes\n" +
	"🤖 AI Verify - Let AI check and improve the recipe"

const noRecipesMessage = "📭 You don't have any saved recipes yet.\n" +
	"Use /generate or /add to create your first recipe!"

const cancelledMessage = "Operation cancelled."

const notFoundMessage = "❌ Recipe not found."

const saveFailedMessage = "❌ Sorry, I couldn't save the recipe. Please try again later."

const unknownCommandMessage = "I don't know that command. Send /help to see what I can do."

// listReply renders the user's collection as an inline menu, one button per
// recipe with a provenance marker.
func listReply(recipes []*model.Recipe, edit bool) Reply {
	if len(recipes) == 0 {
		return Reply{Text: noRecipesMessage, Edit: edit}
	}

	buttons := make([][]Button, 0, len(recipes))
	for _, r := range recipes {
		marker := "👤"
		if r.IsAIGenerated {
			marker = "🤖"
		}
		buttons = append(buttons, []Button{{
			Text: fmt.Sprintf("%s %s", marker, r.Name),
			Data: "view_" + r.ID,
		}})
	}

	return Reply{
		Text:    fmt.Sprintf("📚 Your Recipes (%d total):\n\n🤖 = AI Generated | 👤 = Your Recipe", len(recipes)),
		Buttons: buttons,
		Edit:    edit,
	}
}

// viewReply renders a single recipe with its edit/delete menu.
func viewReply(recipe *model.Recipe) Reply {
	created := recipe.CreatedAt
	if len(created) > 10 {
		created = created[:10]
	}
	return Reply{
		Text: fmt.Sprintf("📖 %s\n\n%s\n\nCreated: %s", recipe.Name, recipe.Content, created),
		Buttons: [][]Button{
			{
				{Text: "✏️ Edit", Data: "edit_" + recipe.ID},
				{Text: "🗑 Delete", Data: "delete_" + recipe.ID},
			},
			{{Text: "« Back to List", Data: "list"}},
		},
		Edit: true,
	}
}

// editMenuReply offers manual editing or AI verification.
func editMenuReply(recipeID string) Reply {
	return Reply{
		Text: editMenuMessage,
		Buttons: [][]Button{
			{
				{Text: "✏️ Manual Edit", Data: "manual_edit_" + recipeID},
				{Text: "🤖 AI Verify", Data: "ai_verify_" + recipeID},
			},
			{{Text: "« Back", Data: "view_" + recipeID}},
		},
		Edit: true,
	}
}

// verifiedReply reports a successful AI verification.
func verifiedReply(recipe *model.Recipe) Reply {
	return Reply{
		Text: fmt.Sprintf("✅ Recipe '%s' has been verified and improved!\n\n%s", recipe.Name, recipe.Content),
		Buttons: [][]Button{
			{{Text: "« Back to Recipe", Data: "view_" + recipe.ID}},
			{{Text: "« Back to List", Data: "list"}},
		},
		Edit: true,
	}
}
