// Package telegram is the thin transport adapter for the Telegram Bot API:
// it decodes webhook updates into bot events and delivers replies.
package telegram

import (
	"github.com/forkful/recipebot/internal/bot"
)

// Update is the subset of a Telegram webhook update the bot consumes.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

// Message is an inbound text message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      *Chat  `json:"chat"`
	Text      string `json:"text"`
}

// CallbackQuery is a button press on an inline keyboard.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from"`
	Message *Message `json:"message"`
	Data    string   `json:"data"`
}

// User identifies the sender.
type User struct {
	ID int64 `json:"id"`
}

// Chat identifies where replies go.
type Chat struct {
	ID int64 `json:"id"`
}

// Event converts the update into a transport-neutral bot event. The second
// return value is false for update kinds the bot does not handle.
func (u *Update) Event() (bot.Event, bool) {
	switch {
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil:
		ev := bot.Event{
			UserID:   u.CallbackQuery.From.ID,
			Callback: u.CallbackQuery.Data,
		}
		if m := u.CallbackQuery.Message; m != nil {
			ev.MessageID = m.MessageID
			if m.Chat != nil {
				ev.ChatID = m.Chat.ID
			}
		}
		return ev, true
	case u.Message != nil && u.Message.From != nil && u.Message.Text != "":
		ev := bot.Event{
			UserID: u.Message.From.ID,
			Text:   u.Message.Text,
		}
		if u.Message.Chat != nil {
			ev.ChatID = u.Message.Chat.ID
		}
		return ev, true
	default:
		return bot.Event{}, false
	}
}
