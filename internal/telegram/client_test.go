package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/recipebot/internal/bot"
)

type apiCall struct {
	method  string
	payload map[string]interface{}
}

// newFakeBotAPI records every Bot API call and answers with the given body.
func newFakeBotAPI(t *testing.T, response string) (*Client, *[]apiCall) {
	t.Helper()
	calls := &[]apiCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		// Path looks like /bot<token>/<method>.
		method := r.URL.Path[len("/bottest-token/"):]
		*calls = append(*calls, apiCall{method: method, payload: payload})

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return NewClientWithBaseURL("test-token", srv.URL), calls
}

func TestClient_SendMessage(t *testing.T) {
	client, calls := newFakeBotAPI(t, `{"ok":true}`)

	err := client.SendMessage(context.Background(), 42, "hello", nil)
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "sendMessage", call.method)
	assert.Equal(t, float64(42), call.payload["chat_id"])
	assert.Equal(t, "hello", call.payload["text"])
	assert.NotContains(t, call.payload, "reply_markup")
}

func TestClient_SendMessageWithKeyboard(t *testing.T) {
	client, calls := newFakeBotAPI(t, `{"ok":true}`)

	buttons := [][]bot.Button{
		{{Text: "👁 View", Data: "view_recipe_1_1"}},
		{{Text: "« Back", Data: "list"}},
	}
	require.NoError(t, client.SendMessage(context.Background(), 42, "menu", buttons))

	call := (*calls)[0]
	markup, ok := call.payload["reply_markup"].(map[string]interface{})
	require.True(t, ok)
	rows, ok := markup["inline_keyboard"].([]interface{})
	require.True(t, ok)
	require.Len(t, rows, 2)
	first := rows[0].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "👁 View", first["text"])
	assert.Equal(t, "view_recipe_1_1", first["callback_data"])
}

func TestClient_DeliverEditsMenuMessage(t *testing.T) {
	client, calls := newFakeBotAPI(t, `{"ok":true}`)

	ev := bot.Event{ChatID: 42, MessageID: 55}
	reply := bot.Reply{Text: "updated", Edit: true}
	require.NoError(t, client.Deliver(context.Background(), ev, reply))

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "editMessageText", call.method)
	assert.Equal(t, float64(55), call.payload["message_id"])
}

func TestClient_DeliverFallsBackToSendWithoutMessageID(t *testing.T) {
	client, calls := newFakeBotAPI(t, `{"ok":true}`)

	ev := bot.Event{ChatID: 42}
	reply := bot.Reply{Text: "updated", Edit: true}
	require.NoError(t, client.Deliver(context.Background(), ev, reply))

	require.Len(t, *calls, 1)
	assert.Equal(t, "sendMessage", (*calls)[0].method)
}

func TestClient_DeliverSkipsEmptyReply(t *testing.T) {
	client, calls := newFakeBotAPI(t, `{"ok":true}`)

	require.NoError(t, client.Deliver(context.Background(), bot.Event{ChatID: 42}, bot.Reply{}))
	assert.Empty(t, *calls)
}

func TestClient_AnswerCallbackQuery(t *testing.T) {
	client, calls := newFakeBotAPI(t, `{"ok":true}`)

	require.NoError(t, client.AnswerCallbackQuery(context.Background(), "cb123"))

	call := (*calls)[0]
	assert.Equal(t, "answerCallbackQuery", call.method)
	assert.Equal(t, "cb123", call.payload["callback_query_id"])
}

func TestClient_SetWebhook(t *testing.T) {
	client, calls := newFakeBotAPI(t, `{"ok":true}`)

	require.NoError(t, client.SetWebhook(context.Background(), "https://bot.example.com/webhook", "s3cret"))

	call := (*calls)[0]
	assert.Equal(t, "setWebhook", call.method)
	assert.Equal(t, "https://bot.example.com/webhook", call.payload["url"])
	assert.Equal(t, "s3cret", call.payload["secret_token"])
}

func TestClient_SetWebhookWithoutSecret(t *testing.T) {
	client, calls := newFakeBotAPI(t, `{"ok":true}`)

	require.NoError(t, client.SetWebhook(context.Background(), "https://bot.example.com/webhook", ""))
	assert.NotContains(t, (*calls)[0].payload, "secret_token")
}

func TestClient_APIErrorSurfaced(t *testing.T) {
	client, _ := newFakeBotAPI(t, `{"ok":false,"description":"Bad Request: chat not found"}`)

	err := client.SendMessage(context.Background(), 42, "hello", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}
