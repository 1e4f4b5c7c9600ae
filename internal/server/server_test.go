package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/recipebot/internal/bot"
	"github.com/forkful/recipebot/internal/model"
)

type noopStorage struct{}

func (noopStorage) Initialize(ctx context.Context) error { return nil }
func (noopStorage) Close(ctx context.Context) error      { return nil }
func (noopStorage) SaveRecipe(ctx context.Context, userID int64, recipe *model.Recipe) error {
	return nil
}
func (noopStorage) GetRecipes(ctx context.Context, userID int64) ([]*model.Recipe, error) {
	return nil, nil
}
func (noopStorage) GetRecipe(ctx context.Context, userID int64, recipeID string) (*model.Recipe, error) {
	return nil, nil
}
func (noopStorage) UpdateRecipe(ctx context.Context, userID int64, recipeID string, recipe *model.Recipe) error {
	return nil
}
func (noopStorage) DeleteRecipe(ctx context.Context, userID int64, recipeID string) error {
	return nil
}

type noopLLM struct{}

func (noopLLM) GenerateRecipe(ctx context.Context, ingredients []string) (string, error) {
	return "", nil
}
func (noopLLM) VerifyRecipe(ctx context.Context, content string) (string, error) { return "", nil }

// recordingSender captures outbound deliveries instead of calling Telegram.
type recordingSender struct {
	delivered []bot.Reply
	answered  []string
}

func (s *recordingSender) Deliver(ctx context.Context, ev bot.Event, reply bot.Reply) error {
	s.delivered = append(s.delivered, reply)
	return nil
}

func (s *recordingSender) AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error {
	s.answered = append(s.answered, callbackQueryID)
	return nil
}

func newTestServer(t *testing.T, secret string) (*Server, *recordingSender) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := bot.NewMemorySessionStore(bot.DefaultSessionTTL)
	t.Cleanup(sessions.Close)
	controller := bot.NewController(noopStorage{}, noopLLM{}, sessions, nil)
	sender := &recordingSender{}
	return NewServer(controller, sender, secret), sender
}

func post(t *testing.T, srv *Server, body, secret string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secret)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestServer_WebhookDeliversReply(t *testing.T) {
	srv, sender := newTestServer(t, "")

	body := `{"update_id":1,"message":{"message_id":5,"from":{"id":42},"chat":{"id":42},"text":"/start"}}`
	w := post(t, srv, body, "")

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, sender.delivered, 1)
	assert.Contains(t, sender.delivered[0].Text, "Welcome to Recipe Bot")
	assert.Empty(t, sender.answered)
}

func TestServer_WebhookAnswersCallbackQuery(t *testing.T) {
	srv, sender := newTestServer(t, "")

	body := `{"update_id":2,"callback_query":{"id":"cb7","from":{"id":42},"message":{"message_id":5,"chat":{"id":42}},"data":"list"}}`
	w := post(t, srv, body, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"cb7"}, sender.answered)
	require.Len(t, sender.delivered, 1)
	assert.True(t, sender.delivered[0].Edit)
}

func TestServer_WebhookIgnoresUnhandledUpdates(t *testing.T) {
	srv, sender := newTestServer(t, "")

	w := post(t, srv, `{"update_id":3}`, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ignored"}`, w.Body.String())
	assert.Empty(t, sender.delivered)
}

func TestServer_WebhookRejectsBadJSON(t *testing.T) {
	srv, sender := newTestServer(t, "")

	w := post(t, srv, `{not json`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, sender.delivered)
}

func TestServer_WebhookRequiresSecret(t *testing.T) {
	srv, sender := newTestServer(t, "s3cret")
	body := `{"update_id":1,"message":{"message_id":5,"from":{"id":42},"chat":{"id":42},"text":"/start"}}`

	w := post(t, srv, body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, sender.delivered)

	w = post(t, srv, body, "s3cret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, sender.delivered, 1)
}
