package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forkful/recipebot/config"
	"github.com/forkful/recipebot/internal/bot"
	"github.com/forkful/recipebot/internal/middleware"
	"github.com/forkful/recipebot/internal/telegram"
)

// Sender delivers controller replies back to the chat platform.
type Sender interface {
	Deliver(ctx context.Context, ev bot.Event, reply bot.Reply) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error
}

// Server is the HTTP entrypoint: it receives webhook deliveries, hands them
// to the conversation controller and forwards the reply.
type Server struct {
	router     *gin.Engine
	http       *http.Server
	controller *bot.Controller
	sender     Sender
}

// NewServer creates a new server instance
func NewServer(controller *bot.Controller, sender Sender, webhookSecret string) *Server {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	s := &Server{
		router:     router,
		controller: controller,
		sender:     sender,
	}

	router.GET("/health", s.Health)
	router.POST("/webhook", middleware.WebhookAuth(webhookSecret), s.Webhook)

	return s
}

// Health reports liveness for deploy checks.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Webhook handles one Telegram update. It always answers 200 once the
// payload parses; delivery failures are logged, not returned, so Telegram
// does not redeliver an update we already acted on.
func (s *Server) Webhook(c *gin.Context) {
	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, ok := update.Event()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	ctx := c.Request.Context()
	if update.CallbackQuery != nil {
		if err := s.sender.AnswerCallbackQuery(ctx, update.CallbackQuery.ID); err != nil {
			log.Printf("Failed to answer callback query: %v", err)
		}
	}

	reply := s.controller.Handle(ctx, ev)
	if err := s.sender.Deliver(ctx, ev, reply); err != nil {
		log.Printf("Failed to deliver reply to chat %d: %v", ev.ChatID, err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Start starts the server
func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
