// Package server: HTTP-часть бота, приём апдейтов через webhook и проверка
// состояния.
package server

import (
	"FolderVaultBot/internal/logging"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const DefaultWebhookPath = "/webhook"

// UpdateParser разбирает апдейт из запроса webhook. *tgbotapi.BotAPI подходит.
type UpdateParser interface {
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// StatsSource отдаёт счётчики для /healthz.
type StatsSource interface {
	GetStats() map[string]interface{}
}

// NewRouter собирает gin-роутер: POST webhookPath принимает апдейты и
// отдаёт их в dispatch, GET /healthz показывает статистику сессий.
func NewRouter(webhookPath string, parser UpdateParser, dispatch func(tgbotapi.Update), stats StatsSource, log logging.Logger) *gin.Engine {
	if webhookPath == "" {
		webhookPath = DefaultWebhookPath
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.POST(webhookPath, func(c *gin.Context) {
		update, err := parser.HandleUpdate(c.Request)
		if err != nil {
			log.Warn(c.Request.Context(), "bad webhook payload", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad update"})
			return
		}
		dispatch(*update)
		c.Status(http.StatusOK)
	})

	r.GET("/healthz", func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if stats != nil {
			body["sessions"] = stats.GetStats()
		}
		c.JSON(http.StatusOK, body)
	})

	return r
}

func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

type Server struct {
	srv *http.Server
	log logging.Logger
}

func New(addr string, handler http.Handler, log logging.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start слушает порт в фоне. Ошибка запуска передаётся в errCh.
func (s *Server) Start(errCh chan<- error) {
	go func() {
		s.log.Info(context.Background(), "http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
