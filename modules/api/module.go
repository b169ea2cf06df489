package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/realtime-chat-engine/modules/chat"
	"github.com/example/realtime-chat-engine/modules/stats"
	"github.com/example/realtime-chat-engine/modules/wsserver"
)

// ClientCounter reports the number of live WebSocket clients.
type ClientCounter interface {
	ClientCount() int
}

// Options configures the HTTP server.
type Options struct {
	Port           string
	AllowedOrigins string
}

// APIModule serves the WebSocket endpoint and the REST query surface.
type APIModule struct {
	app     *fiber.App
	opts    Options
	chat    chat.ChatPort
	stats   stats.StatsPort
	ws      *wsserver.Handlers
	clients ClientCounter
	logger  types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(opts Options, ws *wsserver.Handlers, clients ClientCounter, logger types.Logger) *APIModule {
	if opts.Port == "" {
		opts.Port = "3000"
	}
	return &APIModule{
		opts:    opts,
		ws:      ws,
		clients: clients,
		logger:  logger.WithModule("api"),
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"chat", "stats"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "chat":
		m.chat = chat.NewChatAdapter(container)
	case "stats":
		m.stats = stats.NewStatsAdapter(container)
	}
}

// Start builds the Fiber app and begins listening.
func (m *APIModule) Start(_ context.Context) error {
	if m.chat == nil {
		return fmt.Errorf("chat adapter dependency not set")
	}
	if m.stats == nil {
		return fmt.Errorf("stats adapter dependency not set")
	}
	if m.ws == nil {
		return fmt.Errorf("websocket handlers not set")
	}

	m.app = m.newApp()
	addr := ":" + m.opts.Port

	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

// Health returns the health status.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":              m.opts.Port,
			"connected_clients": m.clientCount(),
		},
	}
}

func (m *APIModule) clientCount() int {
	if m.clients == nil {
		return 0
	}
	return m.clients.ClientCount()
}

func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Realtime Chat Engine",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(m.loggerMiddleware())
	if m.opts.AllowedOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: m.opts.AllowedOrigins,
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Content-Type,Authorization",
		}))
	}

	m.setupRoutes(app)
	return app
}

func (m *APIModule) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}
	if code >= fiber.StatusInternalServerError {
		m.logger.Error("HTTP error", "code", code, "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

// loggerMiddleware logs each HTTP request. WebSocket sessions log their own
// lifecycle.
func (m *APIModule) loggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderUpgrade) == "websocket" {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		m.logger.Info("HTTP request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start).String(),
		)
		return err
	}
}
