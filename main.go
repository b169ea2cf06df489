package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/realtime-chat-engine/config"
	"github.com/example/realtime-chat-engine/modules/api"
	"github.com/example/realtime-chat-engine/modules/broadcast"
	"github.com/example/realtime-chat-engine/modules/chat"
	"github.com/example/realtime-chat-engine/modules/stats"
	"github.com/example/realtime-chat-engine/modules/wsserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logLevel := mono.LogLevelInfo
	if cfg.LogLevel == "error" {
		logLevel = mono.LogLevelError
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// The hub is both the coordinator's transport and the writer behind every
	// WebSocket session, so it is shared directly rather than through a
	// service container.
	broadcastModule := broadcast.NewModule(cfg.SendBuffer, logger)
	hub := broadcastModule.Hub()

	chatModule := chat.NewModule(chat.Options{
		Rooms:         cfg.Rooms,
		HistorySize:   cfg.HistorySize,
		PageSize:      cfg.PageSize,
		TypingTimeout: cfg.TypingTimeout,
	}, hub, logger)
	statsModule := stats.NewModule(logger)

	sessions := wsserver.NewHandlers(chatModule.Coordinator(), hub, wsserver.Limits{
		EventsPerSecond: cfg.EventsPerSecond,
		Burst:           cfg.EventBurst,
	}, logger.WithModule("wsserver"))
	apiModule := api.NewModule(api.Options{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
	}, sessions, hub, logger)

	// Independent modules first, then api which depends on chat and stats.
	for _, m := range []mono.Module{broadcastModule, chatModule, statsModule, apiModule} {
		if err := app.Register(m); err != nil {
			log.Fatalf("Failed to register %s module: %v", m.Name(), err)
		}
	}

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	logger.Info("Realtime chat engine started",
		"port", cfg.Port,
		"rooms", cfg.Rooms,
		"websocket", "ws://localhost:"+cfg.Port+"/ws",
	)
	logger.Info("REST endpoints",
		"routes", []string{
			"GET /health",
			"GET /api/rooms",
			"POST /api/rooms",
			"GET /api/messages/:room?page=&limit=",
			"GET /api/users/:room",
			"GET /api/search?q=&room=",
			"GET /api/stats",
		})
	logger.Info("Press Ctrl+C to shutdown gracefully")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				logger.Info("Graceful shutdown initiated")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}
