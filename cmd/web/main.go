package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"queridoc-web/internal/bootstrap"
	"queridoc-web/internal/config"
	"queridoc-web/internal/server"
	"queridoc-web/internal/tracer"

	"github.com/fatih/color"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Tracing (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(context.Background(), cfg.Telemetry)
	defer shutdownTracer(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.Close()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	color.Cyan("📄 QueriDoc web client (%s)", cfg.App.Environment)
	color.Yellow("   backend:  %s", cfg.Backend.BaseURL)
	color.Yellow("   sessions: %s", cfg.Session.Backend)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		color.Red("Shutting down...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("[WARN] Shutdown error: %v", err)
		}
	}()

	// 5. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("[ERROR] Server stopped: %v", err)
	}
}
