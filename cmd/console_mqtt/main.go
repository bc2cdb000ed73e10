package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/relabs-tech/sample_relay/internal/app"
	"github.com/relabs-tech/sample_relay/internal/config"
	"github.com/relabs-tech/sample_relay/internal/logger"
)

func main() {
	configPath := flag.String("config", "relay_config.txt", "path to config file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	zl, err := logger.NewLogger(cfg.LogLevel, "")
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zl.Info("starting sample relay console (MQTT subscriber)")
	if err := app.RunConsoleMQTT(ctx, cfg, zl); err != nil {
		zl.Fatal("fatal", zap.Error(err))
	}
}
