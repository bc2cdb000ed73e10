package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"go.uber.org/zap"

	"github.com/relabs-tech/sample_relay/internal/config"
)

func TestRunRelayRequiresNotifier(t *testing.T) {
	cfg := config.Default()
	if err := RunRelay(context.Background(), cfg, zap.NewNop()); !errors.Is(err, ErrNoNotifier) {
		t.Fatalf("RunRelay() error = %v, want ErrNoNotifier", err)
	}
}

func TestRunMockConsoleWithoutNotifier(t *testing.T) {
	cfg := config.Default()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := RunMockConsole(ctx, cfg, io.Discard, zap.NewNop()); err != nil {
		t.Fatalf("RunMockConsole() error = %v", err)
	}
}
