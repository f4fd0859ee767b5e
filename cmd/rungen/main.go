// rungen renders an image for a prompt given on the command line, using the
// configured provider chain. It skips document handling entirely, which makes
// it a quick way to verify provider credentials and the local fallback.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/docsketch/internal/common"
	"github.com/joseph-ayodele/docsketch/internal/genimage"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: rungen <prompt>")
		os.Exit(2)
	}
	prompt := strings.Join(os.Args[1:], " ")

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	remotes, skipped := genimage.Chain(cfg.Providers, logger)
	orch := genimage.NewOrchestrator(remotes, skipped, genimage.NewLocalProvider(), logger)

	img, report, err := orch.Resolve(ctx, prompt, cfg.Providers.SizeHint)
	if err != nil {
		var fatal *genimage.FatalError
		if errors.As(err, &fatal) {
			fatal.Report.LogAttempts(logger)
		}
		logger.Error("generation failed", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		logger.Error("create output dir", "error", err)
		os.Exit(1)
	}
	out := filepath.Join(cfg.Output.Dir, "generated_image.png")
	if err := os.WriteFile(out, img, 0o644); err != nil {
		logger.Error("write image", "error", err)
		os.Exit(1)
	}

	logger.Info("image generated", "provider", report.Provider, "path", out)
}
