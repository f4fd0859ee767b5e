// runextract runs the text extraction chain against a single PDF and prints
// the selected description, without generating an image. Useful for checking
// which backend a document resolves to.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/docsketch/internal/acquire"
	"github.com/joseph-ayodele/docsketch/internal/common"
	"github.com/joseph-ayodele/docsketch/internal/describe"
	"github.com/joseph-ayodele/docsketch/internal/extract"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: runextract <pdf path or url>")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := acquire.New(cfg.Acquire, logger).Acquire(ctx, os.Args[1])
	if err != nil {
		logger.Error("acquire failed", "error", err)
		os.Exit(1)
	}
	defer src.Cleanup()

	orch := extract.NewOrchestrator(extract.DefaultChain(cfg.Extract), cfg.Extract.MinUsefulLen, logger)
	report, err := orch.Resolve(ctx, src.Path)
	if err != nil {
		var exhausted *extract.ExhaustedError
		if errors.As(err, &exhausted) {
			exhausted.Report.LogAttempts(logger)
		}
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	logger.Info("extraction resolved",
		"backend", report.Backend,
		"chars", len(report.Text),
		"degraded", report.Degraded,
	)
	fmt.Println(describe.Select(report.Text))
}
