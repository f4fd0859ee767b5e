// docsketch reads a PDF (local path or URL), extracts a description, renders
// an image of it, and writes the image plus a provenance manifest.
//
// Usage:
//
//	docsketch [path-or-url]
//
// With no argument the reference is prompted for on stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/docsketch/internal/acquire"
	"github.com/joseph-ayodele/docsketch/internal/common"
	"github.com/joseph-ayodele/docsketch/internal/extract"
	"github.com/joseph-ayodele/docsketch/internal/genimage"
	"github.com/joseph-ayodele/docsketch/internal/manifest"
	"github.com/joseph-ayodele/docsketch/internal/pipeline"
	repo "github.com/joseph-ayodele/docsketch/internal/repository"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ref := ""
	if len(os.Args) > 1 {
		ref = os.Args[1]
	} else {
		fmt.Print("Enter a PDF file path or URL: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			logger.Error("read reference", "error", err)
			os.Exit(2)
		}
		ref = strings.TrimSpace(line)
	}
	if ref == "" {
		logger.Error("no PDF reference provided")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runs *repo.RunRepository
	if cfg.Database.DSN != "" {
		db, cleanup, err := repo.Open(ctx, repo.Config{DSN: cfg.Database.DSN, DialTimeout: cfg.Database.DialTimeout}, logger)
		if err != nil {
			logger.Error("open run store", "error", err)
			os.Exit(1)
		}
		defer cleanup()
		runs = repo.NewRunRepository(db, logger)
		if err := runs.Init(ctx); err != nil {
			logger.Error("init run store", "error", err)
			os.Exit(1)
		}
	}

	remotes, skipped := genimage.Chain(cfg.Providers, logger)
	p := &pipeline.Processor{
		Acquirer:  acquire.New(cfg.Acquire, logger),
		Extractor: extract.NewOrchestrator(extract.DefaultChain(cfg.Extract), cfg.Extract.MinUsefulLen, logger),
		Generator: genimage.NewOrchestrator(remotes, skipped, genimage.NewLocalProvider(), logger),
		Writer:    manifest.NewWriter(cfg.Output.Dir, logger),
		Runs:      runs,
		SizeHint:  cfg.Providers.SizeHint,
		Log:       logger,
	}

	res, err := p.Run(ctx, ref)
	if err != nil {
		var exhausted *extract.ExhaustedError
		var fatal *genimage.FatalError
		switch {
		case errors.As(err, &exhausted):
			logger.Error("no backend produced usable text; per-backend reasons follow")
			exhausted.Report.LogAttempts(logger)
		case errors.As(err, &fatal):
			logger.Error("image generation failed, local fallback included; per-provider reasons follow")
			fatal.Report.LogAttempts(logger)
		default:
			logger.Error("pipeline failed", "error", err)
		}
		os.Exit(1)
	}

	logger.Info("image generated",
		"run_id", res.RunID,
		"provider", res.Provider,
		"image", res.ImagePath,
		"manifest", res.ManifestPath,
		"degraded", res.Degraded,
	)
}
