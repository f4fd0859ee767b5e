// exportruns writes the persisted run history to an XLSX workbook. It
// requires DB_URL to be set, since there is nothing to export without the
// run store.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/docsketch/internal/common"
	"github.com/joseph-ayodele/docsketch/internal/export"
	repo "github.com/joseph-ayodele/docsketch/internal/repository"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage: exportruns <output.xlsx>")
		os.Exit(2)
	}
	outPath := os.Args[1]

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		logger.Error("DB_URL must be set to export run history")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, cleanup, err := repo.Open(ctx, repo.Config{DSN: cfg.Database.DSN, DialTimeout: cfg.Database.DialTimeout}, logger)
	if err != nil {
		logger.Error("open run store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	runs := repo.NewRunRepository(db, logger)
	if err := runs.Init(ctx); err != nil {
		logger.Error("init run store", "error", err)
		os.Exit(1)
	}

	data, err := export.NewService(runs, logger).ExportRunsXLSX(ctx, 0)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		logger.Error("write workbook", "error", err)
		os.Exit(1)
	}

	logger.Info("run history exported", "path", outPath)
}
