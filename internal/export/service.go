// Package export produces XLSX workbooks from recorded run history.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docsketch/internal/repository"
)

// Service is a tiny façade over the run repository that produces XLSX bytes.
type Service struct {
	runs   *repository.RunRepository
	logger *slog.Logger
}

func NewService(runs *repository.RunRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{runs: runs, logger: logger}
}

// ExportRunsXLSX returns a workbook with a Runs sheet and an Attempts sheet
// covering the most recent limit runs.
func (s *Service) ExportRunsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	runs, err := s.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	f := excelize.NewFile()
	const runsSheet = "Runs"
	const attemptsSheet = "Attempts"

	idx, err := f.NewSheet(runsSheet)
	if err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(attemptsSheet); err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	write := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	runHeaders := []string{"Run ID", "Started", "Finished", "Source", "Status", "Provider", "Image Path", "Degraded", "Description"}
	for i, h := range runHeaders {
		write(runsSheet, i+1, 1, h)
	}
	attemptHeaders := []string{"Run ID", "Stage", "Order", "Name", "Status", "Detail", "Duration (ms)"}
	for i, h := range attemptHeaders {
		write(attemptsSheet, i+1, 1, h)
	}

	runRow := 2
	attemptRow := 2
	for _, r := range runs {
		write(runsSheet, 1, runRow, r.ID.String())
		write(runsSheet, 2, runRow, r.StartedAt.UTC().Format(time.RFC3339))
		if r.FinishedAt != nil {
			write(runsSheet, 3, runRow, r.FinishedAt.UTC().Format(time.RFC3339))
		} else {
			write(runsSheet, 3, runRow, "")
		}
		write(runsSheet, 4, runRow, r.Source)
		write(runsSheet, 5, runRow, string(r.Status))
		write(runsSheet, 6, runRow, r.Provider)
		write(runsSheet, 7, runRow, r.ImagePath)
		write(runsSheet, 8, runRow, r.Degraded)
		write(runsSheet, 9, runRow, r.Description)
		runRow++

		attempts, err := s.runs.ListAttempts(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("query attempts for %s: %w", r.ID, err)
		}
		for _, a := range attempts {
			write(attemptsSheet, 1, attemptRow, a.RunID.String())
			write(attemptsSheet, 2, attemptRow, a.Stage)
			write(attemptsSheet, 3, attemptRow, a.Position+1)
			write(attemptsSheet, 4, attemptRow, a.Name)
			write(attemptsSheet, 5, attemptRow, string(a.Status))
			write(attemptsSheet, 6, attemptRow, a.Detail)
			write(attemptsSheet, 7, attemptRow, a.DurationMS)
			attemptRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	s.logger.Info("export.runs.ok",
		"runs", len(runs),
		"bytes", buf.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
