// Package pipeline coordinates acquisition, the extraction chain,
// description selection, the generation chain, and output writing.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docsketch/constants"
	"github.com/joseph-ayodele/docsketch/internal/acquire"
	"github.com/joseph-ayodele/docsketch/internal/describe"
	"github.com/joseph-ayodele/docsketch/internal/extract"
	"github.com/joseph-ayodele/docsketch/internal/genimage"
	"github.com/joseph-ayodele/docsketch/internal/manifest"
	"github.com/joseph-ayodele/docsketch/internal/repository"
)

// Processor runs the whole document-to-image pipeline for one reference.
type Processor struct {
	Acquirer  *acquire.Acquirer
	Extractor *extract.Orchestrator
	Generator *genimage.Orchestrator
	Writer    *manifest.Writer
	Runs      *repository.RunRepository // nil disables persistence
	SizeHint  string
	Log       *slog.Logger
}

// Result is the outcome of a successful run, with both chain reports for
// display.
type Result struct {
	RunID          uuid.UUID
	Description    string
	Provider       string
	Degraded       bool
	ImagePath      string
	ManifestPath   string
	ExtractReport  *extract.Report
	GenerateReport *genimage.Report
}

// Run executes acquire → extract → describe → generate → write. Chain
// reports are persisted even on failure so operators can inspect past runs.
func (p *Processor) Run(ctx context.Context, ref string) (*Result, error) {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	runID := uuid.New()
	start := time.Now()
	log.Info("pipeline.run.start", "run_id", runID, "ref", ref)

	src, err := p.Acquirer.Acquire(ctx, ref)
	if err != nil {
		log.Error("pipeline.acquire.failed", "run_id", runID, "error", err)
		return nil, err
	}
	defer src.Cleanup()

	p.recordStart(ctx, runID, src.Descriptor, log)

	extractReport, err := p.Extractor.Resolve(ctx, src.Path)
	p.recordAttempts(ctx, runID, constants.StageExtract, extractAttemptRows(runID, extractReport), log)
	if err != nil {
		p.recordFinish(ctx, runID, constants.RunStatusFailed, "", "", "", false, log)
		return nil, err
	}

	desc := describe.Select(extractReport.Text)
	log.Info("pipeline.describe.ok", "run_id", runID, "chars", len(desc), "degraded", extractReport.Degraded)

	img, genReport, err := p.Generator.Resolve(ctx, desc, p.SizeHint)
	p.recordAttempts(ctx, runID, constants.StageGenerate, generateAttemptRows(runID, genReport), log)
	if err != nil {
		p.recordFinish(ctx, runID, constants.RunStatusFailed, desc, "", "", extractReport.Degraded, log)
		return nil, err
	}

	imagePath, manifestPath, err := p.Writer.Write(img, manifest.Manifest{
		RunID:       runID,
		Source:      src.Descriptor,
		Description: desc,
		Provider:    genReport.Provider,
		Degraded:    extractReport.Degraded,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		p.recordFinish(ctx, runID, constants.RunStatusFailed, desc, genReport.Provider, "", extractReport.Degraded, log)
		return nil, err
	}

	p.recordFinish(ctx, runID, constants.RunStatusSucceeded, desc, genReport.Provider, imagePath, extractReport.Degraded, log)
	log.Info("pipeline.run.ok",
		"run_id", runID,
		"provider", genReport.Provider,
		"image", imagePath,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Result{
		RunID:          runID,
		Description:    desc,
		Provider:       genReport.Provider,
		Degraded:       extractReport.Degraded,
		ImagePath:      imagePath,
		ManifestPath:   manifestPath,
		ExtractReport:  extractReport,
		GenerateReport: genReport,
	}, nil
}

// Persistence is best-effort: a broken run store must not fail the run.

func (p *Processor) recordStart(ctx context.Context, runID uuid.UUID, source string, log *slog.Logger) {
	if p.Runs == nil {
		return
	}
	if err := p.Runs.Start(ctx, runID, source); err != nil {
		log.Warn("pipeline.record.start_failed", "run_id", runID, "error", err)
	}
}

func (p *Processor) recordAttempts(ctx context.Context, runID uuid.UUID, stage string, rows []repository.AttemptRow, log *slog.Logger) {
	if p.Runs == nil || len(rows) == 0 {
		return
	}
	if err := p.Runs.AddAttempts(ctx, rows); err != nil {
		log.Warn("pipeline.record.attempts_failed", "run_id", runID, "stage", stage, "error", err)
	}
}

func (p *Processor) recordFinish(ctx context.Context, runID uuid.UUID, status constants.RunStatus, desc, provider, imagePath string, degraded bool, log *slog.Logger) {
	if p.Runs == nil {
		return
	}
	if err := p.Runs.Finish(ctx, runID, status, desc, provider, imagePath, degraded); err != nil {
		log.Warn("pipeline.record.finish_failed", "run_id", runID, "error", err)
	}
}

func extractAttemptRows(runID uuid.UUID, r *extract.Report) []repository.AttemptRow {
	var rows []repository.AttemptRow
	for i, a := range r.Attempts {
		rows = append(rows, repository.AttemptRow{
			RunID:      runID,
			Stage:      constants.StageExtract,
			Position:   i,
			Name:       a.Backend,
			Status:     a.Status,
			Detail:     a.Detail,
			DurationMS: a.Duration.Milliseconds(),
		})
	}
	for j, s := range r.Skipped {
		rows = append(rows, repository.AttemptRow{
			RunID:    runID,
			Stage:    constants.StageExtract,
			Position: len(r.Attempts) + j,
			Name:     s.Backend,
			Status:   constants.AttemptStatusSkipped,
			Detail:   s.Reason,
		})
	}
	return rows
}

func generateAttemptRows(runID uuid.UUID, r *genimage.Report) []repository.AttemptRow {
	var rows []repository.AttemptRow
	for i, a := range r.Attempts {
		rows = append(rows, repository.AttemptRow{
			RunID:      runID,
			Stage:      constants.StageGenerate,
			Position:   i,
			Name:       a.Provider,
			Status:     a.Status,
			Detail:     a.Detail,
			DurationMS: a.Duration.Milliseconds(),
		})
	}
	for j, s := range r.Skipped {
		rows = append(rows, repository.AttemptRow{
			RunID:    runID,
			Stage:    constants.StageGenerate,
			Position: len(r.Attempts) + j,
			Name:     s.Provider,
			Status:   constants.AttemptStatusSkipped,
			Detail:   s.Reason,
		})
	}
	return rows
}
