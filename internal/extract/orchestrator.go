package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/docsketch/constants"
	"github.com/joseph-ayodele/docsketch/internal/common"
)

// Orchestrator drives the backend chain strictly in priority order and
// aggregates every outcome into a Report.
type Orchestrator struct {
	backends  []Backend
	minUseful int
	log       *slog.Logger
}

func NewOrchestrator(backends []Backend, minUseful int, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	if minUseful < 1 {
		minUseful = 1
	}
	return &Orchestrator{backends: backends, minUseful: minUseful, log: log}
}

// DefaultChain builds the four standard backends in priority order: cheap
// pure-Go parsing first, OCR last so the engine is only required when the
// text layer is missing.
func DefaultChain(cfg common.ExtractConfig) []Backend {
	runner := execRunner{}
	return []Backend{
		NewPDFCPUBackend(cfg.MaxPages),
		NewPopplerBackend(cfg.Pdftotext, runner),
		NewFitzBackend(cfg.MaxPages),
		NewOCRBackend(cfg, runner),
	}
}

// Resolve tries each backend in order until one yields text whose trimmed
// rune count reaches the usefulness threshold. Below-threshold non-empty
// results are kept as degraded candidates (longest wins, earliest on tie)
// and used only if nothing clears the bar. Zero non-empty text across the
// chain yields an *ExhaustedError carrying the report.
func (o *Orchestrator) Resolve(ctx context.Context, path string) (*Report, error) {
	report := &Report{}
	var bestText, bestBackend string

	for _, b := range o.backends {
		start := time.Now()
		text, err := o.attempt(ctx, b, path)
		dur := time.Since(start)

		if errors.Is(err, ErrUnavailable) {
			report.Skipped = append(report.Skipped, Skip{Backend: b.Name(), Reason: err.Error()})
			o.log.Info("extract.backend.skipped", "backend", b.Name(), "reason", err.Error())
			continue
		}
		if err != nil {
			report.Attempts = append(report.Attempts, Attempt{
				Backend:  b.Name(),
				Status:   constants.AttemptStatusFailure,
				Detail:   err.Error(),
				Duration: dur,
			})
			o.log.Warn("extract.backend.failed", "backend", b.Name(), "error", err, "duration_ms", dur.Milliseconds())
			continue
		}

		trimmed := strings.TrimSpace(text)
		chars := utf8.RuneCountInString(trimmed)
		if chars == 0 {
			report.Attempts = append(report.Attempts, Attempt{
				Backend:  b.Name(),
				Status:   constants.AttemptStatusFailure,
				Detail:   "extracted no text",
				Duration: dur,
			})
			o.log.Warn("extract.backend.empty", "backend", b.Name(), "duration_ms", dur.Milliseconds())
			continue
		}

		if chars >= o.minUseful {
			report.Attempts = append(report.Attempts, Attempt{
				Backend:  b.Name(),
				Status:   constants.AttemptStatusSuccess,
				Chars:    chars,
				Duration: dur,
			})
			report.Text = trimmed
			report.Backend = b.Name()
			o.log.Info("extract.resolve.ok", "backend", b.Name(), "chars", chars, "duration_ms", dur.Milliseconds())
			return report, nil
		}

		// Below threshold: a success attempt, but the chain keeps going.
		report.Attempts = append(report.Attempts, Attempt{
			Backend:  b.Name(),
			Status:   constants.AttemptStatusSuccess,
			Detail:   fmt.Sprintf("below usefulness threshold (%d < %d chars)", chars, o.minUseful),
			Chars:    chars,
			Duration: dur,
		})
		if utf8.RuneCountInString(bestText) < chars {
			bestText = trimmed
			bestBackend = b.Name()
		}
	}

	if bestText != "" {
		report.Text = bestText
		report.Backend = bestBackend
		report.Degraded = true
		o.log.Warn("extract.resolve.degraded",
			"backend", bestBackend,
			"chars", utf8.RuneCountInString(bestText),
			"min_useful", o.minUseful,
		)
		return report, nil
	}

	o.log.Error("extract.resolve.exhausted", "attempts", len(report.Attempts), "skipped", len(report.Skipped))
	return report, &ExhaustedError{Report: report}
}

// attempt isolates a single backend call: a panicking parser must not abort
// the chain.
func (o *Orchestrator) attempt(ctx context.Context, b Backend, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()
	return b.Extract(ctx, path)
}

// LogAttempts renders every attempt and skip in try order, for operator
// diagnosis after chain exhaustion.
func (r *Report) LogAttempts(log *slog.Logger) {
	for i, a := range r.Attempts {
		log.Info("extract.attempt",
			"order", i+1,
			"backend", a.Backend,
			"status", string(a.Status),
			"detail", a.Detail,
			"chars", a.Chars,
			"duration_ms", a.Duration.Milliseconds(),
		)
	}
	for _, s := range r.Skipped {
		log.Info("extract.skipped", "backend", s.Backend, "reason", s.Reason)
	}
}
