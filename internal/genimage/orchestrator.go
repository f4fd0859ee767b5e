package genimage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/docsketch/constants"
	"github.com/joseph-ayodele/docsketch/internal/common"
)

// Chain builds the remote providers eligible under cfg, in priority order,
// plus skip records for those whose credential is absent. The eligible list
// is a pure function of the resolved configuration; providers never read
// the environment themselves.
func Chain(cfg common.ProvidersConfig, log *slog.Logger) (remotes []Provider, skipped []Skip) {
	if cfg.OpenAI.APIKey != "" {
		remotes = append(remotes, NewOpenAIProvider(cfg.OpenAI, log))
	} else {
		skipped = append(skipped, Skip{Provider: constants.ProviderOpenAI, Reason: "OPENAI_API_KEY not set"})
	}
	if cfg.Stability.APIKey != "" {
		remotes = append(remotes, NewStabilityProvider(cfg.Stability, log))
	} else {
		skipped = append(skipped, Skip{Provider: constants.ProviderStability, Reason: "STABILITY_API_KEY not set"})
	}
	return remotes, skipped
}

// Orchestrator tries the eligible remote providers strictly in order, then
// the local fallback. The fallback is always last and always eligible, so
// resolution terminates in success unless local rendering itself fails.
type Orchestrator struct {
	remotes  []Provider
	skipped  []Skip
	fallback Provider
	log      *slog.Logger
}

func NewOrchestrator(remotes []Provider, skipped []Skip, fallback Provider, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	if fallback == nil {
		fallback = NewLocalProvider()
	}
	return &Orchestrator{remotes: remotes, skipped: skipped, fallback: fallback, log: log}
}

// Resolve produces an image for prompt, aggregating every attempt into the
// report. Returns *FatalError only when the local fallback fails.
func (o *Orchestrator) Resolve(ctx context.Context, prompt, size string) ([]byte, *Report, error) {
	report := &Report{Skipped: o.skipped}
	for _, s := range o.skipped {
		o.log.Info("generate.provider.skipped", "provider", s.Provider, "reason", s.Reason)
	}

	for _, p := range o.remotes {
		img, ok := o.try(ctx, p, prompt, size, report)
		if ok {
			return img, report, nil
		}
	}

	img, ok := o.try(ctx, o.fallback, prompt, size, report)
	if !ok {
		o.log.Error("generate.resolve.fatal", "attempts", len(report.Attempts))
		return nil, report, &FatalError{Report: report}
	}
	return img, report, nil
}

// try runs one provider, appends its attempt, and reports whether it
// succeeded. A panicking provider must not abort the chain.
func (o *Orchestrator) try(ctx context.Context, p Provider, prompt, size string, report *Report) ([]byte, bool) {
	start := time.Now()
	img, err := func() (img []byte, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("provider panic: %v", r)
			}
		}()
		return p.Generate(ctx, prompt, size)
	}()
	dur := time.Since(start)

	if err != nil {
		report.Attempts = append(report.Attempts, Attempt{
			Provider: p.Name(),
			Status:   constants.AttemptStatusFailure,
			Detail:   err.Error(),
			Duration: dur,
		})
		o.log.Warn("generate.attempt.failed", "provider", p.Name(), "error", err, "duration_ms", dur.Milliseconds())
		return nil, false
	}

	report.Attempts = append(report.Attempts, Attempt{
		Provider: p.Name(),
		Status:   constants.AttemptStatusSuccess,
		Bytes:    len(img),
		Duration: dur,
	})
	report.Provider = p.Name()
	o.log.Info("generate.resolve.ok", "provider", p.Name(), "bytes", len(img), "duration_ms", dur.Milliseconds())
	return img, true
}

// LogAttempts renders every attempt and skip in try order, for operator
// diagnosis after a fatal generation failure.
func (r *Report) LogAttempts(log *slog.Logger) {
	for i, a := range r.Attempts {
		log.Info("generate.attempt",
			"order", i+1,
			"provider", a.Provider,
			"status", string(a.Status),
			"detail", a.Detail,
			"bytes", a.Bytes,
			"duration_ms", a.Duration.Milliseconds(),
		)
	}
	for _, s := range r.Skipped {
		log.Info("generate.skipped", "provider", s.Provider, "reason", s.Reason)
	}
}
