// Package genimage produces an image from a text prompt through a
// fixed-priority chain of providers with a guaranteed local fallback.
package genimage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/docsketch/constants"
)

// Provider produces an image from a text prompt. Implementations normalize
// all failures (timeout, quota, invalid model, non-2xx, malformed payload)
// into a returned error.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt, size string) ([]byte, error)
}

// Attempt records one provider invocation, in try order.
type Attempt struct {
	Provider string
	Status   constants.AttemptStatus
	Detail   string // normalized failure reason; empty on success
	Bytes    int
	Duration time.Duration
}

// Skip records a provider that was never tried because its credential is
// absent. Kept apart from Attempts: operators need to distinguish
// never-tried from tried-and-rejected.
type Skip struct {
	Provider string
	Reason   string
}

// Report aggregates the outcome of one chain resolution.
type Report struct {
	Attempts []Attempt
	Skipped  []Skip
	Provider string // provider that produced the image
}

// FatalError means even the local fallback could not produce an image: the
// only unrecoverable generation failure. It carries the full report.
type FatalError struct {
	Report *Report
}

func (e *FatalError) Error() string {
	var parts []string
	for _, a := range e.Report.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Provider, a.Detail))
	}
	for _, s := range e.Report.Skipped {
		parts = append(parts, fmt.Sprintf("%s: skipped (%s)", s.Provider, s.Reason))
	}
	return "generation failed, local fallback included: " + strings.Join(parts, "; ")
}
