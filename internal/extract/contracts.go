// Package extract turns a PDF file into usable text through a fixed-priority
// chain of extraction backends.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/docsketch/constants"
)

// Backend extracts text from a PDF file. Implementations must normalize
// every internal error (parse error, corrupt stream, failing binary) into a
// returned error; nothing may escape the chain uncaught.
type Backend interface {
	Name() string
	Extract(ctx context.Context, path string) (string, error)
}

// ErrUnavailable marks a backend whose required external engine is missing
// on the host. The orchestrator records it as skipped, not as a failure.
var ErrUnavailable = errors.New("backend unavailable")

// Attempt records one backend invocation, in try order.
type Attempt struct {
	Backend  string
	Status   constants.AttemptStatus
	Detail   string // normalized failure reason; empty on success
	Chars    int    // trimmed rune count of the extracted text
	Duration time.Duration
}

// Skip records a backend that was never tried because its engine is absent.
type Skip struct {
	Backend string
	Reason  string
}

// Report aggregates the outcome of one chain resolution. Attempts hold only
// real tries; skipped backends are listed separately so an operator can tell
// never-tried apart from tried-and-failed.
type Report struct {
	Attempts []Attempt
	Skipped  []Skip
	Text     string // resolved text; empty when the chain exhausted
	Backend  string // backend that produced Text
	Degraded bool   // Text is below the usefulness threshold
}

// ExhaustedError means every backend failed or produced no text at all.
// It carries the full report so each backend's reason can be surfaced.
type ExhaustedError struct {
	Report *Report
}

func (e *ExhaustedError) Error() string {
	var parts []string
	for _, a := range e.Report.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Backend, a.Detail))
	}
	for _, s := range e.Report.Skipped {
		parts = append(parts, fmt.Sprintf("%s: skipped (%s)", s.Backend, s.Reason))
	}
	return "extraction exhausted: " + strings.Join(parts, "; ")
}
