package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joseph-ayodele/docsketch/constants"
)

type fakeBackend struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Extract(ctx context.Context, path string) (string, error) {
	f.calls++
	return f.text, f.err
}

type panicBackend struct{ name string }

func (p *panicBackend) Name() string { return p.name }

func (p *panicBackend) Extract(ctx context.Context, path string) (string, error) {
	panic("corrupt xref table")
}

func TestResolveStopsAtFirstUsefulBackend(t *testing.T) {
	first := &fakeBackend{name: "a", text: strings.Repeat("x", 50)}
	second := &fakeBackend{name: "b", text: strings.Repeat("y", 50)}
	orch := NewOrchestrator([]Backend{first, second}, 40, nil)

	report, err := orch.Resolve(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if report.Backend != "a" {
		t.Errorf("resolved backend = %q, want %q", report.Backend, "a")
	}
	if second.calls != 0 {
		t.Errorf("later backend was called %d times, want 0", second.calls)
	}
	if report.Degraded {
		t.Error("report marked degraded for an above-threshold result")
	}
	if len(report.Attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(report.Attempts))
	}
	if report.Attempts[0].Status != constants.AttemptStatusSuccess {
		t.Errorf("attempt status = %q, want success", report.Attempts[0].Status)
	}
}

func TestResolveThresholdBoundary(t *testing.T) {
	// Exactly at the threshold counts as useful.
	at := &fakeBackend{name: "a", text: strings.Repeat("x", 40)}
	orch := NewOrchestrator([]Backend{at}, 40, nil)
	report, err := orch.Resolve(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("Resolve at boundary: %v", err)
	}
	if report.Degraded {
		t.Error("result at threshold marked degraded")
	}

	// One rune under is degraded.
	under := &fakeBackend{name: "a", text: strings.Repeat("x", 39)}
	orch = NewOrchestrator([]Backend{under}, 40, nil)
	report, err = orch.Resolve(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("Resolve under boundary: %v", err)
	}
	if !report.Degraded {
		t.Error("result under threshold not marked degraded")
	}
}

func TestResolveThresholdCountsTrimmedRunes(t *testing.T) {
	// 39 runes padded with whitespace must still be degraded.
	b := &fakeBackend{name: "a", text: "   " + strings.Repeat("é", 39) + " \n\t"}
	orch := NewOrchestrator([]Backend{b}, 40, nil)

	report, err := orch.Resolve(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !report.Degraded {
		t.Error("whitespace padding was counted toward the threshold")
	}
	if report.Attempts[0].Chars != 39 {
		t.Errorf("chars = %d, want 39 (runes, not bytes)", report.Attempts[0].Chars)
	}
}

func TestResolveFallsThroughFailures(t *testing.T) {
	failing := &fakeBackend{name: "a", err: errors.New("parse error")}
	empty := &fakeBackend{name: "b", text: "  \n "}
	good := &fakeBackend{name: "c", text: strings.Repeat("z", 60)}
	orch := NewOrchestrator([]Backend{failing, empty, good}, 40, nil)

	report, err := orch.Resolve(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if report.Backend != "c" {
		t.Errorf("resolved backend = %q, want %q", report.Backend, "c")
	}
	if len(report.Attempts) != 3 {
		t.Fatalf("attempts = %d, want 3", len(report.Attempts))
	}
	for i, want := range []constants.AttemptStatus{
		constants.AttemptStatusFailure,
		constants.AttemptStatusFailure,
		constants.AttemptStatusSuccess,
	} {
		if report.Attempts[i].Status != want {
			t.Errorf("attempt %d status = %q, want %q", i, report.Attempts[i].Status, want)
		}
	}
}

func TestResolveDegradedLongestWins(t *testing.T) {
	short := &fakeBackend{name: "a", text: "brief"}
	longer := &fakeBackend{name: "b", text: "slightly longer text"}
	tied := &fakeBackend{name: "c", text: "equally longer words"}
	orch := NewOrchestrator([]Backend{short, longer, tied}, 100, nil)

	report, err := orch.Resolve(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !report.Degraded {
		t.Fatal("report not degraded")
	}
	// b and c tie at 20 runes; the earlier backend keeps the slot.
	if report.Backend != "b" {
		t.Errorf("degraded backend = %q, want %q", report.Backend, "b")
	}
	if report.Text != "slightly longer text" {
		t.Errorf("degraded text = %q", report.Text)
	}
	if len(report.Attempts) != 3 {
		t.Errorf("attempts = %d, want 3 (all backends tried)", len(report.Attempts))
	}
}

func TestResolveExhaustion(t *testing.T) {
	backends := []Backend{
		&fakeBackend{name: "a", err: errors.New("broken")},
		&fakeBackend{name: "b", text: ""},
		&fakeBackend{name: "c", err: errors.New("also broken")},
	}
	orch := NewOrchestrator(backends, 40, nil)

	report, err := orch.Resolve(context.Background(), "doc.pdf")
	if err == nil {
		t.Fatal("Resolve succeeded with no usable text")
	}
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error type = %T, want *ExhaustedError", err)
	}
	if exhausted.Report != report {
		t.Error("ExhaustedError does not carry the returned report")
	}
	if len(report.Attempts) != 3 {
		t.Errorf("attempts = %d, want exactly one per backend", len(report.Attempts))
	}
	for _, b := range backends {
		if fb := b.(*fakeBackend); fb.calls != 1 {
			t.Errorf("backend %s called %d times, want 1", fb.name, fb.calls)
		}
	}
}

func TestResolveUnavailableIsSkippedNotAttempted(t *testing.T) {
	missing := &fakeBackend{name: "a", err: ErrUnavailable}
	good := &fakeBackend{name: "b", text: strings.Repeat("x", 50)}
	orch := NewOrchestrator([]Backend{missing, good}, 40, nil)

	report, err := orch.Resolve(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(report.Attempts) != 1 {
		t.Errorf("attempts = %d, want 1 (skips are not attempts)", len(report.Attempts))
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Backend != "a" {
		t.Errorf("skipped = %+v, want backend a", report.Skipped)
	}
}

func TestResolveRecoversBackendPanic(t *testing.T) {
	good := &fakeBackend{name: "b", text: strings.Repeat("x", 50)}
	orch := NewOrchestrator([]Backend{&panicBackend{name: "a"}, good}, 40, nil)

	report, err := orch.Resolve(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if report.Backend != "b" {
		t.Errorf("resolved backend = %q, want %q", report.Backend, "b")
	}
	if report.Attempts[0].Status != constants.AttemptStatusFailure {
		t.Errorf("panicking backend attempt status = %q, want failure", report.Attempts[0].Status)
	}
	if !strings.Contains(report.Attempts[0].Detail, "panic") {
		t.Errorf("attempt detail %q does not mention the panic", report.Attempts[0].Detail)
	}
}
