package genimage

import (
	"context"
	"errors"
	"testing"

	"github.com/joseph-ayodele/docsketch/constants"
	"github.com/joseph-ayodele/docsketch/internal/common"
)

type fakeProvider struct {
	name  string
	img   []byte
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, prompt, size string) ([]byte, error) {
	f.calls++
	return f.img, f.err
}

func TestResolveFallsBackThroughRemotes(t *testing.T) {
	first := &fakeProvider{name: "a", err: errors.New("http 500")}
	second := &fakeProvider{name: "b", img: []byte("png-bytes")}
	fallback := &fakeProvider{name: "local", img: []byte("unused")}
	orch := NewOrchestrator([]Provider{first, second}, nil, fallback, nil)

	img, report, err := orch.Resolve(context.Background(), "a prompt", "64x64")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if string(img) != "png-bytes" {
		t.Errorf("image = %q, want b's output", img)
	}
	if report.Provider != "b" {
		t.Errorf("report provider = %q, want b", report.Provider)
	}
	if len(report.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(report.Attempts))
	}
	if report.Attempts[0].Status != constants.AttemptStatusFailure {
		t.Errorf("first attempt status = %q, want failure", report.Attempts[0].Status)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestResolveNoCredentialsUsesFallbackOnly(t *testing.T) {
	skipped := []Skip{
		{Provider: constants.ProviderOpenAI, Reason: "OPENAI_API_KEY not set"},
		{Provider: constants.ProviderStability, Reason: "STABILITY_API_KEY not set"},
	}
	fallback := &fakeProvider{name: constants.ProviderLocalFallback, img: []byte("local")}
	orch := NewOrchestrator(nil, skipped, fallback, nil)

	img, report, err := orch.Resolve(context.Background(), "a prompt", "64x64")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if string(img) != "local" {
		t.Errorf("image = %q, want fallback output", img)
	}
	if len(report.Attempts) != 1 {
		t.Errorf("attempts = %d, want 1 (skips are not attempts)", len(report.Attempts))
	}
	if len(report.Skipped) != 2 {
		t.Errorf("skipped = %d, want 2", len(report.Skipped))
	}
}

func TestResolveFatalWhenFallbackFails(t *testing.T) {
	remote := &fakeProvider{name: "a", err: errors.New("http 429")}
	fallback := &fakeProvider{name: "local", err: errors.New("canvas too small")}
	orch := NewOrchestrator([]Provider{remote}, nil, fallback, nil)

	_, report, err := orch.Resolve(context.Background(), "a prompt", "1x1")
	if err == nil {
		t.Fatal("Resolve succeeded with every provider failing")
	}
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("error type = %T, want *FatalError", err)
	}
	if fatal.Report != report {
		t.Error("FatalError does not carry the returned report")
	}
	if len(report.Attempts) != 2 {
		t.Errorf("attempts = %d, want 2 (remote + fallback)", len(report.Attempts))
	}
}

func chainConfig(openAIKey, stabilityKey string) common.ProvidersConfig {
	return common.ProvidersConfig{
		OpenAI:    common.OpenAIConfig{APIKey: openAIKey},
		Stability: common.StabilityConfig{APIKey: stabilityKey},
		SizeHint:  "1024x1024",
	}
}

func TestChainEligibility(t *testing.T) {
	cfg := chainConfig("", "sk-stab")
	remotes, skipped := Chain(cfg, nil)
	if len(remotes) != 1 || remotes[0].Name() != constants.ProviderStability {
		t.Errorf("remotes = %d, want only stability", len(remotes))
	}
	if len(skipped) != 1 || skipped[0].Provider != constants.ProviderOpenAI {
		t.Errorf("skipped = %+v, want openai skip", skipped)
	}

	remotes, skipped = Chain(chainConfig("sk-oa", "sk-stab"), nil)
	if len(remotes) != 2 || len(skipped) != 0 {
		t.Errorf("full credentials: remotes = %d skipped = %d, want 2/0", len(remotes), len(skipped))
	}
	// Priority order is fixed: OpenAI before Stability.
	if remotes[0].Name() != constants.ProviderOpenAI {
		t.Errorf("first remote = %q, want openai", remotes[0].Name())
	}
}
