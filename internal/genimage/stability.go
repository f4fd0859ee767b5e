package genimage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/docsketch/constants"
	"github.com/joseph-ayodele/docsketch/internal/common"
)

// StabilityProvider generates images through the Stability text-to-image
// endpoint. Remote provider B in the chain.
type StabilityProvider struct {
	cfg  common.StabilityConfig
	http *http.Client
	log  *slog.Logger
}

func NewStabilityProvider(cfg common.StabilityConfig, log *slog.Logger) *StabilityProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.stability.ai"
	}
	if cfg.Engine == "" {
		cfg.Engine = "stable-diffusion-xl-1024-v1-0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &StabilityProvider{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

func (p *StabilityProvider) Name() string { return constants.ProviderStability }

func (p *StabilityProvider) Generate(ctx context.Context, prompt, size string) ([]byte, error) {
	start := time.Now()
	w, h := ParseSize(size, 1024, 1024)
	p.log.Info("stability.generate.start", "engine", p.cfg.Engine, "width", w, "height", h, "prompt_len", len(prompt))

	body := map[string]any{
		"text_prompts": []map[string]any{
			{"text": prompt, "weight": 1},
		},
		"width":   w,
		"height":  h,
		"samples": 1,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/generation/" + p.cfg.Engine + "/text-to-image"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		p.log.Error("stability.generate.http_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("stability http error: %w", err)
	}
	defer func(rc io.ReadCloser) {
		if cerr := rc.Close(); cerr != nil {
			p.log.Warn("stability response body close error", "error", cerr)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stability status %d: %s", resp.StatusCode, buf.String())
	}
	raw := buf.Bytes()

	if err := validatePayload(stabilityResponseSchema, raw); err != nil {
		p.log.Error("stability.generate.malformed_payload", "error", err, "raw_bytes", len(raw))
		return nil, fmt.Errorf("malformed response payload: %w", err)
	}

	var out struct {
		Artifacts []struct {
			Base64       string `json:"base64"`
			FinishReason string `json:"finishReason"`
		} `json:"artifacts"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode stability response: %w", err)
	}
	if fr := out.Artifacts[0].FinishReason; fr != "" && fr != "SUCCESS" {
		return nil, fmt.Errorf("stability finish reason %s", fr)
	}
	img, err := base64.StdEncoding.DecodeString(out.Artifacts[0].Base64)
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}

	p.log.Info("stability.generate.ok", "bytes", len(img), "elapsed_ms", time.Since(start).Milliseconds())
	return img, nil
}
