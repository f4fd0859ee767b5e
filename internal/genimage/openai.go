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

// OpenAIProvider generates images through the OpenAI images/generations
// endpoint. Remote provider A in the chain.
type OpenAIProvider struct {
	cfg  common.OpenAIConfig
	http *http.Client
	log  *slog.Logger
}

func NewOpenAIProvider(cfg common.OpenAIConfig, log *slog.Logger) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "dall-e-3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &OpenAIProvider{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

func (p *OpenAIProvider) Name() string { return constants.ProviderOpenAI }

func (p *OpenAIProvider) Generate(ctx context.Context, prompt, size string) ([]byte, error) {
	start := time.Now()
	p.log.Info("openai.generate.start", "model", p.cfg.Model, "size", size, "prompt_len", len(prompt))

	body := map[string]any{
		"model":           p.cfg.Model,
		"prompt":          prompt,
		"n":               1,
		"size":            size,
		"response_format": "b64_json",
	}
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/images/generations"
	raw, err := p.post(ctx, endpoint, body)
	if err != nil {
		p.log.Error("openai.generate.http_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	if err := validatePayload(openAIResponseSchema, raw); err != nil {
		p.log.Error("openai.generate.malformed_payload", "error", err, "raw_bytes", len(raw))
		return nil, fmt.Errorf("malformed response payload: %w", err)
	}

	var out struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	img, err := base64.StdEncoding.DecodeString(out.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}

	p.log.Info("openai.generate.ok", "bytes", len(img), "elapsed_ms", time.Since(start).Milliseconds())
	return img, nil
}

func (p *OpenAIProvider) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(rc io.ReadCloser) {
		if cerr := rc.Close(); cerr != nil {
			p.log.Warn("openai response body close error", "error", cerr)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}
