// Package acquire obtains raw PDF documents from a URL or local path and
// verifies the format signature before the extraction chain runs.
package acquire

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/docsketch/constants"
	"github.com/joseph-ayodele/docsketch/internal/common"
)

// Source is an acquired document ready for extraction. Cleanup must be
// called on every exit path; for local paths it is a no-op.
type Source struct {
	Path       string // readable local file
	Descriptor string // original URL or path, for the manifest
	Downloaded bool

	log *slog.Logger
}

// Cleanup removes the temporary file behind a downloaded source.
func (s *Source) Cleanup() {
	if !s.Downloaded {
		return
	}
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("acquire.cleanup.failed", "path", s.Path, "error", err)
	}
}

// Acquirer resolves a document reference (URL or path) into a Source.
type Acquirer struct {
	httpClient *http.Client
	log        *slog.Logger
}

func New(cfg common.AcquireConfig, log *slog.Logger) *Acquirer {
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Acquirer{
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Acquire fetches ref (http/https URL or local path), verifies the %PDF-
// leading signature, and returns a Source. All failures here are fatal
// acquisition errors: nothing downstream can recover from a bad input.
func (a *Acquirer) Acquire(ctx context.Context, ref string) (*Source, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, common.NewAppError(common.CodeAcquisition, "no document reference provided", common.ErrInvalidInput)
	}
	if strings.Contains(ref, "://") {
		return a.download(ctx, ref)
	}
	return a.local(ref)
}

func (a *Acquirer) local(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, common.NewAppError(common.CodeAcquisition, fmt.Sprintf("cannot access %q", path), err)
	}
	if info.IsDir() {
		return nil, common.NewAppError(common.CodeAcquisition, fmt.Sprintf("%q is a directory, not a file", path), common.ErrInvalidInput)
	}
	if err := verifySignature(path); err != nil {
		return nil, err
	}
	return &Source{Path: path, Descriptor: path, log: a.log}, nil
}

func (a *Acquirer) download(ctx context.Context, rawURL string) (*Source, error) {
	start := time.Now()
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, common.NewAppError(common.CodeAcquisition, "invalid URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, common.NewAppError(common.CodeAcquisition,
			fmt.Sprintf("unsupported URL scheme %q (must be http or https)", u.Scheme), common.ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, common.NewAppError(common.CodeAcquisition, "build request", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, common.NewAppError(common.CodeAcquisition, "download failed", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			a.log.Warn("acquire.body_close.failed", "error", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, common.NewAppError(common.CodeAcquisition,
			fmt.Sprintf("HTTP %d while downloading %s", resp.StatusCode, rawURL), nil)
	}

	tmp, err := os.CreateTemp("", "docsketch-*.pdf")
	if err != nil {
		return nil, common.NewAppError(common.CodeAcquisition, "create temp file", err)
	}
	tmpPath := tmp.Name()

	written, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmpPath)
		if copyErr == nil {
			copyErr = closeErr
		}
		return nil, common.NewAppError(common.CodeAcquisition, "write downloaded file", copyErr)
	}

	if err := verifySignature(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}

	a.log.Info("acquire.download.ok",
		"url", rawURL,
		"bytes", written,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Source{Path: tmpPath, Descriptor: rawURL, Downloaded: true, log: a.log}, nil
}

// verifySignature checks the fixed leading byte signature of the document
// format. A non-matching signature is a fatal input error.
func verifySignature(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return common.NewAppError(common.CodeAcquisition, fmt.Sprintf("open %q", path), err)
	}
	defer f.Close()

	head := make([]byte, len(constants.PDFSignature))
	if _, err := io.ReadFull(f, head); err != nil {
		return common.NewAppError(common.CodeAcquisition, "file too short to be a PDF", err)
	}
	if string(head) != constants.PDFSignature {
		return common.NewAppError(common.CodeAcquisition,
			fmt.Sprintf("not a PDF: leading signature %q", string(head)), common.ErrInvalidInput)
	}
	return nil
}
