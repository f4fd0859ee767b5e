package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/docsketch/constants"
	"github.com/joseph-ayodele/docsketch/internal/common"
)

// OCRBackend is the last resort for scanned documents with no text layer:
// rasterize pages with pdftoppm, then recognize each page with tesseract.
// Both binaries must be present; otherwise the backend reports itself
// unavailable so the chain can skip it without retry.
type OCRBackend struct {
	pdftoppm  string
	tesseract string
	lang      string
	dpi       int
	maxPages  int

	runner   Runner
	lookPath func(string) (string, error)
}

func NewOCRBackend(cfg common.ExtractConfig, runner Runner) *OCRBackend {
	if runner == nil {
		runner = execRunner{}
	}
	b := &OCRBackend{
		pdftoppm:  cfg.Pdftoppm,
		tesseract: cfg.Tesseract,
		lang:      cfg.TesseractLang,
		dpi:       cfg.DPI,
		maxPages:  cfg.MaxPages,
		runner:    runner,
		lookPath:  exec.LookPath,
	}
	if b.pdftoppm == "" {
		b.pdftoppm = "pdftoppm"
	}
	if b.tesseract == "" {
		b.tesseract = "tesseract"
	}
	if b.lang == "" {
		b.lang = "eng"
	}
	if b.dpi <= 0 {
		b.dpi = 300
	}
	return b
}

func (b *OCRBackend) Name() string { return constants.BackendOCR }

func (b *OCRBackend) Extract(ctx context.Context, path string) (string, error) {
	for _, bin := range []string{b.pdftoppm, b.tesseract} {
		if _, err := b.lookPath(bin); err != nil {
			return "", fmt.Errorf("%w: %s not in PATH", ErrUnavailable, bin)
		}
	}

	tmpDir, err := os.MkdirTemp("", "docsketch-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := b.runner.Run(ctx, b.pdftoppm, "-r", fmt.Sprintf("%d", b.dpi), "-png", path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %v: %s", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if b.maxPages > 0 && len(matches) > b.maxPages {
		matches = matches[:b.maxPages]
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm rendered no pages")
	}

	var sb strings.Builder
	for _, img := range matches {
		// tesseract <img> stdout -l <lang>
		out, errb, err := b.runner.Run(ctx, b.tesseract, img, "stdout", "-l", b.lang)
		if err != nil {
			return "", fmt.Errorf("tesseract %s: %v: %s", filepath.Base(img), err, truncate(string(errb), 512))
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\f\n")
		}
		sb.Write(out)
	}
	return sb.String(), nil
}
