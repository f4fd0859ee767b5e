package extract

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/joseph-ayodele/docsketch/constants"
)

// PopplerBackend is the layout-aware parser: it shells out to poppler's
// pdftotext, which reconstructs column and table layout the pure-Go
// parsers lose.
type PopplerBackend struct {
	bin      string
	runner   Runner
	lookPath func(string) (string, error)
}

func NewPopplerBackend(bin string, runner Runner) *PopplerBackend {
	if bin == "" {
		bin = "pdftotext"
	}
	if runner == nil {
		runner = execRunner{}
	}
	return &PopplerBackend{bin: bin, runner: runner, lookPath: exec.LookPath}
}

func (b *PopplerBackend) Name() string { return constants.BackendPoppler }

func (b *PopplerBackend) Extract(ctx context.Context, path string) (string, error) {
	if _, err := b.lookPath(b.bin); err != nil {
		return "", fmt.Errorf("%w: %s not in PATH", ErrUnavailable, b.bin)
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := b.runner.Run(ctx, b.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %v: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
