// Package manifest persists the generated image and its provenance record.
package manifest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docsketch/internal/common"
)

const (
	imageFileName    = "generated_image.png"
	manifestFileName = "generated_image_manifest.txt"
)

// Manifest is the provenance record for a generated artifact. Created once
// after both chains resolve; immutable thereafter.
type Manifest struct {
	RunID       uuid.UUID
	Source      string // original URL or path
	Description string
	Provider    string // provider that produced the image
	Degraded    bool   // description came from below-threshold text
	GeneratedAt time.Time
}

// Writer persists image artifacts and their manifests into a directory.
type Writer struct {
	dir string
	log *slog.Logger
}

func NewWriter(dir string, log *slog.Logger) *Writer {
	if dir == "" {
		dir = "."
	}
	if log == nil {
		log = slog.Default()
	}
	return &Writer{dir: dir, log: log}
}

// Write stores the image and its manifest, returning both paths.
func (w *Writer) Write(img []byte, m Manifest) (imagePath, manifestPath string, err error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", "", common.NewAppError(common.CodeOutput, "create output dir", err)
	}

	imagePath = filepath.Join(w.dir, imageFileName)
	if err := os.WriteFile(imagePath, img, 0o644); err != nil {
		return "", "", common.NewAppError(common.CodeOutput, "write image", err)
	}

	manifestPath = filepath.Join(w.dir, manifestFileName)
	if err := os.WriteFile(manifestPath, []byte(render(m, imagePath)), 0o644); err != nil {
		// Do not leave a dangling image without its provenance record.
		_ = os.Remove(imagePath)
		return "", "", common.NewAppError(common.CodeOutput, "write manifest", err)
	}

	w.log.Info("manifest.write.ok",
		"image", imagePath,
		"manifest", manifestPath,
		"provider", m.Provider,
	)
	return imagePath, manifestPath, nil
}

// render produces the key-value manifest text. The description is last so
// multi-line text cannot shadow other keys.
func render(m Manifest, imagePath string) string {
	var sb strings.Builder
	write := func(k, v string) {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(v)
		sb.WriteByte('\n')
	}
	write("run_id", m.RunID.String())
	write("source", m.Source)
	write("provider_used", m.Provider)
	write("image_path", imagePath)
	write("generated_at", m.GeneratedAt.UTC().Format(time.RFC3339))
	write("degraded", fmt.Sprintf("%t", m.Degraded))
	write("description", m.Description)
	return sb.String()
}
