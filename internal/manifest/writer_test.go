package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestWriterWritesImageAndManifest(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)
	m := Manifest{
		RunID:       uuid.New(),
		Source:      "https://example.com/doc.pdf",
		Description: "A compact centrifugal pump.",
		Provider:    "local-fallback",
		Degraded:    true,
		GeneratedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}

	imgPath, manPath, err := w.Write([]byte("png-bytes"), m)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Dir(imgPath) != dir || filepath.Dir(manPath) != dir {
		t.Errorf("artifacts written outside %q: %q %q", dir, imgPath, manPath)
	}

	img, err := os.ReadFile(imgPath)
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if string(img) != "png-bytes" {
		t.Error("image bytes mismatch")
	}

	raw, err := os.ReadFile(manPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	text := string(raw)
	for _, want := range []string{
		"run_id: " + m.RunID.String(),
		"source: https://example.com/doc.pdf",
		"provider_used: local-fallback",
		"image_path: " + imgPath,
		"generated_at: 2026-08-30T12:00:00Z",
		"degraded: true",
		"description: A compact centrifugal pump.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("manifest missing %q:\n%s", want, text)
		}
	}
	// Description is the final key so free text cannot shadow others.
	if !strings.HasSuffix(strings.TrimRight(text, "\n"), "A compact centrifugal pump.") {
		t.Errorf("description not last:\n%s", text)
	}
}

func TestWriterCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w := NewWriter(dir, nil)

	if _, _, err := w.Write([]byte("x"), Manifest{RunID: uuid.New(), GeneratedAt: time.Now()}); err != nil {
		t.Fatalf("Write into missing dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, imageFileName)); err != nil {
		t.Errorf("image not created: %v", err)
	}
}

func TestWriterRemovesImageWhenManifestFails(t *testing.T) {
	dir := t.TempDir()
	// Pre-create the manifest path as a directory to force the write failure.
	if err := os.Mkdir(filepath.Join(dir, manifestFileName), 0o755); err != nil {
		t.Fatal(err)
	}
	w := NewWriter(dir, nil)

	_, _, err := w.Write([]byte("x"), Manifest{RunID: uuid.New(), GeneratedAt: time.Now()})
	if err == nil {
		t.Fatal("Write succeeded with an unwritable manifest path")
	}
	if _, statErr := os.Stat(filepath.Join(dir, imageFileName)); !os.IsNotExist(statErr) {
		t.Error("dangling image left behind after manifest failure")
	}
}
