package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/joseph-ayodele/docsketch/constants"
)

// FitzBackend is the alternate parser: MuPDF via go-fitz. It handles
// encodings and font subsets the content-stream scan trips over.
type FitzBackend struct {
	maxPages int
}

func NewFitzBackend(maxPages int) *FitzBackend {
	return &FitzBackend{maxPages: maxPages}
}

func (b *FitzBackend) Name() string { return constants.BackendFitz }

func (b *FitzBackend) Extract(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("mupdf open: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if b.maxPages > 0 && pages > b.maxPages {
		pages = b.maxPages
	}

	var sb strings.Builder
	for n := 0; n < pages; n++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		text, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("mupdf page %d: %w", n+1, err)
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
