package genimage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/joseph-ayodele/docsketch/constants"
)

// LocalProvider is the reliability backstop: it renders the prompt text
// onto a canvas with a built-in bitmap face. No network, no credentials.
// The same prompt and size always yield the same textual content.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (p *LocalProvider) Name() string { return constants.ProviderLocalFallback }

const (
	localMargin     = 24
	localLineHeight = 16
	glyphWidth      = 7 // basicfont.Face7x13 advance
)

func (p *LocalProvider) Generate(ctx context.Context, prompt, size string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("empty prompt")
	}

	w, h := ParseSize(size, 1024, 1024)
	cols := (w - 2*localMargin) / glyphWidth
	maxLines := (h - 2*localMargin) / localLineHeight
	if cols < 1 || maxLines < 1 {
		return nil, fmt.Errorf("canvas %dx%d too small to render text", w, h)
	}

	lines := wrapText(prompt, cols)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		d.Dot = fixed.P(localMargin, localMargin+(i+1)*localLineHeight)
		d.DrawString(line)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseSize parses a "WxH" size hint, falling back to the given defaults on
// anything it cannot read.
func ParseSize(size string, defW, defH int) (int, int) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(size)), "x", 2)
	if len(parts) != 2 {
		return defW, defH
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil || w < 1 || h < 1 {
		return defW, defH
	}
	return w, h
}

// wrapText greedily wraps words into lines of at most cols characters.
// Words longer than cols are hard-split.
func wrapText(text string, cols int) []string {
	var lines []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
		}
	}
	for _, word := range strings.Fields(text) {
		for len(word) > cols {
			flush()
			lines = append(lines, word[:cols])
			word = word[cols:]
		}
		if word == "" {
			continue
		}
		if cur.Len() > 0 && cur.Len()+1+len(word) > cols {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	flush()
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
