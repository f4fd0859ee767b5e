// Package describe reduces extracted document text to a bounded description
// suitable as an image prompt. Pure text search; the only degenerate case is
// "no candidate found", which falls back to truncated raw text.
package describe

import (
	"regexp"
	"strings"
)

const (
	// MaxLen bounds the selected description.
	MaxLen = 1200
	// minParagraphLen filters boilerplate when falling back to the first
	// meaningful paragraph.
	minParagraphLen = 40
	// rawFallbackLen is the last-resort slice of the raw text.
	rawFallbackLen = 300
)

var (
	descHeadingRe   = regexp.MustCompile(`(?i)^\s*description\s*[:\-]?\s*$`)
	carriageRe      = regexp.MustCompile(`\r`)
	spaceRunRe      = regexp.MustCompile(`[ \t]+`)
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
	titleCaseLineRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9 ]{0,60}$`)
)

// Select picks a description from extracted text: the section under a
// "Description" heading if one exists, else the first paragraph of at least
// minParagraphLen characters, else the leading rawFallbackLen characters.
func Select(text string) string {
	text = Normalize(text)
	if text == "" {
		return ""
	}

	if d := headingSection(text); d != "" {
		return clamp(d)
	}

	for _, p := range paragraphs(text) {
		if len(p) >= minParagraphLen {
			return clamp(p)
		}
	}

	return clamp(firstRunes(text, rawFallbackLen))
}

// Normalize collapses horizontal whitespace and blank-line runs while
// preserving line structure for heading detection.
func Normalize(text string) string {
	text = carriageRe.ReplaceAllString(text, "\n")
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// headingSection returns the block following a "description" heading line,
// up to the next heading-like line.
func headingSection(text string) string {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	for idx, line := range lines {
		if !descHeadingRe.MatchString(line) {
			continue
		}
		var block []string
		for j := idx + 1; j < len(lines); j++ {
			if looksLikeHeading(lines[j]) {
				break
			}
			block = append(block, lines[j])
		}
		if candidate := joinParagraphs(block); candidate != "" {
			return candidate
		}
	}
	return ""
}

// looksLikeHeading flags short Title Case or all-caps lines that usually
// start a new section.
func looksLikeHeading(line string) bool {
	if line == "" {
		return false
	}
	if len(line) <= 4 {
		return true
	}
	if line == strings.ToUpper(line) && line != strings.ToLower(line) && len(line) <= 60 {
		return true
	}
	if titleCaseLineRe.MatchString(line) && len(strings.Fields(line)) <= 8 {
		return true
	}
	return false
}

// joinParagraphs merges consecutive non-empty lines into paragraphs joined
// by blank lines.
func joinParagraphs(lines []string) string {
	var paras []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			paras = append(paras, strings.Join(cur, " "))
			cur = nil
		}
	}
	for _, l := range lines {
		if l == "" {
			flush()
			continue
		}
		cur = append(cur, l)
	}
	flush()
	return strings.TrimSpace(strings.Join(paras, "\n\n"))
}

func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func clamp(s string) string {
	return strings.TrimSpace(firstRunes(s, MaxLen))
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
