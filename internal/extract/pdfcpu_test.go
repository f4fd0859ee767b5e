package extract

import (
	"strings"
	"testing"
)

func TestExtractTextFromStream(t *testing.T) {
	stream := []byte(`BT
/F1 12 Tf
1 0 0 1 72 720 Td
(Description) Tj
T*
(A compact pump.) Tj
[(Built) -250 (to) -250 (last.)] TJ
ET`)

	got := extractTextFromStream(stream)
	if !strings.Contains(got, "Description") {
		t.Errorf("Tj text missing: %q", got)
	}
	if !strings.Contains(got, "A compact pump.") {
		t.Errorf("text after T* missing: %q", got)
	}
	if !strings.Contains(got, "Built") || !strings.Contains(got, "last.") {
		t.Errorf("TJ array fragments missing: %q", got)
	}
	// Td and T* must break lines so heading detection still works.
	if !strings.Contains(got, "Description\n") {
		t.Errorf("line structure lost: %q", got)
	}
}

func TestExtractTextFromStreamQuoteOperator(t *testing.T) {
	got := extractTextFromStream([]byte("(first) Tj\n(second) '"))
	if !strings.Contains(got, "first\nsecond") {
		t.Errorf("quote operator did not start a new line: %q", got)
	}
}

func TestDecodePDFString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`plain text`, "plain text"},
		{`a\nb`, "a\nb"},
		{`a\tb`, "a\tb"},
		{`\(parens\)`, "(parens)"},
		{`back\\slash`, `back\slash`},
		{`a\040b`, "a b"},
		{`\101\102\103`, "ABC"},
		{`\7!`, "\x07!"},
		{`trailing\`, `trailing\`},
	}
	for _, c := range cases {
		if got := decodePDFString([]byte(c.in)); got != c.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
