// Package justify lays text out in fully justified lines of a fixed width.
//
// Lines are filled greedily. Every closed line except the last is padded to
// exactly the target width by distributing spaces between its words, the
// leftmost gaps taking the remainder. The last line and single-word lines
// are left as they are. There is no hyphenation; a word longer than the
// width occupies a line of its own.
package justify

import (
	"strings"

	"github.com/kailas-cloud/justext/internal/domain"
)

// Text justifies text at the default line width.
func Text(text string) string {
	return Justify(text, domain.LineWidth)
}

// Justify returns text laid out in lines of width bytes, joined by "\n"
// with no trailing newline. Words are separated by runs of whitespace.
func Justify(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var (
		out     strings.Builder
		line    []string
		lineLen int // unpadded: word lengths plus one space per gap
	)
	out.Grow(len(text) + len(text)/4)

	for _, w := range words {
		if len(line) > 0 && lineLen+len(w)+1 > width {
			writeJustified(&out, line, width)
			out.WriteByte('\n')
			line, lineLen = line[:0], 0
		}
		if len(line) > 0 {
			lineLen++
		}
		line = append(line, w)
		lineLen += len(w)
	}
	writeLeft(&out, line)

	return out.String()
}

// CountWords returns the number of words Justify lays out for text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// writeJustified pads a closed line to width. The spaces to place are the
// width minus the raw word lengths; the first extra gaps take one more.
func writeJustified(out *strings.Builder, words []string, width int) {
	gaps := len(words) - 1
	if gaps == 0 {
		out.WriteString(words[0])
		return
	}

	chars := 0
	for _, w := range words {
		chars += len(w)
	}
	spaces := width - chars
	base, extra := spaces/gaps, spaces%gaps

	for i, w := range words {
		out.WriteString(w)
		if i == gaps {
			break
		}
		n := base
		if i < extra {
			n++
		}
		out.WriteString(strings.Repeat(" ", n))
	}
}

// writeLeft writes the final line with single spaces.
func writeLeft(out *strings.Builder, words []string) {
	for i, w := range words {
		if i > 0 {
			out.WriteByte(' ')
		}
		out.WriteString(w)
	}
}
