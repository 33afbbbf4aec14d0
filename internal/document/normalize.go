package document

import (
	"sort"
	"strings"
)

// NormalizeText collapses runs of whitespace inside lines and drops empty
// lines, keeping one line per physical text line.
func NormalizeText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// AssembleText orders tokens by their grouping keys (falling back to the
// given order when keys are absent), joins them with single spaces and
// assigns Start/End character offsets into the assembled text. It returns
// the text together with the re-ordered, annotated tokens.
func AssembleText(tokens []Token) (string, []Token) {
	out := make([]Token, len(tokens))
	copy(out, tokens)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		if a.Par != b.Par {
			return a.Par < b.Par
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Word < b.Word
	})

	var b strings.Builder
	cursor := 0
	for i := range out {
		if i > 0 {
			b.WriteByte(' ')
			cursor++
		}
		out[i].Start = cursor
		b.WriteString(out[i].Text)
		cursor += len(out[i].Text)
		out[i].End = cursor
	}
	return b.String(), out
}
