package reconcile

import (
	"strconv"
	"strings"

	"github.com/Matamaru/caesar-ocr/internal/document"
	"github.com/Matamaru/caesar-ocr/internal/locate"
)

// MonotonicPositionFilter enforces the ordering contract for labels that
// represent a strictly increasing positional key, such as the position
// column of an invoice or error-log table. A token keeps the begin-entity
// label only if its text parses as an integer, it is the first token of
// its physical source line (repeated OCR passes over the same glyph are
// dropped), and its value is strictly greater than the last accepted one.
// Everything else is demoted to the background label with a zeroed score.
type MonotonicPositionFilter struct {
	// Label is the begin-entity label to police, e.g. "B-POS".
	Label string
	// Background overrides the demotion label; defaults to BackgroundLabel.
	Background string
}

// Apply walks tokens in reading order and returns the corrected copy.
func (f MonotonicPositionFilter) Apply(tokens []document.Token) []document.Token {
	background := f.Background
	if background == "" {
		background = BackgroundLabel
	}

	out := make([]document.Token, len(tokens))
	copy(out, tokens)

	lineOf := lineIndex(tokens)
	firstOfLine := make(map[int]int)
	for i := range tokens {
		line := lineOf[i]
		if _, seen := firstOfLine[line]; !seen {
			firstOfLine[line] = i
		}
	}

	lastAccepted := 0
	accepted := false
	for i := range out {
		if out[i].Label != f.Label {
			continue
		}
		value, err := strconv.Atoi(strings.TrimSpace(out[i].Text))
		ok := err == nil &&
			firstOfLine[lineOf[i]] == i &&
			(!accepted || value > lastAccepted)
		if !ok {
			out[i].Label = background
			out[i].LabelScore = 0
			continue
		}
		lastAccepted = value
		accepted = true
	}
	return out
}

// lineIndex assigns each token the index of its physical source line,
// using explicit grouping keys when present and geometric line clustering
// otherwise.
func lineIndex(tokens []document.Token) map[int]int {
	out := make(map[int]int, len(tokens))

	grouped := len(tokens) > 0
	for _, t := range tokens {
		if !t.HasGroupKeys() {
			grouped = false
			break
		}
	}
	if grouped {
		next := 0
		byKey := make(map[document.GroupKey]int)
		for i, t := range tokens {
			key := t.Key()
			if _, ok := byKey[key]; !ok {
				byKey[key] = next
				next++
			}
			out[i] = byKey[key]
		}
		return out
	}

	for lineIdx, line := range locate.Lines(tokens) {
		for _, span := range line.Spans {
			out[span.TokenIndex] = lineIdx
		}
	}
	// Tokens the locator dropped (e.g. pure punctuation) get their own
	// synthetic line so they never shadow a real first-of-line token.
	synthetic := -1
	for i := range tokens {
		if _, ok := out[i]; !ok {
			out[i] = synthetic
			synthetic--
		}
	}
	return out
}

// Values collects the integer values of tokens still carrying label after
// filtering, in reading order. Helper for reporting and tests.
func Values(tokens []document.Token, label string) []int {
	var out []int
	for _, t := range tokens {
		if t.Label != label {
			continue
		}
		if v, err := strconv.Atoi(strings.TrimSpace(t.Text)); err == nil {
			out = append(out, v)
		}
	}
	return out
}
