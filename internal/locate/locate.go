// Package locate clusters OCR tokens into candidate physical text lines
// and selects the ones that look like a machine-readable zone. It consumes
// token geometry only; it never touches images or files.
package locate

import (
	"sort"
	"strings"

	"github.com/Matamaru/caesar-ocr/internal/document"
	"github.com/Matamaru/caesar-ocr/internal/mrz"
)

// Span maps a slice of a line string back to the token it came from.
type Span struct {
	TokenIndex int // index into the input token list
	Start      int // char offset in Line.Text, inclusive
	End        int // char offset in Line.Text, exclusive
}

// Line is one candidate physical text line: the assembled, normalized
// string, its vertical center and the token back-projection map.
type Line struct {
	Text  string
	Y     float64
	Spans []Span
}

// Lines groups tokens into physical lines. Tokens that carry explicit
// (block, paragraph, line) keys from the OCR producer are grouped by key;
// otherwise lines are recovered by vertical proximity clustering.
func Lines(tokens []document.Token) []Line {
	if len(tokens) == 0 {
		return nil
	}
	if allGrouped(tokens) {
		return groupByKeys(tokens)
	}
	return clusterByGeometry(tokens)
}

func allGrouped(tokens []document.Token) bool {
	for _, t := range tokens {
		if !t.HasGroupKeys() {
			return false
		}
	}
	return true
}

// groupByKeys assembles lines from the producer's own layout analysis.
func groupByKeys(tokens []document.Token) []Line {
	type member struct {
		index int
		tok   document.Token
	}
	groups := make(map[document.GroupKey][]member)
	var order []document.GroupKey
	for i, t := range tokens {
		key := t.Key()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], member{index: i, tok: t})
	}

	lines := make([]Line, 0, len(order))
	for _, key := range order {
		members := groups[key]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].tok.Word < members[j].tok.Word
		})

		var line Line
		var b strings.Builder
		var ySum float64
		for _, m := range members {
			norm := NormalizeMRZ(m.tok.Text)
			if norm == "" {
				continue
			}
			start := b.Len()
			b.WriteString(norm)
			line.Spans = append(line.Spans, Span{TokenIndex: m.index, Start: start, End: b.Len()})
			ySum += m.tok.BBox.CenterY()
		}
		if len(line.Spans) == 0 {
			continue
		}
		line.Text = b.String()
		line.Y = ySum / float64(len(line.Spans))
		lines = append(lines, line)
	}
	return lines
}

// clusterByGeometry recovers lines from bounding boxes alone: tokens are
// sorted by vertical center and greedily attached to the current cluster
// while they stay within tolerance of its running average center.
func clusterByGeometry(tokens []document.Token) []Line {
	tol := clusterTolerance(tokens)

	indices := make([]int, len(tokens))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return tokens[indices[a]].BBox.CenterY() < tokens[indices[b]].BBox.CenterY()
	})

	var clusters [][]int
	var current []int
	var sum float64
	for _, idx := range indices {
		c := tokens[idx].BBox.CenterY()
		if len(current) > 0 {
			avg := sum / float64(len(current))
			if c-avg > tol {
				clusters = append(clusters, current)
				current = nil
				sum = 0
			}
		}
		current = append(current, idx)
		sum += c
	}
	if len(current) > 0 {
		clusters = append(clusters, current)
	}

	lines := make([]Line, 0, len(clusters))
	for _, cluster := range clusters {
		// Reading order within the line.
		sort.SliceStable(cluster, func(a, b int) bool {
			return tokens[cluster[a]].BBox[0] < tokens[cluster[b]].BBox[0]
		})

		var line Line
		var b strings.Builder
		var ySum float64
		n := 0
		for _, idx := range cluster {
			ySum += tokens[idx].BBox.CenterY()
			n++
			norm := NormalizeMRZ(tokens[idx].Text)
			if norm == "" {
				continue
			}
			start := b.Len()
			b.WriteString(norm)
			line.Spans = append(line.Spans, Span{TokenIndex: idx, Start: start, End: b.Len()})
		}
		if len(line.Spans) == 0 {
			continue
		}
		line.Text = b.String()
		line.Y = ySum / float64(n)
		lines = append(lines, line)
	}
	return lines
}

// clusterTolerance derives the vertical merge tolerance from the median
// token height, floored so degenerate boxes still cluster.
func clusterTolerance(tokens []document.Token) float64 {
	heights := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		heights = append(heights, t.BBox.Height())
	}
	sort.Float64s(heights)
	var median float64
	if n := len(heights); n > 0 {
		if n%2 == 1 {
			median = heights[n/2]
		} else {
			median = (heights[n/2-1] + heights[n/2]) / 2
		}
	}
	tol := 0.6 * median
	if tol < 2.0 {
		tol = 2.0
	}
	return tol
}

// NormalizeMRZ uppercases text and strips every character outside the MRZ
// alphabet [A-Z0-9<].
func NormalizeMRZ(s string) string {
	s = strings.ToUpper(s)
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == byte(mrz.Filler) {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// IsMRZCandidate reports whether a line string looks like an MRZ line:
// long enough, fully inside the MRZ alphabet, and either filler-dense or
// digit-dense. The density guard keeps ordinary alphanumeric body text out.
func IsMRZCandidate(text string) bool {
	if len(text) < mrz.TD1LineLength {
		return false
	}
	fillers, digits := 0, 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == byte(mrz.Filler):
			fillers++
		case c >= '0' && c <= '9':
			digits++
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return fillers >= 2 || digits >= 10
}

// SelectMRZ picks the candidate lines to hand to the MRZ decoder: rank by
// distance to the TD3 width, keep the best two, and re-order them by
// vertical position so the top line comes first. When the chosen pair is
// 30 characters wide and a third 30-character candidate exists, that third
// line is included so TD1 documents keep all three lines.
func SelectMRZ(lines []Line) []Line {
	var candidates []Line
	for _, l := range lines {
		if IsMRZCandidate(l.Text) {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	ranked := make([]Line, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return widthDistance(ranked[i].Text) < widthDistance(ranked[j].Text)
	})

	keep := 2
	if len(ranked) >= 3 &&
		len(ranked[0].Text) == mrz.TD1LineLength &&
		len(ranked[1].Text) == mrz.TD1LineLength &&
		len(ranked[2].Text) == mrz.TD1LineLength {
		keep = 3
	}
	if keep > len(ranked) {
		keep = len(ranked)
	}
	chosen := ranked[:keep]

	out := make([]Line, len(chosen))
	copy(out, chosen)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Y < out[j].Y })
	return out
}

func widthDistance(text string) int {
	d := len(text) - mrz.TD3LineLength
	if d < 0 {
		d = -d
	}
	return d
}

// LineStrings extracts the assembled strings from lines.
func LineStrings(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
