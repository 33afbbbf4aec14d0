// Package reconcile merges sub-word label predictions from a token
// classification model with the OCR token stream, producing one label per
// visual token, and applies document-type-specific label filters.
package reconcile

import (
	"github.com/Matamaru/caesar-ocr/internal/document"
)

// BackgroundLabel marks tokens that carry no entity.
const BackgroundLabel = "O"

// NoWord marks sub-word positions with no owning token (padding, special
// tokens).
const NoWord = -1

// Prediction is the raw model output for one document: one decoded label
// and softmax score per sub-word position, plus the word-index array
// mapping each position back to its owning token. A nil WordIDs slice
// means the classifier already emitted exactly one label per token.
type Prediction struct {
	Labels  []string  `json:"labels"`
	Scores  []float64 `json:"scores,omitempty"`
	WordIDs []int     `json:"word_ids,omitempty"`
}

// Align assigns one label per token from sub-word predictions. The first
// sub-word of each token wins; its score is the max softmax probability
// observed at that position. Tokens no sub-word maps to keep the
// background label. The input tokens are not mutated.
func Align(tokens []document.Token, pred Prediction) []document.Token {
	out := make([]document.Token, len(tokens))
	copy(out, tokens)
	for i := range out {
		out[i].Label = BackgroundLabel
		out[i].LabelScore = 0
	}

	if pred.WordIDs == nil {
		// Degenerate case: one prediction per token already. Truncate or
		// pad to the token count.
		for i := range out {
			if i < len(pred.Labels) {
				out[i].Label = pred.Labels[i]
				out[i].LabelScore = scoreAt(pred.Scores, i)
			}
		}
		return out
	}

	seen := make(map[int]bool)
	for pos, wordID := range pred.WordIDs {
		if wordID == NoWord || wordID < 0 || wordID >= len(out) {
			continue
		}
		if seen[wordID] {
			continue
		}
		seen[wordID] = true
		if pos < len(pred.Labels) {
			out[wordID].Label = pred.Labels[pos]
		}
		out[wordID].LabelScore = scoreAt(pred.Scores, pos)
	}
	return out
}

func scoreAt(scores []float64, i int) float64 {
	if i < len(scores) {
		return scores[i]
	}
	return 0
}

// Filter adjusts reconciled labels after alignment. Filters run in order
// and each receives the previous filter's output.
type Filter interface {
	Apply(tokens []document.Token) []document.Token
}

// Reconcile aligns predictions to tokens and applies the given filters.
func Reconcile(tokens []document.Token, pred Prediction, filters ...Filter) []document.Token {
	out := Align(tokens, pred)
	for _, f := range filters {
		out = f.Apply(out)
	}
	return out
}
