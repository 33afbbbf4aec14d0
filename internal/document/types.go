// Package document defines the token and page schema shared by the OCR
// collaborators and the reconciliation engine, plus the loaders that turn
// PDF files into token streams.
package document

// Box is a bounding rectangle in pixel space: [x0, y0, x1, y1].
type Box [4]float64

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b[2] - b[0] }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b[3] - b[1] }

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 { return (b[1] + b[3]) / 2 }

// Token is one recognized word. It is produced by an OCR collaborator and
// treated as immutable by the engine; only Label and LabelScore are
// annotated by the reconciliation layer.
type Token struct {
	Text string `json:"text"`
	BBox Box    `json:"bbox"`

	// Character offsets into the assembled document text, when known.
	Start int `json:"start,omitempty"`
	End   int `json:"end,omitempty"`

	// OCR confidence in [0, 100], negative when unknown.
	Conf float64 `json:"conf,omitempty"`

	// Physical grouping keys from the OCR layout analysis. All-zero keys
	// mean the producer supplied no grouping (Tesseract numbers from 1).
	Block int `json:"block_num,omitempty"`
	Par   int `json:"par_num,omitempty"`
	Line  int `json:"line_num,omitempty"`
	Word  int `json:"word_num,omitempty"`

	Page int `json:"page,omitempty"`

	// Reconciled token classification, written by the label reconciler.
	Label      string  `json:"label,omitempty"`
	LabelScore float64 `json:"label_score,omitempty"`
}

// HasGroupKeys reports whether the token carries explicit line grouping
// from the OCR producer.
func (t Token) HasGroupKeys() bool {
	return t.Block != 0 || t.Par != 0 || t.Line != 0 || t.Word != 0
}

// GroupKey identifies the physical line a token belongs to.
type GroupKey struct {
	Block int
	Par   int
	Line  int
}

// Key returns the token's line grouping key.
func (t Token) Key() GroupKey {
	return GroupKey{Block: t.Block, Par: t.Par, Line: t.Line}
}

// Page is one page of a recognized document.
type Page struct {
	Page   int     `json:"page"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Text   string  `json:"text"`
	Tokens []Token `json:"tokens,omitempty"`
}

// Document is the canonical result schema for one analyzed document.
type Document struct {
	DocID    string            `json:"doc_id,omitempty"`
	DocType  string            `json:"doc_type"`
	Language string            `json:"language,omitempty"`
	Pages    []Page            `json:"pages,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// Text concatenates all page texts with newlines.
func (d Document) Text() string {
	switch len(d.Pages) {
	case 0:
		return ""
	case 1:
		return d.Pages[0].Text
	}
	var out string
	for i, p := range d.Pages {
		if i > 0 {
			out += "\n"
		}
		out += p.Text
	}
	return out
}

// AllTokens flattens the per-page token lists in reading order.
func (d Document) AllTokens() []Token {
	var out []Token
	for _, p := range d.Pages {
		out = append(out, p.Tokens...)
	}
	return out
}
