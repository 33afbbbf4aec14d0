package document

import (
	"reflect"
	"testing"
)

func TestBoxGeometry(t *testing.T) {
	b := Box{10, 20, 110, 50}
	if b.Width() != 100 {
		t.Errorf("Width() = %f", b.Width())
	}
	if b.Height() != 30 {
		t.Errorf("Height() = %f", b.Height())
	}
	if b.CenterY() != 35 {
		t.Errorf("CenterY() = %f", b.CenterY())
	}
}

func TestTokenHasGroupKeys(t *testing.T) {
	if (Token{Text: "x"}).HasGroupKeys() {
		t.Error("zero keys should report no grouping")
	}
	if !(Token{Text: "x", Line: 1}).HasGroupKeys() {
		t.Error("non-zero line key should report grouping")
	}
}

func TestTokenKey(t *testing.T) {
	a := Token{Block: 1, Par: 2, Line: 3, Word: 1}
	b := Token{Block: 1, Par: 2, Line: 3, Word: 9}
	c := Token{Block: 1, Par: 2, Line: 4, Word: 1}
	if a.Key() != b.Key() {
		t.Error("tokens on the same line must share a key")
	}
	if a.Key() == c.Key() {
		t.Error("tokens on different lines must not share a key")
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a  b\tc", "a b c"},
		{"one\n\n\ntwo", "one\ntwo"},
		{"  leading\ntrailing  ", "leading\ntrailing"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAssembleText(t *testing.T) {
	tokens := []Token{
		{Text: "world", Block: 1, Par: 1, Line: 1, Word: 2},
		{Text: "hello", Block: 1, Par: 1, Line: 1, Word: 1},
		{Text: "again", Block: 1, Par: 1, Line: 2, Word: 1},
	}

	text, ordered := AssembleText(tokens)
	if text != "hello world again" {
		t.Fatalf("text = %q", text)
	}
	if ordered[0].Text != "hello" || ordered[1].Text != "world" {
		t.Errorf("tokens not reordered: %v", ordered)
	}
	for _, tok := range ordered {
		if text[tok.Start:tok.End] != tok.Text {
			t.Errorf("offsets for %q: text[%d:%d] = %q", tok.Text, tok.Start, tok.End, text[tok.Start:tok.End])
		}
	}
	// Input slice must not be mutated.
	if tokens[0].Text != "world" || tokens[0].Start != 0 {
		t.Errorf("input mutated: %+v", tokens[0])
	}
}

func TestDocumentText(t *testing.T) {
	doc := Document{Pages: []Page{
		{Page: 1, Text: "first"},
		{Page: 2, Text: "second"},
	}}
	if doc.Text() != "first\nsecond" {
		t.Errorf("Text() = %q", doc.Text())
	}
	if (Document{}).Text() != "" {
		t.Error("empty document should have empty text")
	}
}

func TestDocumentAllTokens(t *testing.T) {
	doc := Document{Pages: []Page{
		{Page: 1, Tokens: []Token{{Text: "a"}, {Text: "b"}}},
		{Page: 2, Tokens: []Token{{Text: "c"}}},
	}}
	var texts []string
	for _, tok := range doc.AllTokens() {
		texts = append(texts, tok.Text)
	}
	if !reflect.DeepEqual(texts, []string{"a", "b", "c"}) {
		t.Errorf("AllTokens() order = %v", texts)
	}
}
