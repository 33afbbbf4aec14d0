package analyze

import (
	"testing"

	"github.com/Matamaru/caesar-ocr/internal/classify"
	"github.com/Matamaru/caesar-ocr/internal/document"
	"github.com/Matamaru/caesar-ocr/internal/mrz"
	"github.com/Matamaru/caesar-ocr/internal/reconcile"
	"github.com/Matamaru/caesar-ocr/internal/rules"
)

func tok(text string, x0, y0, x1, y1 float64) document.Token {
	return document.Token{Text: text, BBox: document.Box{x0, y0, x1, y1}}
}

func TestAnalyzeDocumentPassportGeometry(t *testing.T) {
	// A passport scan: headline plus the MRZ split across four tokens, no
	// grouping keys, so the geometric line path has to reassemble it.
	tokens := []document.Token{
		tok("REISEPASS", 10, 20, 200, 44),
		tok("P<UTOERIKSSON<<ANNA", 10, 700, 400, 722),
		tok("<MARIA<<<<<<<<<<<<<<<<<<<", 405, 701, 880, 723),
		tok("L898902C36UTO7408122F", 10, 740, 440, 762),
		tok("1204159ZE184226B<<<<<10", 445, 741, 880, 763),
	}

	svc := NewService(nil, nil)
	res := svc.AnalyzeDocument(DocumentRequest{Tokens: tokens})

	if res.DocType != classify.TypePassport {
		t.Fatalf("doc type = %q, want %q", res.DocType, classify.TypePassport)
	}
	if res.MRZ == nil || res.MRZ.Variant != mrz.TD3 {
		t.Fatalf("MRZ record = %+v, want decoded TD3", res.MRZ)
	}
	if res.Fields["surname"] != "ERIKSSON" {
		t.Errorf("surname = %q", res.Fields["surname"])
	}
	if res.Fields["document_number"] != "L898902C3" {
		t.Errorf("document_number = %q", res.Fields["document_number"])
	}
	if len(res.Tokens) != len(tokens) {
		t.Errorf("got %d tokens back, want %d", len(res.Tokens), len(tokens))
	}
}

func TestAnalyzeDocumentRulesAndReconciliation(t *testing.T) {
	tokens := []document.Token{
		{Text: "Rechnung", Block: 1, Par: 1, Line: 1, Word: 1},
		{Text: "Nr.", Block: 1, Par: 1, Line: 1, Word: 2},
		{Text: "RE-77", Block: 1, Par: 1, Line: 1, Word: 3},
	}
	engine, err := rules.New([]rules.Rule{{
		Name:    "invoice_number",
		Pattern: `(?i)rechnung\s*nr\.?\s*([A-Z0-9-]+)`,
		Group:   1,
	}})
	if err != nil {
		t.Fatal(err)
	}

	svc := NewService(engine, nil)
	res := svc.AnalyzeDocument(DocumentRequest{
		Tokens: tokens,
		Prediction: &reconcile.Prediction{
			Labels: []string{reconcile.BackgroundLabel, reconcile.BackgroundLabel, "INV"},
			Scores: []float64{0.1, 0.1, 0.95},
		},
		Debug: true,
	})

	if res.DocType != classify.TypeFinancial {
		t.Fatalf("doc type = %q, want %q", res.DocType, classify.TypeFinancial)
	}
	if res.Fields["invoice_number"] != "RE-77" {
		t.Errorf("rule field = %q", res.Fields["invoice_number"])
	}
	if res.Fields["invoice_numbers"] != "RE-77" {
		t.Errorf("heuristic field = %q", res.Fields["invoice_numbers"])
	}
	if res.Tokens[2].Label != "INV" || res.Tokens[2].LabelScore != 0.95 {
		t.Errorf("token 2 = %q/%f", res.Tokens[2].Label, res.Tokens[2].LabelScore)
	}
	if len(res.Trace) == 0 {
		t.Error("debug trace missing")
	}
}

func TestAnalyzeDocumentRulesWinOnCollision(t *testing.T) {
	tokens := []document.Token{
		{Text: "Rechnung", Block: 1, Par: 1, Line: 1, Word: 1},
		{Text: "RE-9", Block: 1, Par: 1, Line: 1, Word: 2},
	}
	engine, err := rules.New([]rules.Rule{{
		Name:        "numbers_override",
		Pattern:     `Rechnung`,
		OutputField: "invoice_numbers",
	}})
	if err != nil {
		t.Fatal(err)
	}

	res := NewService(engine, nil).AnalyzeDocument(DocumentRequest{Tokens: tokens})
	if res.Fields["invoice_numbers"] != "Rechnung" {
		t.Errorf("invoice_numbers = %q, want rule output to win", res.Fields["invoice_numbers"])
	}
}

func TestAnalyzeDocumentEmptyRequest(t *testing.T) {
	res := NewService(nil, nil).AnalyzeDocument(DocumentRequest{})
	if res.DocType != classify.TypeUnknown {
		t.Errorf("doc type = %q", res.DocType)
	}
	if len(res.Fields) != 0 {
		t.Errorf("fields = %v, want none", res.Fields)
	}
	if res.MRZ != nil {
		t.Errorf("MRZ = %+v, want nil", res.MRZ)
	}
}

func TestAnalyzeTextDiploma(t *testing.T) {
	text := "Universität Hamburg\nUrkunde\nName: Anna Schmidt\nBachelor of Science"
	res := NewService(nil, nil).AnalyzeText(text, false)

	if res.DocType != classify.TypeDiploma {
		t.Fatalf("doc type = %q", res.DocType)
	}
	if res.Fields["institution_guess"] != "Universität Hamburg" {
		t.Errorf("institution = %q", res.Fields["institution_guess"])
	}
	if res.Fields["holder_name_guess"] != "Anna Schmidt" {
		t.Errorf("holder = %q", res.Fields["holder_name_guess"])
	}
}

func TestAnalyzeTextPassportMRZ(t *testing.T) {
	text := "REISEPASS\nP<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\nL898902C36UTO7408122F1204159ZE184226B<<<<<10"
	res := NewService(nil, nil).AnalyzeText(text, false)

	if res.DocType != classify.TypePassport {
		t.Fatalf("doc type = %q", res.DocType)
	}
	if res.MRZ == nil || !res.MRZ.AllValid() {
		t.Fatalf("MRZ = %+v, want fully valid record", res.MRZ)
	}
	if res.Fields["expiry_date"] != "120415" {
		t.Errorf("expiry_date = %q", res.Fields["expiry_date"])
	}
}
