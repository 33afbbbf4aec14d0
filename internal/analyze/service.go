// Package analyze orchestrates per-document field reconciliation: document
// classification, declarative rule extraction, MRZ location/decoding and
// token label reconciliation. Each document is processed independently;
// the three engine paths read disjoint inputs and their outputs are merged
// here.
package analyze

import (
	"strings"
	"sync"

	"github.com/Matamaru/caesar-ocr/internal/classify"
	"github.com/Matamaru/caesar-ocr/internal/document"
	"github.com/Matamaru/caesar-ocr/internal/extract"
	"github.com/Matamaru/caesar-ocr/internal/locate"
	"github.com/Matamaru/caesar-ocr/internal/mrz"
	"github.com/Matamaru/caesar-ocr/internal/reconcile"
	"github.com/Matamaru/caesar-ocr/internal/rules"
)

// Service wires the reconciliation engine components together. It is
// stateless across documents and safe for concurrent use.
type Service struct {
	engine     *rules.Engine
	registries *rules.Registries
	filters    []reconcile.Filter
}

// NewService creates an analysis service. engine may be nil when no rule
// document is configured; registries may be nil when no plugins or
// validators are needed.
func NewService(engine *rules.Engine, registries *rules.Registries, filters ...reconcile.Filter) *Service {
	if registries == nil {
		registries = extract.DefaultRegistries()
	}
	return &Service{engine: engine, registries: registries, filters: filters}
}

// DocumentRequest carries everything known about one document: the OCR
// token stream, optionally the assembled text, and optionally the raw
// sub-word predictions from a token classifier.
type DocumentRequest struct {
	Tokens     []document.Token      `json:"tokens"`
	Text       string                `json:"text,omitempty"`
	Prediction *reconcile.Prediction `json:"prediction,omitempty"`
	Debug      bool                  `json:"debug,omitempty"`
}

// DocumentResult is the merged output of all engine paths.
type DocumentResult struct {
	DocType string            `json:"doc_type"`
	Fields  map[string]string `json:"fields"`
	MRZ     *mrz.Record       `json:"mrz,omitempty"`
	Tokens  []document.Token  `json:"tokens,omitempty"`
	Trace   []rules.DebugEntry `json:"trace,omitempty"`
}

// AnalyzeDocument runs classification, rule extraction, the geometric MRZ
// path and label reconciliation over one document. The paths run
// concurrently; they read disjoint inputs and write disjoint outputs that
// are merged before returning. Failures inside any path surface as absent
// fields, never as errors.
func (s *Service) AnalyzeDocument(req DocumentRequest) DocumentResult {
	text := req.Text
	tokens := req.Tokens
	if text == "" && len(tokens) > 0 {
		text, tokens = document.AssembleText(tokens)
	}

	predictions := make([]string, len(tokens))
	for i, t := range tokens {
		predictions[i] = strings.ToLower(t.Text)
	}
	docType := classify.Classify(predictions)

	var (
		wg         sync.WaitGroup
		ruleFields map[string]string
		trace      []rules.DebugEntry
		mrzRec     mrz.Record
		reconciled []document.Token
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		if s.engine == nil {
			return
		}
		if req.Debug {
			ruleFields, trace = s.engine.RunDebug(text, s.registries)
		} else {
			ruleFields = s.engine.Run(text, s.registries)
		}
	}()
	go func() {
		defer wg.Done()
		mrzRec = extract.PassportFromLines(locate.Lines(tokens))
	}()
	go func() {
		defer wg.Done()
		if req.Prediction == nil {
			reconciled = tokens
			return
		}
		reconciled = reconcile.Reconcile(tokens, *req.Prediction, s.filters...)
	}()
	wg.Wait()

	result := DocumentResult{
		DocType: docType,
		Fields:  extract.ByDocType(docType, text),
		Tokens:  reconciled,
		Trace:   trace,
	}
	if mrzRec.Variant != mrz.Unknown {
		rec := mrzRec
		result.MRZ = &rec
		for k, v := range rec.Fields() {
			result.Fields[k] = v
		}
	}
	// Declarative rules win over built-in heuristics on collision.
	for k, v := range ruleFields {
		result.Fields[k] = v
	}
	return result
}

// AnalyzeText runs classification and rule extraction over bare text with
// no token geometry, for callers that only have a recognized string.
func (s *Service) AnalyzeText(text string, debug bool) DocumentResult {
	var predictions []string
	for _, w := range strings.Fields(text) {
		predictions = append(predictions, strings.ToLower(w))
	}
	docType := classify.Classify(predictions)

	result := DocumentResult{
		DocType: docType,
		Fields:  extract.ByDocType(docType, text),
	}
	if s.engine != nil {
		var ruleFields map[string]string
		if debug {
			ruleFields, result.Trace = s.engine.RunDebug(text, s.registries)
		} else {
			ruleFields = s.engine.Run(text, s.registries)
		}
		for k, v := range ruleFields {
			result.Fields[k] = v
		}
	}
	if rec := extract.InferMRZ(text); rec.Variant != mrz.Unknown {
		result.MRZ = &rec
		for k, v := range rec.Fields() {
			result.Fields[k] = v
		}
	}
	return result
}
