// Package extract implements document-type-specific field extraction on
// top of the rule engine, the MRZ codec and the line locator. All
// extractors are best-effort: they return whatever fields they could find
// and never fail the document.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Matamaru/caesar-ocr/internal/locate"
	"github.com/Matamaru/caesar-ocr/internal/mrz"
)

var passportNumberRe = regexp.MustCompile(`(?i)(passport|passnummer|passport no)\s*[:\-]?\s*([A-Z0-9]{6,})`)

// InferMRZ detects MRZ-like lines in recognized text and decodes them.
// Lines are normalized per line; only lines fully inside the MRZ alphabet
// and at least 30 characters long are considered.
func InferMRZ(text string) mrz.Record {
	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(line), " ", ""))
		if norm == "" || !mrzAlphabet(norm) || len(norm) < mrz.TD1LineLength {
			continue
		}
		candidates = append(candidates, norm)
	}

	switch mrz.Classify(candidates) {
	case mrz.TD1, mrz.TD2, mrz.TD3:
		return mrz.Decode(candidates)
	}
	// More lines than the layout wants: try the leading pair/triple.
	if len(candidates) > 3 {
		if rec := mrz.Decode(candidates[:2]); rec.Variant != mrz.Unknown {
			return rec
		}
		if rec := mrz.Decode(candidates[:3]); rec.Variant != mrz.Unknown {
			return rec
		}
	}
	return mrz.Record{Variant: mrz.Unknown, Valid: map[string]bool{}}
}

func mrzAlphabet(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '<' {
			return false
		}
	}
	return true
}

// Passport extracts passport fields: the MRZ when one is present, with a
// labeled passport number in the body text as fallback.
func Passport(text string) map[string]string {
	fields := make(map[string]string)

	rec := InferMRZ(text)
	if rec.Variant != mrz.Unknown {
		for k, v := range rec.Fields() {
			fields[k] = v
		}
		for field, ok := range rec.Valid {
			fields[field+"_valid"] = strconv.FormatBool(ok)
		}
		for i, line := range rec.Lines {
			fields["mrz_line"+strconv.Itoa(i+1)] = line
		}
	}

	if _, ok := fields[mrz.FieldDocumentNumber]; !ok {
		if m := passportNumberRe.FindStringSubmatch(text); m != nil {
			fields[mrz.FieldDocumentNumber] = m[2]
		}
	}
	return fields
}

// PassportFromLines runs the geometric MRZ path: cluster tokens into
// lines, select MRZ candidates and decode. Used when token geometry is
// available; falls back to nothing when no candidate qualifies.
func PassportFromLines(lines []locate.Line) mrz.Record {
	chosen := locate.SelectMRZ(lines)
	if len(chosen) == 0 {
		return mrz.Record{Variant: mrz.Unknown, Valid: map[string]bool{}}
	}
	return mrz.Decode(locate.LineStrings(chosen))
}
