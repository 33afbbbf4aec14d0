// Package classify assigns a coarse document type from recognized text
// using lightweight keyword heuristics. It runs before field extraction so
// the right rule set and extractors can be chosen.
package classify

import (
	"regexp"
	"sort"
	"strings"
)

// Document types produced by Classify.
const (
	TypePassport  = "Passport"
	TypeDiploma   = "Degree Certificate"
	TypeFinancial = "Financial Report"
	TypeUnknown   = "unknown"
)

// Keyword hints per document type. Matching is done on lowercased OCR
// tokens and short phrases.
var (
	passportHints = newSet(
		"passport", "reisepass", "passeport", "passport no", "passnummer", "staat", "nationality",
	)
	diplomaHints = newSet(
		"zeugnis", "hochschule", "universität", "fachhochschule", "abschluss", "urkunde", "diplom",
		"diploma", "degree", "university", "college", "certificate", "transcript",
	)
	financialHints = newSet(
		"invoice", "invoice no", "invoice number", "invoice date", "accounting period",
		"amount", "total", "balance", "customer", "rechnung", "fehlerprotokoll",
	)
)

func newSet(words ...string) map[string]bool {
	s := make(map[string]bool, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}

// MRZLines returns the lines that look MRZ-dense: three or more filler
// characters is a cheap, reliable signal on passport scans.
func MRZLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if strings.Count(line, "<") >= 3 {
			out = append(out, line)
		}
	}
	return out
}

// Classify determines the document type from lowercased OCR word
// predictions. An MRZ-dense line implies a passport-like document before
// any keyword is consulted.
func Classify(predictions []string) string {
	if len(MRZLines(predictions)) > 0 {
		return TypePassport
	}
	if anyHint(predictions, passportHints) {
		return TypePassport
	}
	if anyHint(predictions, diplomaHints) {
		return TypeDiploma
	}
	if anyHint(predictions, financialHints) {
		return TypeFinancial
	}
	return TypeUnknown
}

func anyHint(predictions []string, hints map[string]bool) bool {
	for _, p := range predictions {
		if hints[strings.ToLower(p)] {
			return true
		}
	}
	return false
}

// canonicalDocs maps canonical document categories to detection keywords,
// used when one scan bundles several certificate types.
var canonicalDocs = map[string][]string{
	"passport":              {"passport", "pass", "reiseausweis", "reisepass", "passeport", "passnummer"},
	"id_card":               {"id card", "personalausweis", "ausweis"},
	"diploma":               {"diploma", "degree", "zeugnis", "urkunde", "abschluss", "hochschule", "universität"},
	"transcript":            {"transcript", "marksheet", "course list", "leistungsnachweis"},
	"license":               {"license", "registration", "approbation", "zulassung"},
	"birth_certificate":     {"birth", "geburtsurkunde"},
	"cv":                    {"cv", "lebenslauf", "curriculum vitae"},
	"good_standing":         {"good standing", "gsc"},
	"apostille":             {"apostille", "legalization", "legalisation"},
	"certified_translation": {"translation", "übersetzung", "uebersetzung", "beglaubigt"},
}

var canonicalRes = compileCanonical()

func compileCanonical() map[string][]*regexp.Regexp {
	out := make(map[string][]*regexp.Regexp, len(canonicalDocs))
	for canon, keywords := range canonicalDocs {
		for _, kw := range keywords {
			out[canon] = append(out[canon], regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}
	}
	return out
}

// InferPresentDocs infers which canonical document categories appear in
// the OCR text, by whole-word keyword search. The result is sorted for
// deterministic output.
func InferPresentDocs(text string) []string {
	lower := strings.ToLower(text)
	var present []string
	for canon, res := range canonicalRes {
		for _, re := range res {
			if re.MatchString(lower) {
				present = append(present, canon)
				break
			}
		}
	}
	sort.Strings(present)
	return present
}
