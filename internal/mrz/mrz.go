// Package mrz implements the fixed-width machine-readable-zone text codec
// defined by ICAO Doc 9303 for identity documents. It covers the three
// standard layouts (TD1, TD2, TD3), the shared 7-3-1 weighted check digit,
// and best-effort decoding of noisy OCR input.
package mrz

// Variant identifies an MRZ layout.
type Variant string

const (
	// TD1 is the 3-line, 30-characters-per-line layout (ID cards).
	TD1 Variant = "TD1"
	// TD2 is the 2-line, 36-characters-per-line layout (visas, some IDs).
	TD2 Variant = "TD2"
	// TD3 is the 2-line, 44-characters-per-line layout (passports).
	TD3 Variant = "TD3"
	// Unknown marks input that matches none of the standard layouts.
	Unknown Variant = "unknown"
)

// Line lengths per variant.
const (
	TD1LineLength = 30
	TD2LineLength = 36
	TD3LineLength = 44
)

// Filler is the MRZ padding character.
const Filler = '<'

// Field keys used in Record.Valid.
const (
	FieldDocumentNumber = "document_number"
	FieldBirthDate      = "birth_date"
	FieldExpiryDate     = "expiry_date"
	FieldPersonalNumber = "personal_number"
	FieldComposite      = "composite"
)

// checkWeights cycle over character positions when computing a check digit.
var checkWeights = [3]int{7, 3, 1}

// CheckDigit computes the ICAO 9303 check digit for s: each character is
// mapped to a value (digit -> itself, A-Z -> 10..35, filler -> 0),
// multiplied by the cycling weights 7, 3, 1 and summed modulo 10.
// Characters outside the MRZ alphabet contribute zero.
func CheckDigit(s string) int {
	total := 0
	for i := 0; i < len(s); i++ {
		total += charValue(s[i]) * checkWeights[i%3]
	}
	return total % 10
}

// checkByte is CheckDigit as the ASCII digit that appears on the document.
func checkByte(s string) byte {
	return byte('0' + CheckDigit(s))
}

func charValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return 10 + int(c-'A')
	default:
		return 0
	}
}

// Record holds the fields decoded from an MRZ. Fields that could not be
// extracted are left empty; Valid carries one entry per check digit that
// could be recomputed and compared.
type Record struct {
	Variant             Variant         `json:"variant"`
	DocumentCode        string          `json:"document_code,omitempty"`
	IssuingCountry      string          `json:"issuing_country,omitempty"`
	Surname             string          `json:"surname,omitempty"`
	GivenNames          string          `json:"given_names,omitempty"`
	DocumentNumber      string          `json:"document_number,omitempty"`
	DocumentNumberCheck string          `json:"document_number_check,omitempty"`
	Nationality         string          `json:"nationality,omitempty"`
	BirthDate           string          `json:"birth_date,omitempty"`
	BirthDateCheck      string          `json:"birth_date_check,omitempty"`
	Sex                 string          `json:"sex,omitempty"`
	ExpiryDate          string          `json:"expiry_date,omitempty"`
	ExpiryDateCheck     string          `json:"expiry_date_check,omitempty"`
	PersonalNumber      string          `json:"personal_number,omitempty"`
	PersonalNumberCheck string          `json:"personal_number_check,omitempty"`
	OptionalData        string          `json:"optional_data,omitempty"`
	FinalCheck          string          `json:"final_check,omitempty"`
	Lines               []string        `json:"lines,omitempty"`
	Valid               map[string]bool `json:"valid"`
}

// Fields flattens the record into a string map keyed like the rule-engine
// field maps, so MRZ output can be merged with regex extraction output.
func (r Record) Fields() map[string]string {
	out := make(map[string]string)
	put := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	put("mrz_type", string(r.Variant))
	put("document_code", r.DocumentCode)
	put("issuing_country", r.IssuingCountry)
	put("surname", r.Surname)
	put("given_names", r.GivenNames)
	put(FieldDocumentNumber, r.DocumentNumber)
	put("nationality", r.Nationality)
	put(FieldBirthDate, r.BirthDate)
	put("sex", r.Sex)
	put(FieldExpiryDate, r.ExpiryDate)
	put(FieldPersonalNumber, r.PersonalNumber)
	return out
}

// AllValid reports whether every recomputed check digit matched.
// A record with no checkable fields is not considered valid.
func (r Record) AllValid() bool {
	if len(r.Valid) == 0 {
		return false
	}
	for _, ok := range r.Valid {
		if !ok {
			return false
		}
	}
	return true
}
