package mrz

import "strings"

// Classify determines the MRZ layout purely from line count and exact line
// lengths: 3x30 -> TD1, 2x36 -> TD2, 2x44 -> TD3, anything else Unknown.
func Classify(lines []string) Variant {
	switch {
	case len(lines) == 3 && allLen(lines, TD1LineLength):
		return TD1
	case len(lines) == 2 && allLen(lines, TD2LineLength):
		return TD2
	case len(lines) == 2 && allLen(lines, TD3LineLength):
		return TD3
	default:
		return Unknown
	}
}

func allLen(lines []string, n int) bool {
	for _, l := range lines {
		if len(l) != n {
			return false
		}
	}
	return true
}

// Decode extracts fields from candidate MRZ lines. Input lines are
// normalized (uppercased, embedded spaces removed) before classification.
// Extraction is best-effort: slices that fall outside the line are omitted
// rather than aborting the decode, so OCR-truncated input still yields a
// partial record. An Unknown layout yields an empty record.
func Decode(lines []string) Record {
	norm := make([]string, len(lines))
	for i, l := range lines {
		norm[i] = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(l), " ", ""))
	}

	variant := Classify(norm)
	rec := Record{Variant: variant, Valid: map[string]bool{}}

	switch variant {
	case TD1:
		decodeTD1(norm, &rec)
	case TD2:
		decodeTD2(norm, &rec)
	case TD3:
		decodeTD3(norm, &rec)
	default:
		return rec
	}
	rec.Lines = norm
	return rec
}

// decodeTD3 parses the passport layout.
//
// Line 1: P<CCC SURNAME<<GIVEN<NAMES<<<<...
// Line 2: DOCNUM(9) C NAT(3) BIRTH(6) C SEX EXPIRY(6) C PERSONAL(14) C FINAL
func decodeTD3(lines []string, rec *Record) {
	l1, l2 := lines[0], lines[1]

	rec.DocumentCode = trimFiller(slice(l1, 0, 2))
	rec.IssuingCountry = slice(l1, 2, 5)
	rec.Surname, rec.GivenNames = splitName(slice(l1, 5, TD3LineLength))

	rec.DocumentNumber = trimFiller(slice(l2, 0, 9))
	rec.DocumentNumberCheck = slice(l2, 9, 10)
	rec.Nationality = slice(l2, 10, 13)
	rec.BirthDate = slice(l2, 13, 19)
	rec.BirthDateCheck = slice(l2, 19, 20)
	rec.Sex = slice(l2, 20, 21)
	rec.ExpiryDate = slice(l2, 21, 27)
	rec.ExpiryDateCheck = slice(l2, 27, 28)
	rec.PersonalNumber = trimFiller(slice(l2, 28, 42))
	rec.PersonalNumberCheck = slice(l2, 42, 43)
	rec.FinalCheck = slice(l2, 43, 44)

	validate(rec, FieldDocumentNumber, slice(l2, 0, 9), rec.DocumentNumberCheck)
	validate(rec, FieldBirthDate, rec.BirthDate, rec.BirthDateCheck)
	validate(rec, FieldExpiryDate, rec.ExpiryDate, rec.ExpiryDateCheck)
	validate(rec, FieldPersonalNumber, slice(l2, 28, 42), rec.PersonalNumberCheck)

	// The composite excludes nationality and sex.
	composite := slice(l2, 0, 10) + slice(l2, 13, 20) + slice(l2, 21, 43)
	validate(rec, FieldComposite, composite, rec.FinalCheck)
}

// decodeTD2 parses the 2x36 layout used on visas and some ID cards.
//
// Line 1: CC<CCC SURNAME<<GIVEN<NAMES<<<...
// Line 2: DOCNUM(9) C NAT(3) BIRTH(6) C SEX EXPIRY(6) C OPTIONAL(7) FINAL
func decodeTD2(lines []string, rec *Record) {
	l1, l2 := lines[0], lines[1]

	rec.DocumentCode = trimFiller(slice(l1, 0, 2))
	rec.IssuingCountry = slice(l1, 2, 5)
	rec.Surname, rec.GivenNames = splitName(slice(l1, 5, TD2LineLength))

	rec.DocumentNumber = trimFiller(slice(l2, 0, 9))
	rec.DocumentNumberCheck = slice(l2, 9, 10)
	rec.Nationality = slice(l2, 10, 13)
	rec.BirthDate = slice(l2, 13, 19)
	rec.BirthDateCheck = slice(l2, 19, 20)
	rec.Sex = slice(l2, 20, 21)
	rec.ExpiryDate = slice(l2, 21, 27)
	rec.ExpiryDateCheck = slice(l2, 27, 28)
	rec.OptionalData = trimFiller(slice(l2, 28, 35))
	rec.FinalCheck = slice(l2, 35, 36)

	validate(rec, FieldDocumentNumber, slice(l2, 0, 9), rec.DocumentNumberCheck)
	validate(rec, FieldBirthDate, rec.BirthDate, rec.BirthDateCheck)
	validate(rec, FieldExpiryDate, rec.ExpiryDate, rec.ExpiryDateCheck)

	composite := slice(l2, 0, 10) + slice(l2, 13, 20) + slice(l2, 21, 35)
	validate(rec, FieldComposite, composite, rec.FinalCheck)
}

// decodeTD1 parses the 3x30 layout used on ID cards.
//
// Line 1: CC CCC DOCNUM(9) C OPTIONAL(15)
// Line 2: BIRTH(6) C SEX EXPIRY(6) C NAT(3) OPTIONAL(11) FINAL
// Line 3: SURNAME<<GIVEN<NAMES<<<...
func decodeTD1(lines []string, rec *Record) {
	l1, l2, l3 := lines[0], lines[1], lines[2]

	rec.DocumentCode = trimFiller(slice(l1, 0, 2))
	rec.IssuingCountry = slice(l1, 2, 5)
	rec.DocumentNumber = trimFiller(slice(l1, 5, 14))
	rec.DocumentNumberCheck = slice(l1, 14, 15)
	rec.OptionalData = trimFiller(slice(l1, 15, 30))

	rec.BirthDate = slice(l2, 0, 6)
	rec.BirthDateCheck = slice(l2, 6, 7)
	rec.Sex = slice(l2, 7, 8)
	rec.ExpiryDate = slice(l2, 8, 14)
	rec.ExpiryDateCheck = slice(l2, 14, 15)
	rec.Nationality = slice(l2, 15, 18)
	rec.FinalCheck = slice(l2, 29, 30)

	rec.Surname, rec.GivenNames = splitName(slice(l3, 0, TD1LineLength))

	validate(rec, FieldDocumentNumber, slice(l1, 5, 14), rec.DocumentNumberCheck)
	validate(rec, FieldBirthDate, rec.BirthDate, rec.BirthDateCheck)
	validate(rec, FieldExpiryDate, rec.ExpiryDate, rec.ExpiryDateCheck)

	composite := slice(l1, 5, 30) + slice(l2, 0, 7) + slice(l2, 8, 15) + slice(l2, 18, 29)
	validate(rec, FieldComposite, composite, rec.FinalCheck)
}

// validate recomputes the check digit over value and records the comparison
// against the stored check character. Missing slices record nothing.
func validate(rec *Record, field, value, check string) {
	if value == "" || len(check) != 1 {
		return
	}
	rec.Valid[field] = checkByte(value) == check[0]
}

// slice returns s[start:end], clamped; out-of-range access yields "".
func slice(s string, start, end int) string {
	if start < 0 || start >= len(s) {
		return ""
	}
	if end > len(s) {
		end = len(s)
	}
	if end <= start {
		return ""
	}
	return s[start:end]
}

// splitName splits a name field at the double filler into surname and given
// names, mapping remaining fillers back to spaces.
func splitName(field string) (surname, given string) {
	parts := strings.SplitN(field, "<<", 2)
	surname = trimFillerWords(parts[0])
	if len(parts) == 2 {
		given = trimFillerWords(parts[1])
	}
	return surname, given
}

func trimFillerWords(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, string(Filler), " "))
}

func trimFiller(s string) string {
	return strings.Trim(s, string(Filler))
}
