package mrz

import (
	"fmt"
	"strings"
)

// TD3Input is the data needed to compose a passport MRZ.
// Dates are YYMMDD. Sex is M, F or empty (encoded as filler).
type TD3Input struct {
	Surname        string
	GivenNames     string
	IssuingCountry string
	Nationality    string
	BirthDate      string
	Sex            string
	ExpiryDate     string
	DocumentNumber string
	PersonalNumber string
}

// EncodeTD3 composes the two 44-character lines of a TD3 passport MRZ,
// including all check digits. Name transliteration is lossy (see
// Transliterate); truncated reports whether the name field was cut to fit
// line 1. Fields that cannot be represented in the MRZ alphabet cause an
// explicit error: an identity line must never be emitted silently corrupted.
func EncodeTD3(in TD3Input) (line1, line2 string, truncated bool, err error) {
	surname := Transliterate(in.Surname)
	given := Transliterate(in.GivenNames)
	if strings.Trim(surname, string(Filler)) == "" {
		return "", "", false, fmt.Errorf("surname %q has no MRZ representation", in.Surname)
	}

	country, err := codeField("issuing country", in.IssuingCountry)
	if err != nil {
		return "", "", false, err
	}
	nationality, err := codeField("nationality", in.Nationality)
	if err != nil {
		return "", "", false, err
	}

	docNum, err := dataField("document number", in.DocumentNumber, 9)
	if err != nil {
		return "", "", false, err
	}
	personal, err := dataField("personal number", in.PersonalNumber, 14)
	if err != nil {
		return "", "", false, err
	}

	birth, err := dateField("birth date", in.BirthDate)
	if err != nil {
		return "", "", false, err
	}
	expiry, err := dateField("expiry date", in.ExpiryDate)
	if err != nil {
		return "", "", false, err
	}

	sex, err := sexField(in.Sex)
	if err != nil {
		return "", "", false, err
	}

	line1 = "P" + string(Filler) + country + surname + "<<" + given
	if len(line1) > TD3LineLength {
		line1 = line1[:TD3LineLength]
		truncated = true
	}
	line1 += strings.Repeat(string(Filler), TD3LineLength-len(line1))

	composite := docNum + checkString(docNum) +
		birth + checkString(birth) +
		expiry + checkString(expiry) +
		personal + checkString(personal)

	line2 = docNum + checkString(docNum) +
		nationality +
		birth + checkString(birth) +
		sex +
		expiry + checkString(expiry) +
		personal + checkString(personal) +
		checkString(composite)

	return line1, line2, truncated, nil
}

func checkString(s string) string {
	return string(checkByte(s))
}

// Transliterate maps a name into the MRZ alphabet: uppercase, German
// umlauts and eszett expanded (AE/OE/UE/SS), separators and anything else
// outside A-Z replaced by the filler character.
func Transliterate(name string) string {
	replaced := strings.NewReplacer(
		"Ä", "AE", "ä", "AE",
		"Ö", "OE", "ö", "OE",
		"Ü", "UE", "ü", "UE",
		"ß", "SS",
	).Replace(name)
	replaced = strings.ToUpper(replaced)

	var b strings.Builder
	for _, r := range replaced {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		} else {
			b.WriteByte(Filler)
		}
	}
	return b.String()
}

// codeField validates a 3-letter country code field.
func codeField(name, v string) (string, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if len(v) != 3 {
		return "", fmt.Errorf("%s %q must be a 3-letter code", name, v)
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		if (c < 'A' || c > 'Z') && c != Filler {
			return "", fmt.Errorf("%s %q contains non-MRZ character %q", name, v, c)
		}
	}
	return v, nil
}

// dataField validates an alphanumeric field and pads it with fillers to
// width. Values longer than their slot cannot be truncated safely.
func dataField(name, v string, width int) (string, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if len(v) > width {
		return "", fmt.Errorf("%s %q exceeds %d characters", name, v, width)
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != Filler {
			return "", fmt.Errorf("%s %q contains non-MRZ character %q", name, v, c)
		}
	}
	return v + strings.Repeat(string(Filler), width-len(v)), nil
}

func dateField(name, v string) (string, error) {
	if len(v) != 6 {
		return "", fmt.Errorf("%s %q must be YYMMDD", name, v)
	}
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return "", fmt.Errorf("%s %q must be YYMMDD", name, v)
		}
	}
	return v, nil
}

func sexField(v string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "M":
		return "M", nil
	case "F":
		return "F", nil
	case "", "X", string(Filler):
		return string(Filler), nil
	default:
		return "", fmt.Errorf("sex %q must be M, F, X or empty", v)
	}
}
