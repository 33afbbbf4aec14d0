package extract

import (
	"regexp"
	"strings"
)

var (
	personNameRe = regexp.MustCompile(`(?i)(name|inhaber|inhaberin|holder|graduate)[:\s]+([A-ZÄÖÜ][^\n,;]{2,70})`)
	degreeRe     = regexp.MustCompile(`(?i)(Urkunde|Diplom|Bachelor|Master|Magister|Staatsexamen|Doctor|Doktor|PhD)`)
	dateRe       = regexp.MustCompile(
		`(?:(?:19|20)\d{2}[-./](?:0?[1-9]|1[0-2])[-./](?:0?[1-9]|[12]\d|3[01]))|` +
			`(?:(?:0?[1-9]|[12]\d|3[01])[-./](?:0?[1-9]|1[0-2])[-./](?:19|20)\d{2})`)
	certifiedRe = regexp.MustCompile(`(?i)(certified copy|beglaubigte kopie|beglaubigung|copy)`)

	institutionWordRe = regexp.MustCompile(`(?i)(universität|university|hochschule|college|institut|institute|akademie|academy|school)`)
	capitalizedWordRe = regexp.MustCompile(`^\p{Lu}[\p{Ll}\p{Lu}'-]+$`)
)

// Diploma extracts diploma-like fields from recognized text. All values
// are guesses; the caller decides how much to trust them.
func Diploma(text string) map[string]string {
	fields := make(map[string]string)

	lines := strings.Split(text, "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		institution := strings.TrimSpace(lines[0])
		inst, holder := SplitTrailingName(institution)
		fields["institution_guess"] = inst
		if holder != "" {
			fields["holder_name_guess"] = holder
		}
	}

	if m := personNameRe.FindStringSubmatch(text); m != nil {
		fields["holder_name_guess"] = strings.TrimSpace(m[2])
	}
	if m := degreeRe.FindStringSubmatch(text); m != nil {
		fields["degree_type_guess"] = strings.TrimSpace(m[1])
	}
	if dates := dateRe.FindAllString(text, -1); len(dates) > 0 {
		fields["dates_detected"] = strings.Join(dates, ", ")
	}
	if certifiedRe.MatchString(text) {
		fields["is_certified_copy_hint"] = "true"
	}
	return fields
}

// SplitTrailingName splits a trailing capitalized two-word span off an
// institution string, e.g. "Universität Hamburg Anna Schmidt" into
// institution and holder name. This is a best-effort, locale-sensitive
// heuristic: it only fires when the trailing words carry no institution
// keyword, and callers must treat the result as a guess.
func SplitTrailingName(s string) (institution, holder string) {
	words := strings.Fields(s)
	if len(words) < 4 {
		return s, ""
	}
	tail := words[len(words)-2:]
	for _, w := range tail {
		if !capitalizedWordRe.MatchString(w) || institutionWordRe.MatchString(w) {
			return s, ""
		}
	}
	head := words[:len(words)-2]
	if !institutionWordRe.MatchString(strings.Join(head, " ")) {
		return s, ""
	}
	return strings.Join(head, " "), strings.Join(tail, " ")
}
