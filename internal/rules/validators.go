package rules

import (
	"regexp"
	"strconv"
	"strings"
)

// Common validator predicates. Hosts register these under the names rules
// reference; BuiltinValidators returns the standard set.

var (
	dateRe = regexp.MustCompile(
		`^(?:(?:19|20)\d{2}[-./](?:0?[1-9]|1[0-2])[-./](?:0?[1-9]|[12]\d|3[01]))$|` +
			`^(?:(?:0?[1-9]|[12]\d|3[01])[-./](?:0?[1-9]|1[0-2])[-./](?:19|20)\d{2})$`)
	amountRe = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})$`)
	yearRe   = regexp.MustCompile(`^(?:19|20)\d{2}$`)
)

// BuiltinValidators returns the validators shipped with the engine. The
// host may extend or override the returned map before passing it in.
func BuiltinValidators() map[string]ValidatorFunc {
	return map[string]ValidatorFunc{
		"non_empty": func(v string, _ map[string]string) bool {
			return strings.TrimSpace(v) != ""
		},
		"integer": func(v string, _ map[string]string) bool {
			_, err := strconv.Atoi(strings.TrimSpace(v))
			return err == nil
		},
		"date": func(v string, _ map[string]string) bool {
			return dateRe.MatchString(strings.TrimSpace(v))
		},
		"year": func(v string, _ map[string]string) bool {
			return yearRe.MatchString(strings.TrimSpace(v))
		},
		"amount": func(v string, _ map[string]string) bool {
			return amountRe.MatchString(strings.TrimSpace(v))
		},
		"uppercase": func(v string, _ map[string]string) bool {
			v = strings.TrimSpace(v)
			return v != "" && v == strings.ToUpper(v)
		},
		// A plausible MRZ check digit context: value is alphanumeric with
		// fillers only.
		"mrz_charset": func(v string, _ map[string]string) bool {
			if v == "" {
				return false
			}
			for i := 0; i < len(v); i++ {
				c := v[i]
				if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '<' {
					return false
				}
			}
			return true
		},
	}
}
