package extract

import (
	"strings"

	"github.com/Matamaru/caesar-ocr/internal/classify"
	"github.com/Matamaru/caesar-ocr/internal/rules"
)

// DefaultRegistries builds the validator and plugin registries the host
// hands to the rule engine. Rule documents reference these by name; rules
// naming anything else are skipped (plugins) or rejected (validators).
func DefaultRegistries() *rules.Registries {
	return &rules.Registries{
		Validators: rules.BuiltinValidators(),
		Plugins: map[string]rules.PluginFunc{
			"mrz": func(text string, _ map[string]string) map[string]string {
				return Passport(text)
			},
			"diploma": func(text string, _ map[string]string) map[string]string {
				return Diploma(text)
			},
			"invoice": func(text string, _ map[string]string) map[string]string {
				return Invoice(text)
			},
			"present_docs": func(text string, _ map[string]string) map[string]string {
				docs := classify.InferPresentDocs(text)
				if len(docs) == 0 {
					return nil
				}
				return map[string]string{"present_docs": strings.Join(docs, ", ")}
			},
		},
	}
}

// ByDocType runs the extractor matching the classified document type.
func ByDocType(docType, text string) map[string]string {
	switch docType {
	case classify.TypePassport:
		return Passport(text)
	case classify.TypeDiploma:
		return Diploma(text)
	case classify.TypeFinancial:
		return Invoice(text)
	default:
		return map[string]string{}
	}
}
