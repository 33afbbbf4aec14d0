package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRules reads an ordered rule list from a YAML document. The document
// is a sequence of rule objects; order in the file is execution order.
// Malformed documents fail here, at load time, never during document
// processing.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes a YAML rule document.
func ParseRules(data []byte) ([]Rule, error) {
	var ruleList []Rule
	if err := yaml.Unmarshal(data, &ruleList); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	for _, r := range ruleList {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	return ruleList, nil
}

// LoadEngine loads a rule document and compiles it in one step.
func LoadEngine(path string) (*Engine, error) {
	ruleList, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	return New(ruleList)
}
