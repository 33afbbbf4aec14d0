package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRules = `
- name: invoice_number
  pattern: '(?:Invoice|Rechnung)\s*(?:No|Nr)?[.:]?\s*([A-Z0-9-]+)'
  group: 1
  flags: I
  confidence: 0.9
- name: accounting_period
  pattern: '(?:accounting period|abrechnungszeitraum)[:\s]*([A-Z0-9./ -]{3,})'
  group: 1
  flags: I
  output_field: period
- name: run_mrz
  plugin: mrz
- name: graduation_year
  pattern: 'Year:\s*(\d{4})'
  group: 1
  validators: [year, non_empty]
`

func TestParseRules(t *testing.T) {
	ruleList, err := ParseRules([]byte(sampleRules))
	require.NoError(t, err)
	require.Len(t, ruleList, 4)

	assert.Equal(t, "invoice_number", ruleList[0].Name)
	assert.Equal(t, 1, ruleList[0].Group)
	assert.Equal(t, "I", ruleList[0].Flags)
	require.NotNil(t, ruleList[0].Confidence)
	assert.InDelta(t, 0.9, *ruleList[0].Confidence, 1e-9)

	assert.Equal(t, "period", ruleList[1].Field())
	assert.Equal(t, "mrz", ruleList[2].Plugin)
	assert.Equal(t, []string{"year", "non_empty"}, ruleList[3].Validators)
}

func TestParseRulesPreservesOrder(t *testing.T) {
	ruleList, err := ParseRules([]byte(sampleRules))
	require.NoError(t, err)

	names := make([]string, len(ruleList))
	for i, r := range ruleList {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"invoice_number", "accounting_period", "run_mrz", "graduation_year"}, names)
}

func TestParseRulesRejectsMalformedDocument(t *testing.T) {
	_, err := ParseRules([]byte("not: [a, rule, list"))
	assert.Error(t, err)

	_, err = ParseRules([]byte("- pattern: x\n"))
	assert.Error(t, err, "rule without a name must fail at load")
}

func TestLoadEngine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o600))

	engine, err := LoadEngine(path)
	require.NoError(t, err)
	assert.Equal(t, 4, engine.Len())

	fields := engine.Run("Rechnung Nr. RE-77 Year: 2021", &Registries{Validators: BuiltinValidators()})
	assert.Equal(t, "RE-77", fields["invoice_number"])
	assert.Equal(t, "0.9", fields["invoice_number_confidence"])
	assert.Equal(t, "2021", fields["graduation_year"])
}

func TestLoadEngineMissingFile(t *testing.T) {
	_, err := LoadEngine(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
