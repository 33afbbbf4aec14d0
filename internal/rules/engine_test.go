package rules

import (
	"reflect"
	"strings"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func mustEngine(t *testing.T, ruleList []Rule) *Engine {
	t.Helper()
	e, err := New(ruleList)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestRunPatternRule(t *testing.T) {
	e := mustEngine(t, []Rule{
		{Name: "invoice_number", Pattern: `Invoice\s+No[.:]?\s*([A-Z0-9-]+)`, Group: 1},
	})

	fields := e.Run("Invoice No: RE-2024-0042 from ACME", nil)
	if fields["invoice_number"] != "RE-2024-0042" {
		t.Errorf("invoice_number = %q", fields["invoice_number"])
	}
}

func TestRunOutputFieldAndConfidence(t *testing.T) {
	e := mustEngine(t, []Rule{
		{
			Name:        "customer_line",
			Pattern:     `Customer:\s*(\w+)`,
			Group:       1,
			OutputField: "customer_name",
			Confidence:  floatPtr(0.8),
		},
	})

	fields := e.Run("Customer: ACME", nil)
	if fields["customer_name"] != "ACME" {
		t.Errorf("customer_name = %q", fields["customer_name"])
	}
	if fields["customer_name_confidence"] != "0.8" {
		t.Errorf("confidence = %q", fields["customer_name_confidence"])
	}
}

func TestRunIgnoreCaseFlag(t *testing.T) {
	e := mustEngine(t, []Rule{
		{Name: "degree", Pattern: `bachelor of science`, Flags: "I"},
	})
	fields := e.Run("BACHELOR OF SCIENCE", nil)
	if fields["degree"] != "BACHELOR OF SCIENCE" {
		t.Errorf("degree = %q", fields["degree"])
	}
}

func TestRunMultilineFlag(t *testing.T) {
	e := mustEngine(t, []Rule{
		{Name: "heading", Pattern: `^Urkunde$`, Flags: "M"},
	})
	fields := e.Run("Universität\nUrkunde\nBachelor", nil)
	if fields["heading"] != "Urkunde" {
		t.Errorf("heading = %q", fields["heading"])
	}
}

func TestRunNoMatchContributesNothing(t *testing.T) {
	e := mustEngine(t, []Rule{
		{Name: "missing", Pattern: `zzz-never-there`},
	})
	fields := e.Run("some document text", nil)
	if len(fields) != 0 {
		t.Errorf("fields = %v, want empty", fields)
	}
}

func TestRunUnmatchedCaptureGroupDegrades(t *testing.T) {
	e := mustEngine(t, []Rule{
		// Group 2 exists but can never match.
		{Name: "opt", Pattern: `a(b)(x)?`, Group: 2},
		// Group 5 does not exist at all.
		{Name: "oob", Pattern: `a(b)`, Group: 5},
	})
	fields, trace := e.RunDebug("ab", nil)
	if len(fields) != 0 {
		t.Errorf("fields = %v, want empty", fields)
	}
	for _, entry := range trace {
		if entry.Accepted {
			t.Errorf("rule %s should not be accepted", entry.Rule)
		}
		if !strings.Contains(entry.Reason, "capture group") {
			t.Errorf("rule %s reason = %q", entry.Rule, entry.Reason)
		}
	}
}

func TestRunValidators(t *testing.T) {
	reg := &Registries{Validators: BuiltinValidators()}
	e := mustEngine(t, []Rule{
		{Name: "graduation_year", Pattern: `Year:\s*(\S+)`, Group: 1, Validators: []string{"year"}},
	})

	if fields := e.Run("Year: 2019", reg); fields["graduation_year"] != "2019" {
		t.Errorf("valid year rejected: %v", fields)
	}
	if fields := e.Run("Year: 20x9", reg); len(fields) != 0 {
		t.Errorf("invalid year accepted: %v", fields)
	}
}

func TestRunUnknownValidatorRejects(t *testing.T) {
	reg := &Registries{Validators: BuiltinValidators()}
	e := mustEngine(t, []Rule{
		{Name: "v", Pattern: `(\d+)`, Group: 1, Validators: []string{"no_such_validator"}},
	})
	fields, trace := e.RunDebug("42", reg)
	if len(fields) != 0 {
		t.Errorf("fields = %v, want empty", fields)
	}
	if len(trace) != 1 || trace[0].Accepted {
		t.Fatalf("trace = %+v", trace)
	}
	if !strings.Contains(trace[0].Reason, "unknown validator") {
		t.Errorf("reason = %q", trace[0].Reason)
	}
}

func TestRunPluginMerge(t *testing.T) {
	reg := &Registries{
		Plugins: map[string]PluginFunc{
			"statics": func(text string, fields map[string]string) map[string]string {
				return map[string]string{"a": "plugin", "b": "2"}
			},
		},
	}
	e := mustEngine(t, []Rule{
		{Name: "before", Pattern: `x`, OutputField: "a"},
		{Name: "run_statics", Plugin: "statics"},
	})

	fields := e.Run("x", reg)
	// Plugin runs after the pattern rule: last write wins.
	if fields["a"] != "plugin" || fields["b"] != "2" {
		t.Errorf("fields = %v", fields)
	}
}

func TestRunPluginSeesAccumulator(t *testing.T) {
	var seen map[string]string
	reg := &Registries{
		Plugins: map[string]PluginFunc{
			"spy": func(text string, fields map[string]string) map[string]string {
				seen = fields
				return nil
			},
		},
	}
	e := mustEngine(t, []Rule{
		{Name: "first", Pattern: `hello`},
		{Name: "spy_rule", Plugin: "spy"},
	})
	e.Run("hello", reg)
	if seen["first"] != "hello" {
		t.Errorf("plugin accumulator = %v", seen)
	}
}

func TestRunUnknownPluginIsSilentlySkipped(t *testing.T) {
	e := mustEngine(t, []Rule{
		{Name: "ghost", Plugin: "not_registered"},
		{Name: "real", Pattern: `(\d+)`, Group: 1},
	})

	fields := e.Run("value 123", &Registries{})
	if len(fields) != 1 || fields["real"] != "123" {
		t.Errorf("fields = %v", fields)
	}
}

func TestRunIdempotent(t *testing.T) {
	reg := &Registries{Validators: BuiltinValidators()}
	e := mustEngine(t, []Rule{
		{Name: "invoice_number", Pattern: `RE-\d+`},
		{Name: "amount", Pattern: `(\d+,\d{2})`, Group: 1, Validators: []string{"amount"}},
	})
	text := "Rechnung RE-991 Betrag 1.024,50 EUR RE-992"

	first := e.Run(text, reg)
	second := e.Run(text, reg)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("runs differ: %v vs %v", first, second)
	}
}

func TestRunFirstMatchWins(t *testing.T) {
	e := mustEngine(t, []Rule{
		{Name: "number", Pattern: `\d+`},
	})
	fields := e.Run("first 11 then 22", nil)
	if fields["number"] != "11" {
		t.Errorf("number = %q, want first match", fields["number"])
	}
}

func TestRunDebugTraceCoversEveryRule(t *testing.T) {
	reg := &Registries{
		Validators: BuiltinValidators(),
		Plugins: map[string]PluginFunc{
			"noop": func(string, map[string]string) map[string]string { return nil },
		},
	}
	e := mustEngine(t, []Rule{
		{Name: "hit", Pattern: `ab(c)`, Group: 1},
		{Name: "miss", Pattern: `zzz`},
		{Name: "plugged", Plugin: "noop"},
		{Name: "rejected", Pattern: `(abc)`, Group: 1, Validators: []string{"integer"}},
	})

	fields, trace := e.RunDebug("abc", reg)
	if len(trace) != e.Len() {
		t.Fatalf("trace has %d entries, want %d", len(trace), e.Len())
	}

	byRule := map[string]DebugEntry{}
	for _, entry := range trace {
		byRule[entry.Rule] = entry
	}
	if !byRule["hit"].Accepted || byRule["hit"].Value != "c" {
		t.Errorf("hit entry = %+v", byRule["hit"])
	}
	if byRule["hit"].Span != [2]int{2, 3} {
		t.Errorf("hit span = %v", byRule["hit"].Span)
	}
	if byRule["miss"].Accepted {
		t.Error("miss entry accepted")
	}
	if !byRule["plugged"].Accepted {
		t.Error("plugin entry not accepted")
	}
	rejected := byRule["rejected"]
	if rejected.Accepted || rejected.Value != "abc" {
		t.Errorf("rejected entry = %+v", rejected)
	}
	if _, ok := fields["rejected"]; ok {
		t.Error("rejected value must not reach the field map")
	}
}

func TestNewFailsFast(t *testing.T) {
	cases := []struct {
		name  string
		rules []Rule
	}{
		{"invalid pattern", []Rule{{Name: "bad", Pattern: `([`}}},
		{"no name", []Rule{{Pattern: `x`}}},
		{"neither pattern nor plugin", []Rule{{Name: "empty"}}},
		{"negative group", []Rule{{Name: "neg", Pattern: `x`, Group: -1}}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.rules); err == nil {
				t.Error("expected load-time error")
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"", 0},
		{"I", FlagIgnoreCase},
		{"IM", FlagIgnoreCase | FlagMultiline},
		{"SXA", FlagDotAll | FlagVerbose | FlagASCII},
		{"imsxa", FlagIgnoreCase | FlagMultiline | FlagDotAll | FlagVerbose | FlagASCII},
		{"Z?", 0},
	}
	for _, tt := range tests {
		if got := ParseFlags(tt.code); got != tt.want {
			t.Errorf("ParseFlags(%q) = %#x, want %#x", tt.code, got, tt.want)
		}
	}
}
