package rules

import (
	"regexp"
	"strconv"
)

// ValidatorFunc decides whether an extracted value is acceptable. It may
// consult fields extracted so far but must not mutate them.
type ValidatorFunc func(value string, fields map[string]string) bool

// PluginFunc performs host-defined extraction over the full text. It
// receives the accumulator built so far and returns fields to merge.
type PluginFunc func(text string, fields map[string]string) map[string]string

// Registries holds the named validator and plugin functions available to
// rules. The host constructs it once at startup and passes it into Run;
// the engine keeps no global registries.
type Registries struct {
	Validators map[string]ValidatorFunc
	Plugins    map[string]PluginFunc
}

// DebugEntry records the evaluation of one rule when tracing is enabled.
type DebugEntry struct {
	Rule       string   `json:"rule"`
	Field      string   `json:"field,omitempty"`
	Value      string   `json:"value,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Span       [2]int   `json:"span"`
	Accepted   bool     `json:"accepted"`
	Reason     string   `json:"reason,omitempty"`
}

// Engine is an ordered rule list with pre-compiled patterns. Construct it
// once per rule document and share it freely: Run holds all per-document
// state on its own stack.
type Engine struct {
	rules    []Rule
	compiled []*regexp.Regexp
}

// New compiles the rule list. Malformed rules and invalid patterns are
// load-time failures; nothing is deferred to document processing.
func New(ruleList []Rule) (*Engine, error) {
	e := &Engine{
		rules:    make([]Rule, len(ruleList)),
		compiled: make([]*regexp.Regexp, len(ruleList)),
	}
	copy(e.rules, ruleList)
	for i, r := range e.rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		re, err := r.compile()
		if err != nil {
			return nil, err
		}
		e.compiled[i] = re
	}
	return e, nil
}

// Len returns the number of rules.
func (e *Engine) Len() int { return len(e.rules) }

// Run executes all rules over text in order and returns the extracted
// field map. Rules that do not match contribute nothing; they never fail
// the run.
func (e *Engine) Run(text string, reg *Registries) map[string]string {
	fields, _ := e.run(text, reg, false)
	return fields
}

// RunDebug is Run with a trace entry for every rule evaluated.
func (e *Engine) RunDebug(text string, reg *Registries) (map[string]string, []DebugEntry) {
	return e.run(text, reg, true)
}

func (e *Engine) run(text string, reg *Registries, debug bool) (map[string]string, []DebugEntry) {
	if reg == nil {
		reg = &Registries{}
	}
	fields := make(map[string]string)
	var trace []DebugEntry

	for i, rule := range e.rules {
		entry := e.evalRule(rule, e.compiled[i], text, fields, reg)
		if debug {
			trace = append(trace, entry)
		}
	}
	return fields, trace
}

// evalRule evaluates one rule against text, mutating fields on acceptance,
// and returns the trace entry describing what happened.
func (e *Engine) evalRule(rule Rule, re *regexp.Regexp, text string, fields map[string]string, reg *Registries) DebugEntry {
	entry := DebugEntry{Rule: rule.Name, Field: rule.Field(), Confidence: rule.Confidence}

	if rule.Plugin != "" {
		plugin, ok := reg.Plugins[rule.Plugin]
		if !ok {
			// Configuration error: skip the rule, keep processing.
			entry.Reason = "unknown plugin " + rule.Plugin
			return entry
		}
		// Last-write-wins on key collision.
		for k, v := range plugin(text, fields) {
			fields[k] = v
		}
		entry.Accepted = true
		return entry
	}

	if re == nil {
		entry.Reason = "empty pattern"
		return entry
	}

	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		entry.Reason = "no match"
		return entry
	}

	group := rule.Group
	if 2*group+1 >= len(loc) || loc[2*group] < 0 {
		// Nonexistent or unmatched capture group: degrade, never abort.
		entry.Reason = "capture group " + strconv.Itoa(group) + " not matched"
		return entry
	}
	start, end := loc[2*group], loc[2*group+1]
	value := text[start:end]
	entry.Value = value
	entry.Span = [2]int{start, end}

	for _, name := range rule.Validators {
		validator, ok := reg.Validators[name]
		if !ok {
			entry.Reason = "unknown validator " + name
			return entry
		}
		if !validator(value, fields) {
			entry.Reason = "rejected by validator " + name
			return entry
		}
	}

	fields[rule.Field()] = value
	if rule.Confidence != nil {
		fields[rule.Field()+"_confidence"] = strconv.FormatFloat(*rule.Confidence, 'g', -1, 64)
	}
	entry.Accepted = true
	return entry
}
