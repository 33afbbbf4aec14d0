// Package rules executes ordered, declarative extraction rules over
// recognized document text. A rule is either a regex pattern with an
// optional capture group and validator list, or a reference to a named
// plugin function supplied by the host. Rules come from configuration and
// are compiled once at load time; execution is a deterministic single pass
// with no hidden state between runs.
package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is one declarative extraction instruction.
type Rule struct {
	Name        string   `yaml:"name" json:"name"`
	Pattern     string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Group       int      `yaml:"group,omitempty" json:"group,omitempty"`
	OutputField string   `yaml:"output_field,omitempty" json:"output_field,omitempty"`
	Confidence  *float64 `yaml:"confidence,omitempty" json:"confidence,omitempty"`
	Flags       string   `yaml:"flags,omitempty" json:"flags,omitempty"`
	Plugin      string   `yaml:"plugin,omitempty" json:"plugin,omitempty"`
	Validators  []string `yaml:"validators,omitempty" json:"validators,omitempty"`
}

// Field returns the output field the rule writes to.
func (r Rule) Field() string {
	if r.OutputField != "" {
		return r.OutputField
	}
	return r.Name
}

// Flag bits produced by ParseFlags.
const (
	FlagIgnoreCase = 1 << iota
	FlagMultiline
	FlagDotAll
	FlagVerbose
	FlagASCII
)

// ParseFlags maps a compact letter code to a flag bitmask. Unknown letters
// are ignored. The mapping is pure and independent of the regex engine.
func ParseFlags(code string) int {
	flags := 0
	for _, c := range code {
		switch c {
		case 'I', 'i':
			flags |= FlagIgnoreCase
		case 'M', 'm':
			flags |= FlagMultiline
		case 'S', 's':
			flags |= FlagDotAll
		case 'X', 'x':
			flags |= FlagVerbose
		case 'A', 'a':
			flags |= FlagASCII
		}
	}
	return flags
}

// compile builds the rule's regexp, translating the flag bitmask into RE2
// inline flags. Verbose and ASCII have no RE2 equivalent and are accepted
// as no-ops. RE2's linear-time guarantee bounds evaluation cost even for
// untrusted patterns.
func (r Rule) compile() (*regexp.Regexp, error) {
	if r.Pattern == "" {
		return nil, nil
	}
	var inline strings.Builder
	flags := ParseFlags(r.Flags)
	if flags&FlagIgnoreCase != 0 {
		inline.WriteByte('i')
	}
	if flags&FlagMultiline != 0 {
		inline.WriteByte('m')
	}
	if flags&FlagDotAll != 0 {
		inline.WriteByte('s')
	}
	pattern := r.Pattern
	if inline.Len() > 0 {
		pattern = "(?" + inline.String() + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("rule %q: invalid pattern: %w", r.Name, err)
	}
	return re, nil
}

// Validate checks the rule for load-time errors.
func (r Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule has no name")
	}
	if r.Pattern == "" && r.Plugin == "" {
		return fmt.Errorf("rule %q has neither pattern nor plugin", r.Name)
	}
	if r.Group < 0 {
		return fmt.Errorf("rule %q: capture group must not be negative", r.Name)
	}
	return nil
}
