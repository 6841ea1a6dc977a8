// Package noise strips conversational and boilerplate lines from raw workshop notes.
package noise

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/notechunk/internal/model"
)

// DefaultMinLineChars is the shortest line kept by the filter
const DefaultMinLineChars = 4

// Filter removes noise lines. Rules are evaluated in order; the first match wins.
type Filter struct {
	rules    []Rule
	minChars int
}

// NewFilter builds a filter from explicit rules
func NewFilter(minChars int, rules ...Rule) *Filter {
	if minChars <= 0 {
		minChars = DefaultMinLineChars
	}
	return &Filter{rules: rules, minChars: minChars}
}

// FromConfig builds the standard rule set: blank, timestamp, footer, speaker, then
// any extra patterns from configuration.
func FromConfig(cfg model.NoiseConfig, minChars int) (*Filter, error) {
	rules := []Rule{BlankRule{}, TimestampRule()}

	footer, err := FooterRule(cfg.FooterMarkers)
	if err != nil {
		return nil, err
	}
	rules = append(rules, footer)

	speaker, err := SpeakerRule(cfg.SpeakerLabels)
	if err != nil {
		return nil, err
	}
	if speaker != nil {
		rules = append(rules, speaker)
	}

	for i, pattern := range cfg.ExtraPatterns {
		r, err := NewRegexpRule(fmt.Sprintf("extra-%d", i), pattern)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}

	return NewFilter(minChars, rules...), nil
}

// Default returns the filter built from the default configuration
func Default() *Filter {
	cfg := model.DefaultConfig()
	f, err := FromConfig(cfg.Noise, cfg.Chunking.MinLineChars)
	if err != nil {
		panic(err)
	}
	return f
}

// Filter splits text into lines, trims each, and keeps the ones that are not noise.
// The output preserves input order and may be empty.
func (f *Filter) Filter(rawText string) []string {
	var lines []string
	for _, line := range strings.Split(rawText, "\n") {
		if kept, ok := f.Keep(line); ok {
			lines = append(lines, kept)
		}
	}
	return lines
}

// FilterLines applies the filter to already split lines
func (f *Filter) FilterLines(in []string) []string {
	var lines []string
	for _, line := range in {
		if kept, ok := f.Keep(line); ok {
			lines = append(lines, kept)
		}
	}
	return lines
}

// Keep returns the trimmed line and true when the line survives filtering
func (f *Filter) Keep(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}
	if _, noisy := f.Match(trimmed); noisy {
		return "", false
	}
	if utf8.RuneCountInString(trimmed) < f.minChars {
		return "", false
	}
	return trimmed, true
}

// Match returns the name of the first rule matching line
func (f *Filter) Match(line string) (string, bool) {
	for _, r := range f.rules {
		if r.Match(line) {
			return r.Name(), true
		}
	}
	return "", false
}
