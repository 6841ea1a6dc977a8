package noise

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Rule decides whether a trimmed line is noise
type Rule interface {
	Name() string
	Match(line string) bool
}

// RegexpRule is a Rule backed by a compiled regular expression
type RegexpRule struct {
	name string
	re   *regexp.Regexp
}

// NewRegexpRule compiles pattern case-insensitively
func NewRegexpRule(name, pattern string) (*RegexpRule, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("compile noise rule %q: %w", name, err)
	}
	return &RegexpRule{name: name, re: re}, nil
}

func mustRegexpRule(name, pattern string) *RegexpRule {
	r, err := NewRegexpRule(name, pattern)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the rule name
func (r *RegexpRule) Name() string { return r.name }

// Match reports whether the line matches the expression
func (r *RegexpRule) Match(line string) bool { return r.re.MatchString(line) }

// BlankRule matches lines made only of whitespace
type BlankRule struct{}

// Name returns the rule name
func (BlankRule) Name() string { return "blank" }

// Match reports whether the line is empty after trimming
func (BlankRule) Match(line string) bool { return strings.TrimSpace(line) == "" }

// TimestampRule matches bare H:MM and H:MM:SS timestamps
func TimestampRule() Rule {
	return mustRegexpRule("timestamp", `^\s*\d{1,2}:\d{2}(?::\d{2})?\s*$`)
}

// SpeakerRule matches speaker labels such as "Client:" or a bare "Merci."
func SpeakerRule(labels []string) (Rule, error) {
	alt := alternation(labels)
	if alt == "" {
		return nil, nil
	}
	return NewRegexpRule("speaker", `^\s*(?:`+alt+`)\s*(?::|[.!]?\s*$)`)
}

// FooterRule matches page numbers and footer markers occupying a whole line
func FooterRule(markers []string) (Rule, error) {
	pattern := `Page\s+\d+(?:\s*/\s*\d+)?`
	if alt := alternation(markers); alt != "" {
		pattern += "|" + alt
	}
	return NewRegexpRule("footer", `^\s*(?:`+pattern+`)\s*$`)
}

// alternation builds a regexp alternation of literal labels, longest first.
// Straight and typographic apostrophes are interchangeable.
func alternation(labels []string) string {
	cleaned := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			cleaned = append(cleaned, l)
		}
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return len(cleaned[i]) > len(cleaned[j])
	})

	parts := make([]string, 0, len(cleaned))
	for _, l := range cleaned {
		quoted := regexp.QuoteMeta(l)
		quoted = strings.NewReplacer("'", "['’]", "’", "['’]").Replace(quoted)
		quoted = strings.ReplaceAll(quoted, " ", `\s+`)
		parts = append(parts, quoted)
	}
	return strings.Join(parts, "|")
}
