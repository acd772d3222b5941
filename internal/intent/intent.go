// Package intent classifies short transcribed utterances with ordered
// regular-expression rules. Rules are tried in order and the first one that
// matches wins; there is no scoring.
package intent

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNoRecognizedIntent means no rule in the active set matched.
	ErrNoRecognizedIntent = errors.New("no recognized intent")
	// ErrInvalidDestination means a navigation phrase matched but left
	// nothing to navigate to.
	ErrInvalidDestination = errors.New("invalid destination")
)

// Kind names the purpose of an utterance.
type Kind string

const (
	KindNone           Kind = ""
	KindNavigation     Kind = "navigation"
	KindExplicitTime   Kind = "explicit_time"
	KindNegativeTime   Kind = "negative_time"
	KindAffirmative    Kind = "affirmative"
	KindNegative       Kind = "negative"
	KindAvoidHighways  Kind = "avoid_highways"
	KindPlanDay        Kind = "plan_day"
	KindFindRestaurant Kind = "find_restaurant"
	KindExplore        Kind = "explore"
)

// Rule is one pattern alternative. Accept, when set, can reject a
// structurally matching capture so a half-valid token never counts as a match.
type Rule struct {
	Kind    Kind
	Pattern *regexp.Regexp
	Accept  func(groups []string) bool
}

// RuleSet is an ordered list of alternatives valid in one dialogue context.
type RuleSet struct {
	Name  string
	Rules []Rule
}

// Result is either a no-match or a match carrying the captured groups
// (excluding the whole-match group) in pattern order.
type Result struct {
	Matched bool
	Kind    Kind
	Groups  []string
}

// Group returns the i-th captured group, or "" when absent.
func (r Result) Group(i int) string {
	if i < 0 || i >= len(r.Groups) {
		return ""
	}
	return r.Groups[i]
}

var spaces = regexp.MustCompile(`\s+`)

// Normalize lower-cases the utterance, collapses whitespace and drops
// trailing sentence punctuation that recognizers tend to append.
func Normalize(utterance string) string {
	s := strings.ToLower(utterance)
	s = strings.ReplaceAll(s, "\u2019", "'")
	s = spaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return strings.TrimRight(s, ".!?")
}

// Classify normalizes the utterance and returns the first matching rule.
func Classify(utterance string, rules RuleSet) Result {
	return rules.match(Normalize(utterance))
}

// Classify is a method form of the package-level Classify.
func (rs RuleSet) Classify(utterance string) Result {
	return Classify(utterance, rs)
}

func (rs RuleSet) match(normalized string) Result {
	for _, rule := range rs.Rules {
		if groups, ok := rule.find(normalized); ok {
			return Result{Matched: true, Kind: rule.Kind, Groups: groups}
		}
	}
	return Result{}
}

// find returns the groups of the leftmost match Accept agrees with. Without
// Accept only the leftmost match is considered.
func (r Rule) find(normalized string) ([]string, bool) {
	if r.Accept == nil {
		m := r.Pattern.FindStringSubmatch(normalized)
		if m == nil {
			return nil, false
		}
		return trimGroups(m), true
	}
	for _, m := range r.Pattern.FindAllStringSubmatch(normalized, -1) {
		if groups := trimGroups(m); r.Accept(groups) {
			return groups, true
		}
	}
	return nil, false
}

func trimGroups(m []string) []string {
	groups := make([]string, 0, len(m)-1)
	for _, g := range m[1:] {
		groups = append(groups, strings.TrimSpace(g))
	}
	return groups
}

// Join concatenates rule sets, preserving order.
func Join(name string, sets ...RuleSet) RuleSet {
	out := RuleSet{Name: name}
	for _, s := range sets {
		out.Rules = append(out.Rules, s.Rules...)
	}
	return out
}

func pattern(kind Kind, expr string) Rule {
	return Rule{Kind: kind, Pattern: regexp.MustCompile(expr)}
}

// Template compiles a phrase such as "take me to {destination}" into a rule.
// Literal words match with flexible whitespace; each {slot} captures the
// rest of the phrase up to the next literal word, or to the end of input.
// The phrase may start anywhere in the utterance.
func Template(kind Kind, phrase string) Rule {
	return Rule{Kind: kind, Pattern: compileTemplate(phrase)}
}

var slotToken = regexp.MustCompile(`^\{[a-z_]+\}$`)

func compileTemplate(phrase string) *regexp.Regexp {
	words := strings.Fields(strings.ToLower(phrase))
	var b strings.Builder
	b.WriteString(`\b`)
	for i, w := range words {
		last := i == len(words)-1
		switch {
		case slotToken.MatchString(w) && last:
			b.WriteString(`(?:\s+(.*))?$`)
		case slotToken.MatchString(w):
			b.WriteString(`\s+(.*?)`)
		default:
			if i > 0 {
				b.WriteString(`\s+`)
			}
			b.WriteString(regexp.QuoteMeta(w))
			if last {
				b.WriteString(`\b`)
			}
		}
	}
	return regexp.MustCompile(b.String())
}
