package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Navigation captures the destination after a trigger phrase.
var Navigation = RuleSet{
	Name: "navigation",
	Rules: []Rule{
		Template(KindNavigation, "how do i get to {destination}"),
		Template(KindNavigation, "navigate to {destination}"),
		Template(KindNavigation, "take me to {destination}"),
		Template(KindNavigation, "drive to {destination}"),
		Template(KindNavigation, "directions to {destination}"),
	},
}

// ArrivalTime checks the "no particular time" answers before clock times so
// a stray digit never wins over an explicit refusal.
var ArrivalTime = RuleSet{
	Name: "arrival_time",
	Rules: []Rule{
		pattern(KindNegativeTime, `^(?:no|nope|nah)$`),
		pattern(KindNegativeTime, `\bno (?:specific |particular |set )?time\b`),
		pattern(KindNegativeTime, `\bdoesn'?t matter\b`),
		pattern(KindNegativeTime, `\bany ?time\b`),
		pattern(KindNegativeTime, `\bwhenever\b`),
		{
			Kind:    KindExplicitTime,
			Pattern: regexp.MustCompile(`(?:^|[^\w:])(\d{1,2}(?::\d{2})?(?:\s?[ap]\.?m\.?)?)(?:$|[\s,!?]|\.\s)`),
			Accept:  func(g []string) bool { return len(g) > 0 && ValidTimeToken(g[0]) },
		},
	},
}

// WellLit answers "would you prefer a well-lit route". Refusals go first.
var WellLit = RuleSet{
	Name: "well_lit",
	Rules: []Rule{
		pattern(KindNegative, `^(?:no|nope|nah)(?:,? thanks?| thank you)?$`),
		pattern(KindNegative, `^(?:no|nope|nah)(?:,|\s+(?:i|i'd|i'll|i'm|it'?s|that'?s|just|any|the)\b)`),
		pattern(KindNegative, `\bnot (?:really|necessary|needed)\b`),
		pattern(KindNegative, `\bdoesn'?t matter\b`),
		pattern(KindNegative, `\bdon'?t (?:care|mind|need)\b`),
		pattern(KindNegative, `\bany route\b`),
		pattern(KindAffirmative, `\b(?:yes|sure|yeah)\b.*\b(?:well[- ]lit|visibility)\b`),
		pattern(KindAffirmative, `\bprefer well[- ]lit roads?\b`),
		pattern(KindAffirmative, `\bprefer\b`),
		pattern(KindAffirmative, `^(?:yes|yeah|yep|sure)(?:,? please)?$`),
	},
}

// Breaks answers "would you like me to plan any breaks".
var Breaks = RuleSet{
	Name: "breaks",
	Rules: []Rule{
		pattern(KindNegative, `\bno breaks?\b`),
		pattern(KindNegative, `\b(?:don'?t|do not|no need to) (?:need|want|plan|include|add)\b.*\bbreaks?\b`),
		pattern(KindNegative, `^(?:no|nope|nah)(?:,? thanks?| thank you)?$`),
		pattern(KindAffirmative, `\b(?:yes|sure|yeah)\b.*\bbreaks?\b`),
		pattern(KindAffirmative, `\b(?:plan|include|add)\b.*\bbreaks?\b`),
		pattern(KindAffirmative, `^(?:yes|yeah|yep|sure|please|yes please)$`),
	},
}

// Confirmation accepts the final "start navigation" go-ahead. Refusals are
// matched first and have no transition, so they re-prompt.
var Confirmation = RuleSet{
	Name: "confirmation",
	Rules: []Rule{
		pattern(KindNegative, `^(?:no|nope|nah|not yet|wait|hold on|stop)\b`),
		pattern(KindNegative, `\bnot (?:yet|ready|now)\b`),
		pattern(KindNegative, `\b(?:don'?t|do not|can'?t|cannot)\b.*\b(?:start|go|begin)\b`),
		pattern(KindAffirmative, `^(?:yes|yeah|yep|sure|ok|okay)\b`),
		pattern(KindAffirmative, `\b(?:start|go ahead|let'?s go|begin)\b`),
		pattern(KindAffirmative, `\bokay\b`),
	},
}

// AvoidHighways is a route modifier accepted during trip planning.
var AvoidHighways = RuleSet{
	Name: "avoid_highways",
	Rules: []Rule{
		pattern(KindAvoidHighways, `\b(?:avoid|no|skip)(?: the)? highways?\b`),
		pattern(KindAvoidHighways, `\b(?:local|side|smaller) roads?\b`),
	},
}

// Commands are the place questions answered outside trip planning.
var Commands = RuleSet{
	Name: "commands",
	Rules: []Rule{
		pattern(KindPlanDay, `\bplan my\b.*\b(?:weekend|saturday|sunday|day|today)\b`),
		pattern(KindFindRestaurant, `\bfind\b.*(?:lunch|dinner|place|eat)`),
		pattern(KindExplore, `\bhours?\b.*\bexplore|\bexplore\b.*\bhours?\b`),
	},
}

// DefaultExploreHours is used when an exploration request names no number.
const DefaultExploreHours = 3

var digits = regexp.MustCompile(`\d+`)

// ExploreHours returns the first run of digits in the utterance, or
// DefaultExploreHours when there is none.
func ExploreHours(utterance string) int {
	m := digits.FindString(utterance)
	if m == "" {
		return DefaultExploreHours
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return DefaultExploreHours
	}
	return n
}

// Destination extracts the navigation target from a navigation match.
func Destination(r Result) (string, error) {
	if !r.Matched || r.Kind != KindNavigation {
		return "", ErrNoRecognizedIntent
	}
	dest := strings.TrimSpace(r.Group(0))
	if dest == "" {
		return "", ErrInvalidDestination
	}
	return dest, nil
}

// ValidTimeToken reports whether tok is a clock time: an hour with optional
// minutes and an optional am/pm marker. Twelve-hour tokens need 1-12,
// bare tokens accept 0-23.
func ValidTimeToken(tok string) bool {
	s := strings.ReplaceAll(strings.ToLower(tok), ".", "")
	s = strings.ReplaceAll(s, " ", "")

	meridiem := false
	if strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm") {
		meridiem = true
		s = s[:len(s)-2]
	}

	hourPart, minutePart, hasMinutes := strings.Cut(s, ":")
	if len(hourPart) == 0 || len(hourPart) > 2 {
		return false
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return false
	}
	if hasMinutes {
		if len(minutePart) != 2 {
			return false
		}
		minute, err := strconv.Atoi(minutePart)
		if err != nil || minute < 0 || minute > 59 {
			return false
		}
	}
	if meridiem {
		return hour >= 1 && hour <= 12
	}
	return hour >= 0 && hour <= 23
}
