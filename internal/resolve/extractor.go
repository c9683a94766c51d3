// Package resolve turns free-text command input into canonical event keys
// and watch parameters. All functions are pure: no I/O, no shared state.
package resolve

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/rewired-gh/oddswatch/internal/models"
)

var (
	keyAssignPattern = regexp.MustCompile(`(?i)\beventkey[:=]?\s*([A-Za-z0-9][\w-]*)`)
	bareKeyPattern   = regexp.MustCompile(`(?i)\bev_[\w-]+`)
	thresholdPattern = regexp.MustCompile(`(?:^|[\s:=])(\d+(?:\.\d+)?)\s*%`)
	upPattern        = regexp.MustCompile(`(?i)\b(up|rise|above)\b`)
	downPattern      = regexp.MustCompile(`(?i)\b(down|drop|below)\b`)
)

// ResolveKey maps free text to the canonical key of one candidate.
//
// An explicit identifier (an "eventKey<id>" token or a bare "ev_" token)
// always takes precedence over fuzzy team matching. It must match a
// candidate's event key or its lease identifier to count; an unmatched
// explicit token falls through to fuzzy matching. Fuzzy matching is
// first-match over candidates in input order, so callers must supply a
// stable ordering.
func ResolveKey(freeText string, candidates []models.Candidate) (string, bool) {
	for _, token := range explicitTokens(freeText) {
		for _, c := range candidates {
			if strings.EqualFold(token, c.EventKey) || strings.EqualFold(token, c.LeaseID) {
				return c.Key(), true
			}
		}
	}

	lowered := strings.ToLower(freeText)
	for _, c := range candidates {
		if teamMatches(lowered, c.HomeTeam) && teamMatches(lowered, c.AwayTeam) {
			return c.Key(), true
		}
	}
	return "", false
}

func explicitTokens(text string) []string {
	var tokens []string
	for _, m := range keyAssignPattern.FindAllStringSubmatch(text, -1) {
		tokens = append(tokens, m[1])
	}
	tokens = append(tokens, bareKeyPattern.FindAllString(text, -1)...)
	return tokens
}

// teamMatches reports whether any word of the team name longer than 3
// characters appears as a substring of the lowered free text.
func teamMatches(loweredText, teamName string) bool {
	words := strings.FieldsFunc(strings.ToLower(teamName), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if len(w) > 3 && strings.Contains(loweredText, w) {
			return true
		}
	}
	return false
}

// ParseThreshold extracts a "<number>%" threshold token in percentage
// points. A missing or malformed token returns ok=false; callers fall back
// to the default threshold rather than rejecting the request.
func ParseThreshold(text string) (float64, bool) {
	m := thresholdPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ParseDirection extracts a direction keyword. Up keywords win over Down
// when both appear; no keyword means Any.
func ParseDirection(text string) models.Direction {
	if upPattern.MatchString(text) {
		return models.DirectionUp
	}
	if downPattern.MatchString(text) {
		return models.DirectionDown
	}
	return models.DirectionAny
}
