// Package riders suggests likely duplicate rider records during
// registration. Suggestions are advisory; nothing is ever auto-merged.
package riders

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// nicknameCanonical maps common name variants to a canonical form so that
// "Bob Smith" and "Robert Smith" score as the same person.
var nicknameCanonical = map[string]string{
	"bob": "robert", "rob": "robert", "robbie": "robert", "bobby": "robert",
	"dave": "david", "davey": "david",
	"tim": "timothy", "timmy": "timothy",
	"mike": "michael", "mick": "michael", "mikey": "michael",
	"bill": "william", "will": "william", "billy": "william", "willy": "william",
	"liz": "elizabeth", "beth": "elizabeth", "lizzie": "elizabeth", "betsy": "elizabeth",
	"jim": "james", "jimmy": "james", "jamie": "james",
	"kate": "katherine", "katie": "katherine", "kathy": "katherine", "kat": "katherine",
	"tom": "thomas", "tommy": "thomas",
	"dick": "richard", "rick": "richard", "rich": "richard", "richie": "richard",
	"ted": "edward", "ed": "edward", "eddie": "edward",
	"tony":  "anthony",
	"chris": "christopher",
	"dan":   "daniel", "danny": "daniel",
	"steve": "steven", "stevie": "steven",
	"andy": "andrew", "drew": "andrew",
	"sue": "susan", "susie": "susan",
	"peggy": "margaret", "meg": "margaret", "maggie": "margaret",
	"nick": "nicholas",
	"joe":  "joseph", "joey": "joseph",
	"sam": "samuel", "sammy": "samuel",
	"ben": "benjamin", "benny": "benjamin",
	"alex": "alexander",
	"pat":  "patrick", "paddy": "patrick",
	"greg": "gregory",
	"jen":  "jennifer", "jenny": "jennifer",
	"becky": "rebecca",
	"vicky": "victoria",
	"jack":  "john", "johnny": "john",
}

// normalizeName casefolds and strips the punctuation riders spell
// inconsistently ("O'Callahan" vs "Ocallahan", "Smith-Jones" vs "SmithJones").
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case '\'', '-', '.', ' ':
			return -1
		}
		return r
	}, s)
}

// canonicalName resolves a normalized name through the nickname table.
func canonicalName(s string) string {
	if c, ok := nicknameCanonical[s]; ok {
		return c
	}
	return s
}

// componentScore rates one name component against another in [0, 1].
func componentScore(a, b string) float64 {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" && nb == "" {
		return 1
	}
	if na == nb {
		return 1
	}
	if canonicalName(na) == canonicalName(nb) {
		return 1
	}
	dist := levenshtein.ComputeDistance(na, nb)
	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(dist)/float64(maxLen)
}

// FuzzyNameScore rates how likely two full names refer to the same rider.
// Swapped first/last order is recognized at a small penalty, so
// "Smith, Robert" entered backwards still surfaces.
func FuzzyNameScore(firstA, lastA, firstB, lastB string) float64 {
	direct := (componentScore(firstA, firstB) + componentScore(lastA, lastB)) / 2
	swapped := 0.9 * (componentScore(firstA, lastB) + componentScore(lastA, firstB)) / 2
	if swapped > direct {
		return swapped
	}
	return direct
}

// Candidate is one existing rider considered for a match.
type Candidate struct {
	ID        string
	FirstName string
	LastName  string
}

// Match is a candidate that scored at or above the threshold.
type Match struct {
	Candidate Candidate
	Score     float64
}

// FindFuzzyNameMatches scores every candidate against the given name and
// returns the matches at or above threshold, best first, capped at
// maxResults (unlimited when maxResults <= 0).
func FindFuzzyNameMatches(first, last string, candidates []Candidate, threshold float64, maxResults int) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		score := FuzzyNameScore(first, last, c.FirstName, c.LastName)
		if score >= threshold {
			matches = append(matches, Match{Candidate: c, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}
