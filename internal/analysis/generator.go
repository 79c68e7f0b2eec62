package analysis

import (
	"regexp"
	"strings"
)

// DefaultTargetID is substituted when a request names no target.
// TIC 307210830 is the mission's go-to demonstration star.
const DefaultTargetID = "307210830"

var (
	catalogIDPattern = regexp.MustCompile(`(?i)(?:TIC|KIC|EPIC|TOI)[\s-]*(\d+)`)
	bareIDPattern    = regexp.MustCompile(`\d{6,}`)
)

// responder pairs a match predicate with the handler that renders the
// reply. The table is evaluated in priority order; the first match wins.
type responder struct {
	match   func(msg string) bool
	respond func(original string) string
}

var responders = []responder{
	{
		match:   containsAny("transit", "search", "light curve", "lightcurve", "periodogram", "bls"),
		respond: transitSearchResponse,
	},
	{
		match:   containsAny("habitable", "goldilocks", "hz "),
		respond: habitableZoneResponse,
	},
	{
		match: func(msg string) bool {
			return catalogIDPattern.MatchString(msg)
		},
		respond: targetInfoResponse,
	},
	{
		match:   containsAny("report", "generate", "summary"),
		respond: reportResponse,
	},
}

// ------------------------------------------------------------------------------------------------------
// Generate maps a free-text message to a canned analysis reply. Pure and
// deterministic: the same message always yields the same text, so tests
// can compare output byte for byte.
func Generate(message string) string {
	lower := strings.ToLower(message)

	for _, r := range responders {
		if r.match(lower) {
			return r.respond(message)
		}
	}

	return helpResponse()
}

// ------------------------------------------------------------------------------------------------------
// ExtractTargetID pulls a numeric target identifier out of a message:
// digits following a recognized catalog prefix, else the first run of six
// or more digits, else the default demonstration target.
func ExtractTargetID(message string) string {
	if m := catalogIDPattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	if m := bareIDPattern.FindString(message); m != "" {
		return m
	}
	return DefaultTargetID
}

// ------------------------------------------------------------------------------------------------------
func containsAny(keywords ...string) func(string) bool {
	return func(msg string) bool {
		for _, kw := range keywords {
			if strings.Contains(msg, kw) {
				return true
			}
		}
		return false
	}
}
