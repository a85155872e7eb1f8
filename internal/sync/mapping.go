package sync

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Source-to-store field mapping helpers. The API encodes "unknown" as zero
// dates and empty strings; all of that becomes NULL on the way in.

// parseDate parses a YYYY-MM-DD field. Zero dates ("0000-01-01") and empty
// strings mean unknown and return nil.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000") {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// parseTimestamp parses the datetime format match records use.
func parseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000") {
		return nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// tierScore maps a Liquipedia tier label to a 0-100 score.
func tierScore(tier string) float64 {
	switch strings.TrimSpace(tier) {
	case "1":
		return 100
	case "2":
		return 75
	case "3":
		return 50
	case "4":
		return 25
	case "Qualifier":
		return 15
	default:
		// "Show Match", "Misc" and anything unlabeled.
		return 10
	}
}

// tournamentWeight blends tier and prize pool into a single ranking signal.
// The prize component is min-max normalized against the prize range observed
// in the same run, so the weight is only comparable within one game.
func tournamentWeight(tier string, prize, minPrize, maxPrize float64) float64 {
	prizeScore := 0.0
	if prize > 0 && maxPrize > minPrize {
		prizeScore = (prize - minPrize) / (maxPrize - minPrize) * 100
	}
	return 0.70*tierScore(tier) + 0.30*prizeScore
}

// parsePlacement converts a placement string to numeric bounds: "1" becomes
// (1,1), a shared placement "3-4" becomes (3,4).
func parsePlacement(s string) (lower, upper int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty placement")
	}
	lo, hi, found := strings.Cut(s, "-")
	lower, err = strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("placement %q: %w", s, err)
	}
	if !found {
		return lower, lower, nil
	}
	upper, err = strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("placement %q: %w", s, err)
	}
	if upper < lower {
		return 0, 0, fmt.Errorf("placement %q: inverted range", s)
	}
	return lower, upper, nil
}

// staffRoles are squad roles that mark non-playing personnel. Squad entries
// with one of these still refresh the person's player row but never produce
// a roster membership.
var staffRoles = map[string]bool{
	"coach":           true,
	"head coach":      true,
	"assistant coach": true,
	"manager":         true,
	"team manager":    true,
	"analyst":         true,
	"caster":          true,
	"streamer":        true,
	"content creator": true,
}

func isStaffRole(role string) bool {
	return staffRoles[strings.ToLower(strings.TrimSpace(role))]
}

// pageToName converts a wiki page name to a display name.
func pageToName(page string) string {
	return strings.TrimSpace(strings.ReplaceAll(page, "_", " "))
}
