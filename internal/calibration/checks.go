package calibration

import (
	"fmt"
	"regexp"
	"strings"
)

// EvaluateCheck scores one check against output. A regex compile failure
// is not fatal to the run: it is reported as a failed check whose
// message mentions "regular expression" so the cause is visible in the
// prompt's trace.
func EvaluateCheck(c Check, output string) (passed bool, diagnostic string) {
	switch c.Type {
	case CheckExact:
		return output == c.Expected, ""
	case CheckContains:
		return strings.Contains(output, c.Expected), ""
	case CheckRegex:
		re, err := regexp.Compile(c.Expected)
		if err != nil {
			return false, fmt.Sprintf("invalid regular expression %q: %v", c.Expected, err)
		}
		return re.MatchString(output), ""
	default:
		return false, fmt.Sprintf("unknown check type %q", c.Type)
	}
}

// PassRate computes Σ(weight·passed) / Σ(weight), clamped to [0,1]. An
// empty check list passes trivially (rate 1) since there is nothing to
// fail.
func PassRate(checks []Check, results []bool) float64 {
	if len(checks) == 0 {
		return 1
	}
	var num, den float64
	for i, c := range checks {
		w := c.Weight
		if w <= 0 {
			w = 1
		}
		den += w
		if i < len(results) && results[i] {
			num += w
		}
	}
	if den == 0 {
		return 1
	}
	rate := num / den
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
