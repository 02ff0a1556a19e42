package feed

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// amountPattern matches a number (with optional comma/space grouping or a
// decimal point) followed by an optional magnitude suffix. The suffix binds to
// the nearest preceding number only.
var amountPattern = regexp.MustCompile(`(\d+(?:[, ]\d{3})*(?:\.\d+)?)\s*(crore|cr|lakhs|lakh|lac|k|m|l)?\b`)

var dashNormalizer = strings.NewReplacer("–", "-", "—", "-", "−", "-")

var groupingStripper = strings.NewReplacer(",", "", " ", "")

var suffixMultipliers = map[string]float64{
	"":      1,
	"k":     1e3,
	"m":     1e6,
	"l":     1e5,
	"lac":   1e5,
	"lakh":  1e5,
	"lakhs": 1e5,
	"cr":    1e7,
	"crore": 1e7,
}

// ParseBudget extracts a single representative amount from free-text budget
// input. A range resolves to its upper bound (the ceiling of what the client
// is willing to pay); text with no interpretable number yields 0.
func ParseBudget(text string) int64 {
	if text == "" {
		return 0
	}
	s := dashNormalizer.Replace(strings.ToLower(text))

	best := 0.0
	found := false
	for _, match := range amountPattern.FindAllStringSubmatch(s, -1) {
		value, err := strconv.ParseFloat(groupingStripper.Replace(match[1]), 64)
		if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
			continue
		}
		value *= suffixMultipliers[match[2]]
		if !found || value > best {
			best = value
			found = true
		}
	}
	if !found {
		return 0
	}
	return int64(math.Round(best))
}
