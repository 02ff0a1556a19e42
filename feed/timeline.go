package feed

import (
	"strings"
	"time"
)

type timelineRule struct {
	triggers []string
	offset   time.Duration
}

// Evaluated top to bottom, first match wins.
var timelineRules = []timelineRule{
	{triggers: []string{"urgent", "1-3"}, offset: 3 * 24 * time.Hour},
	{triggers: []string{"week", "3-7"}, offset: 7 * 24 * time.Hour},
	{triggers: []string{"month", "1-4"}, offset: 28 * 24 * time.Hour},
}

// ClassifyTimeline maps free-text urgency phrases onto a due date relative to
// now. The offset is taken from the sync wall clock, not from any row-intrinsic
// date, so re-syncing the same row later moves its due date. Returns false when
// no rule matches.
func ClassifyTimeline(text string, now time.Time) (time.Time, bool) {
	if text == "" {
		return time.Time{}, false
	}
	s := dashNormalizer.Replace(strings.ToLower(text))
	for _, rule := range timelineRules {
		for _, trigger := range rule.triggers {
			if strings.Contains(s, trigger) {
				return now.Add(rule.offset), true
			}
		}
	}
	return time.Time{}, false
}
