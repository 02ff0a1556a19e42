package feed

import (
	"strconv"
	"strings"
)

// ResolveIdentity derives the deduplication key for a row: the feed timestamp
// verbatim when present, otherwise a deterministic hash of the visible fields.
// Two identical blank-timestamp rows collapse to one identity on purpose.
func ResolveIdentity(r *NormalizedRow) string {
	if r.Timestamp != "" {
		return r.Timestamp
	}

	joined := strings.Join([]string{r.FullName, r.Service, r.Description, r.BudgetText, r.TimelineText}, "|")
	var hash uint32
	for _, c := range joined {
		hash = hash*31 + uint32(c)
	}
	return "row-" + strconv.FormatUint(uint64(hash), 36)
}
