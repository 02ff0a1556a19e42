package sheetsync

import (
	"time"

	"orderhub/domain"
	"orderhub/feed"

	"github.com/fundwit/go-commons/types"
)

// ParsedOrder is one feed row after normalization, with the derived fields
// resolved against the sync wall clock.
type ParsedOrder struct {
	SheetRowID  string
	ClientName  string
	Requirement string
	Price       int64
	DueTime     types.Timestamp
	RawPayload  domain.RawPayload
}

// BuildParsedOrders runs the normalizer, budget parser, timeline classifier
// and identity resolver over decoded rows. Blank form rows are dropped.
func BuildParsedOrders(rows []feed.RowAccessor, now time.Time) []ParsedOrder {
	parsed := make([]ParsedOrder, 0, len(rows))
	for _, row := range rows {
		normalized := feed.NormalizeRow(row)
		if normalized == nil {
			continue
		}

		order := ParsedOrder{
			SheetRowID:  feed.ResolveIdentity(normalized),
			ClientName:  normalized.FullName,
			Requirement: normalized.Requirement(),
			Price:       feed.ParseBudget(normalized.BudgetText),
			RawPayload:  domain.RawPayload(normalized.Raw),
		}
		if due, ok := feed.ClassifyTimeline(normalized.TimelineText, now); ok {
			order.DueTime = types.Timestamp(due)
		}
		parsed = append(parsed, order)
	}
	return parsed
}
