package feed

import "strings"

// Header spellings per business field, primary label first. The sheet's header
// text is not stable across versions, so each field carries fallbacks.
var (
	labelsFullName    = []string{"Full Name", "Name"}
	labelsService     = []string{"Service Required", "Service"}
	labelsDescription = []string{"Project Description", "Description"}
	labelsBudget      = []string{"Budget Range", "Budget"}
	labelsTimeline    = []string{"Timeline", "Urgency"}
	labelsTimestamp   = []string{"Timestamp"}
)

// DefaultClientName fills in when the form left the name blank.
const DefaultClientName = "Client"

type NormalizedRow struct {
	FullName     string
	Service      string
	Description  string
	BudgetText   string
	TimelineText string
	Timestamp    string

	Raw map[string]string
}

// NormalizeRow extracts the business fields from one feed row. Rows with both
// service and description blank are noise (empty form submissions) and yield nil.
func NormalizeRow(r RowAccessor) *NormalizedRow {
	row := NormalizedRow{
		FullName:     strings.TrimSpace(r.Field(labelsFullName...)),
		Service:      strings.TrimSpace(r.Field(labelsService...)),
		Description:  strings.TrimSpace(r.Field(labelsDescription...)),
		BudgetText:   strings.TrimSpace(r.Field(labelsBudget...)),
		TimelineText: strings.TrimSpace(r.Field(labelsTimeline...)),
		Timestamp:    strings.TrimSpace(r.Field(labelsTimestamp...)),
	}

	if row.Service == "" && row.Description == "" {
		return nil
	}
	if row.FullName == "" {
		row.FullName = DefaultClientName
	}
	row.Raw = r.Raw()
	return &row
}

// Requirement joins service and description into the persisted requirement text.
func (r *NormalizedRow) Requirement() string {
	if r.Service == "" {
		return r.Description
	}
	if r.Description == "" {
		return r.Service
	}
	return r.Service + ": " + r.Description
}
