package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"orderhub/bizerror"
)

type Variant string

const (
	// VariantArray is a plain JSON array of objects keyed by column headers.
	VariantArray Variant = "array"
	// VariantWrapped is the padded-JSON tabular export: a JSON object wrapped
	// in a function-call envelope, with an ordered column list and cell rows.
	VariantWrapped Variant = "wrapped"
)

// RowAccessor reads the cells of a single feed row regardless of variant.
// Field tries each header label in order and returns the first present cell,
// preferring the formatted display string over the raw value.
type RowAccessor interface {
	Field(labels ...string) string
	Raw() map[string]string
}

// Decode parses raw feed bytes into row accessors plus the total row count.
func Decode(data []byte, variant Variant) ([]RowAccessor, int, error) {
	switch variant {
	case VariantWrapped:
		return decodeWrapped(data)
	default:
		return decodeArray(data)
	}
}

func decodeArray(data []byte) ([]RowAccessor, int, error) {
	var raw []map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", bizerror.ErrMalformedFeed, err)
	}

	rows := make([]RowAccessor, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, arrayRow(r))
	}
	return rows, len(rows), nil
}

type arrayRow map[string]interface{}

func (r arrayRow) Field(labels ...string) string {
	for _, label := range labels {
		if v, ok := r[label]; ok {
			return cellString(v)
		}
		for k, v := range r {
			if strings.EqualFold(k, label) {
				return cellString(v)
			}
		}
	}
	return ""
}

func (r arrayRow) Raw() map[string]string {
	raw := make(map[string]string, len(r))
	for k, v := range r {
		raw[k] = cellString(v)
	}
	return raw
}

type wrappedTable struct {
	Table struct {
		Cols []struct {
			Label string `json:"label"`
		} `json:"cols"`
		Rows []struct {
			Cells []wrappedCell `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

type wrappedCell struct {
	Value     interface{} `json:"v"`
	Formatted *string     `json:"f"`
}

func decodeWrapped(data []byte) ([]RowAccessor, int, error) {
	start := bytes.IndexByte(data, '(')
	end := bytes.LastIndexByte(data, ')')
	if start < 0 || end < 0 || end <= start {
		return nil, 0, fmt.Errorf("%w: envelope delimiters not found", bizerror.ErrMalformedFeed)
	}

	table := wrappedTable{}
	decoder := json.NewDecoder(bytes.NewReader(data[start+1 : end]))
	decoder.UseNumber()
	if err := decoder.Decode(&table); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", bizerror.ErrMalformedFeed, err)
	}

	labelIndex := map[string]int{}
	for i, col := range table.Table.Cols {
		label := strings.ToLower(strings.TrimSpace(col.Label))
		if label == "" {
			continue
		}
		if _, seen := labelIndex[label]; !seen {
			labelIndex[label] = i
		}
	}
	if err := checkRequiredColumns(labelIndex); err != nil {
		return nil, 0, err
	}

	labels := make([]string, len(table.Table.Cols))
	for i, col := range table.Table.Cols {
		labels[i] = col.Label
	}

	rows := make([]RowAccessor, 0, len(table.Table.Rows))
	for _, r := range table.Table.Rows {
		rows = append(rows, &wrappedRow{cells: r.Cells, labelIndex: labelIndex, labels: labels})
	}
	return rows, len(rows), nil
}

// checkRequiredColumns is only enforced on the wrapped path: array-variant
// consumers tolerate missing fields via fallback defaults.
func checkRequiredColumns(labelIndex map[string]int) error {
	for _, required := range [][]string{labelsService, labelsDescription} {
		if findLabel(labelIndex, required...) < 0 {
			return fmt.Errorf("%w: none of %v", bizerror.ErrMissingColumn, required)
		}
	}
	return nil
}

func findLabel(labelIndex map[string]int, labels ...string) int {
	for _, label := range labels {
		if idx, ok := labelIndex[strings.ToLower(label)]; ok {
			return idx
		}
	}
	for _, label := range labels {
		needle := strings.ToLower(label)
		for k, idx := range labelIndex {
			if strings.Contains(k, needle) {
				return idx
			}
		}
	}
	return -1
}

type wrappedRow struct {
	cells      []wrappedCell
	labelIndex map[string]int
	labels     []string
}

func (r *wrappedRow) Field(labels ...string) string {
	idx := findLabel(r.labelIndex, labels...)
	if idx < 0 || idx >= len(r.cells) {
		return ""
	}
	return r.cells[idx].String()
}

func (r *wrappedRow) Raw() map[string]string {
	raw := make(map[string]string, len(r.cells))
	for i, cell := range r.cells {
		if i >= len(r.labels) || r.labels[i] == "" {
			continue
		}
		raw[r.labels[i]] = cell.String()
	}
	return raw
}

func (c *wrappedCell) String() string {
	if c.Formatted != nil && *c.Formatted != "" {
		return *c.Formatted
	}
	return cellString(c.Value)
}

func cellString(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}
