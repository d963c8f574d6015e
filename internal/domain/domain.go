package domain

import "encoding/json"

// FieldType is the closed set of column types a data source can declare.
// The operator catalog and value-input selector switch exhaustively on it.
type FieldType string

const (
	TypeUnknown  FieldType = ""
	TypeString   FieldType = "string"
	TypeText     FieldType = "text"
	TypeInteger  FieldType = "integer"
	TypeDecimal  FieldType = "decimal"
	TypeDate     FieldType = "date"
	TypeDatetime FieldType = "datetime"
	TypeBoolean  FieldType = "boolean"
	TypeEnum     FieldType = "enum"
)

// ParseFieldType maps a wire string to a FieldType, TypeUnknown for
// anything unrecognized.
func ParseFieldType(s string) FieldType {
	switch FieldType(s) {
	case TypeString, TypeText, TypeInteger, TypeDecimal, TypeDate, TypeDatetime, TypeBoolean, TypeEnum:
		return FieldType(s)
	default:
		return TypeUnknown
	}
}

// Field describes one column of a data source.
type Field struct {
	Label   string    `json:"label"`
	Type    FieldType `json:"type"`
	Options []string  `json:"options,omitempty"`
}

// DataSource describes one queryable entity exposed by the reports backend.
// Instances are immutable reference data for the lifetime of a session.
type DataSource struct {
	Key           string           `json:"key"`
	DisplayName   string           `json:"display_name"`
	Description   string           `json:"description,omitempty"`
	Icon          string           `json:"icon,omitempty"`
	DefaultFields []string         `json:"default_fields"`
	Fields        map[string]Field `json:"fields"`
}

// Has reports whether the source declares the given field key.
func (d DataSource) Has(field string) bool {
	_, ok := d.Fields[field]
	return ok
}

// Filter is one (field, operator, value) predicate in a draft spec.
type Filter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Complete reports whether the row carries enough to be sent to the backend.
// Value may legitimately be empty.
func (f Filter) Complete() bool {
	return f.Field != "" && f.Operator != ""
}

// Sort is one ordering key; rules apply in listed priority.
type Sort struct {
	Field     string `json:"field"`
	Direction string `json:"direction" enum:"asc,desc"`
}

// Pagination is the page request accompanying a report execution.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Spec is the report specification under construction: the draft the
// builder mutates and the execution client serializes.
type Spec struct {
	DataSource     string     `json:"data_source"`
	SelectedFields []string   `json:"fields"`
	Filters        []Filter   `json:"filters"`
	Sorting        []Sort     `json:"sorting"`
	Pagination     Pagination `json:"pagination"`
}

// CompleteFilters returns only rows with field and operator set, in order.
// Incomplete rows are dropped silently, never rejected.
func (s Spec) CompleteFilters() []Filter {
	out := make([]Filter, 0, len(s.Filters))
	for _, f := range s.Filters {
		if f.Complete() {
			out = append(out, f)
		}
	}
	return out
}

// Row is one result record: selected field key to scalar value. Values are
// string, number, bool, or nil as decoded from JSON.
type Row map[string]any

// PageInfo is the pagination metadata of a result page.
type PageInfo struct {
	From        int `json:"from"`
	To          int `json:"to"`
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
}

// Meta carries execution metadata alongside a result page.
type Meta struct {
	FiltersApplied int    `json:"filters_applied"`
	GeneratedAt    string `json:"generated_at,omitempty" format:"date-time"`
}

// Result is the last successful query response. It is replaced wholesale on
// each successful preview and deliberately not invalidated when the spec is
// edited afterwards.
type Result struct {
	Results    []Row    `json:"results"`
	Pagination PageInfo `json:"pagination"`
	Meta       Meta     `json:"meta"`
}

// Option is one selectable value for a closed-choice filter input.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ExportRecord is the persisted trace of a generated export artifact. Draft
// specs are never saved server-side; exports are.
type ExportRecord struct {
	ID         string `json:"id"`
	DataSource string `json:"data_source"`
	Format     string `json:"format" enum:"csv,html"`
	Filename   string `json:"filename"`
	RowCount   int    `json:"row_count"`
	CreatedBy  string `json:"created_by,omitempty"`
	CreatedAt  string `json:"created_at" format:"date-time"`
}

// Event is one audit log entry.
type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	DataSource string `json:"data_source,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

// CellString renders a result cell for export: nil stays empty, objects are
// JSON-stringified, booleans become Yes/No, numbers and strings pass through.
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case string:
		return t
	case json.Number:
		return t.String()
	case map[string]any, []any:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
