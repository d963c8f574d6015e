package report

import "github.com/sithum-sy/hireme-sub001/internal/domain"

// Operator is one legal comparison for a filter row, paired with its
// display label. Catalog order is significant: it drives dropdown order.
type Operator struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

const (
	OpEquals      = "equals"
	OpNotEquals   = "not_equals"
	OpContains    = "contains"
	OpNotContains = "not_contains"
	OpStartsWith  = "starts_with"
	OpEndsWith    = "ends_with"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
	OpBetween     = "between"
	OpIn          = "in"
	OpNotIn       = "not_in"
)

// OperatorsFor maps a field type to its legal operator set. Every returned
// operator must be meaningful for the type; contains is never offered for
// numerics, between never for enums.
func OperatorsFor(t domain.FieldType) []Operator {
	switch t {
	case domain.TypeString, domain.TypeText:
		return []Operator{
			{OpEquals, "Equals"},
			{OpNotEquals, "Not Equals"},
			{OpContains, "Contains"},
			{OpNotContains, "Not Contains"},
			{OpStartsWith, "Starts With"},
			{OpEndsWith, "Ends With"},
		}
	case domain.TypeInteger, domain.TypeDecimal:
		return []Operator{
			{OpEquals, "Equals"},
			{OpNotEquals, "Not Equals"},
			{OpGreaterThan, "Greater Than"},
			{OpLessThan, "Less Than"},
			{OpBetween, "Between"},
		}
	case domain.TypeDate, domain.TypeDatetime:
		return []Operator{
			{OpEquals, "Equals"},
			{OpNotEquals, "Not Equals"},
			{OpGreaterThan, "After"},
			{OpLessThan, "Before"},
			{OpBetween, "Between"},
		}
	case domain.TypeEnum:
		return []Operator{
			{OpEquals, "Equals"},
			{OpNotEquals, "Not Equals"},
			{OpIn, "In"},
			{OpNotIn, "Not In"},
		}
	case domain.TypeBoolean:
		return []Operator{
			{OpEquals, "Equals"},
		}
	case domain.TypeUnknown:
		fallthrough
	default:
		return []Operator{
			{OpEquals, "Equals"},
			{OpNotEquals, "Not Equals"},
		}
	}
}

// LegalOperator reports whether op is in the catalog for type t.
func LegalOperator(t domain.FieldType, op string) bool {
	for _, o := range OperatorsFor(t) {
		if o.Value == op {
			return true
		}
	}
	return false
}
