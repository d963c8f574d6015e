package report

import (
	"testing"

	"github.com/sithum-sy/hireme-sub001/internal/domain"
)

func opValues(ops []Operator) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.Value
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOperatorsForEveryType(t *testing.T) {
	cases := []struct {
		fieldType domain.FieldType
		want      []string
	}{
		{domain.TypeString, []string{"equals", "not_equals", "contains", "not_contains", "starts_with", "ends_with"}},
		{domain.TypeText, []string{"equals", "not_equals", "contains", "not_contains", "starts_with", "ends_with"}},
		{domain.TypeInteger, []string{"equals", "not_equals", "greater_than", "less_than", "between"}},
		{domain.TypeDecimal, []string{"equals", "not_equals", "greater_than", "less_than", "between"}},
		{domain.TypeDate, []string{"equals", "not_equals", "greater_than", "less_than", "between"}},
		{domain.TypeDatetime, []string{"equals", "not_equals", "greater_than", "less_than", "between"}},
		{domain.TypeEnum, []string{"equals", "not_equals", "in", "not_in"}},
		{domain.TypeBoolean, []string{"equals"}},
		{domain.TypeUnknown, []string{"equals", "not_equals"}},
		{domain.FieldType("geo_point"), []string{"equals", "not_equals"}},
	}
	for _, tc := range cases {
		got := opValues(OperatorsFor(tc.fieldType))
		if !equalStrings(got, tc.want) {
			t.Errorf("OperatorsFor(%q) = %v, want %v", tc.fieldType, got, tc.want)
		}
	}
}

func TestDateOperatorLabels(t *testing.T) {
	ops := OperatorsFor(domain.TypeDate)
	labels := map[string]string{}
	for _, op := range ops {
		labels[op.Value] = op.Label
	}
	if labels["greater_than"] != "After" {
		t.Errorf("greater_than label for dates = %q, want After", labels["greater_than"])
	}
	if labels["less_than"] != "Before" {
		t.Errorf("less_than label for dates = %q, want Before", labels["less_than"])
	}
}

func TestLegalOperator(t *testing.T) {
	if LegalOperator(domain.TypeInteger, "contains") {
		t.Error("contains must never be legal for integer")
	}
	if !LegalOperator(domain.TypeEnum, "not_in") {
		t.Error("not_in should be legal for enum")
	}
	if LegalOperator(domain.TypeBoolean, "not_equals") {
		t.Error("boolean only supports equals")
	}
}
