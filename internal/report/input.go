package report

import (
	"context"
	"strings"

	"github.com/sithum-sy/hireme-sub001/internal/domain"
)

// InputKind names the value-entry control presented for a filter row.
type InputKind string

const (
	InputSelect   InputKind = "select"
	InputText     InputKind = "text"
	InputDate     InputKind = "date"
	InputDatetime InputKind = "datetime"
)

// InputSpec tells the console which control to render for a filter value and,
// for closed-choice controls, which options to offer. The chosen control
// always emits a plain string; coercion to backend representations is the
// execution side's responsibility.
type InputSpec struct {
	Kind    InputKind       `json:"kind"`
	Options []domain.Option `json:"options,omitempty"`
	Loading bool            `json:"loading,omitempty"`
}

// booleanOptions is the fixed two-value choice for boolean fields.
var booleanOptions = []domain.Option{
	{Value: "1", Label: "Yes"},
	{Value: "0", Label: "No"},
}

// suggestsOptions is the name heuristic for free-text fields that still get
// a closed-choice control backed by distinct backend values.
func suggestsOptions(fieldKey string) bool {
	return strings.Contains(fieldKey, "category") || strings.HasSuffix(fieldKey, "_name")
}

// labelCase turns an enum value into its display label: first letter
// uppercased, underscores replaced with spaces.
func labelCase(v string) string {
	s := strings.ReplaceAll(v, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// EnumOptions maps a field's declared options to display options.
func EnumOptions(f domain.Field) []domain.Option {
	opts := make([]domain.Option, 0, len(f.Options))
	for _, v := range f.Options {
		opts = append(opts, domain.Option{Value: v, Label: labelCase(v)})
	}
	return opts
}

// InputFor selects the value control for a filter row on the given field.
// Enum fields and fields matching the name heuristic get a select control;
// the heuristic case resolves its options through the session option cache
// and reports Loading until they arrive. Booleans get the fixed Yes/No pair.
// Everything else is free text, specialized to date or datetime pickers.
func (s *Session) InputFor(ctx context.Context, fieldKey string) InputSpec {
	src, ok := s.catalog[s.Spec.DataSource]
	if !ok {
		return InputSpec{Kind: InputText}
	}
	f, ok := src.Fields[fieldKey]
	if !ok {
		return InputSpec{Kind: InputText}
	}
	switch {
	case f.Type == domain.TypeEnum:
		return InputSpec{Kind: InputSelect, Options: EnumOptions(f)}
	case suggestsOptions(fieldKey):
		opts, err := s.Options.Get(ctx, src.Key, fieldKey)
		if err != nil {
			// Control stays usable but empty; the fetch is retried on the
			// next interaction because failures are not cached.
			return InputSpec{Kind: InputSelect, Loading: true}
		}
		return InputSpec{Kind: InputSelect, Options: opts}
	case f.Type == domain.TypeBoolean:
		return InputSpec{Kind: InputSelect, Options: booleanOptions}
	case f.Type == domain.TypeDate:
		return InputSpec{Kind: InputDate}
	case f.Type == domain.TypeDatetime:
		return InputSpec{Kind: InputDatetime}
	default:
		return InputSpec{Kind: InputText}
	}
}
