package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/sithum-sy/hireme-sub001/internal/domain"
)

// Executor runs a finished request against the reports backend. Implemented
// by the SDK HTTP client and by the server-side query layer.
type Executor interface {
	Execute(ctx context.Context, spec domain.Spec) (domain.Result, error)
}

// Steps of the builder wizard, in order.
const (
	StepDataSource = 1
	StepFields     = 2
	StepFilters    = 3
	StepSorting    = 4
	StepPreview    = 5
)

// Preview executions are bounded to the first page at a fixed size.
const previewPerPage = 50

var (
	ErrNoDataSource = errors.New("select a data source before generating the report")
	ErrNoFields     = errors.New("select at least one field before generating the report")
)

// FilterPatch is a partial update for one filter row. Nil members leave the
// row's value untouched. Patching a row's field deliberately does not reset
// an operator that became illegal for the new field's type.
type FilterPatch struct {
	Field    *string
	Operator *string
	Value    *string
}

// SortPatch is a partial update for one sort rule.
type SortPatch struct {
	Field     *string
	Direction *string
}

// Session holds one report-editing session: the immutable source catalog,
// the draft spec, the stepper position, the option cache, and the last
// successful result. It is not safe for concurrent use; all mutation happens
// inside a single interaction loop.
type Session struct {
	Spec    domain.Spec
	Step    int
	Options *OptionCache
	Result  *domain.Result

	catalog map[string]domain.DataSource
}

// NewSession starts an empty draft over a fetched catalog. The initial
// sorting default is a single creation-timestamp rule, newest first; it is
// replaced by an empty list the moment a data source is chosen.
func NewSession(catalog map[string]domain.DataSource, fetcher OptionFetcher) *Session {
	return &Session{
		Spec: domain.Spec{
			Sorting:    []domain.Sort{{Field: "created_at", Direction: "desc"}},
			Pagination: domain.Pagination{Page: 1, PerPage: previewPerPage},
		},
		Step:    StepDataSource,
		Options: NewOptionCache(fetcher),
		catalog: catalog,
	}
}

// Source returns the descriptor of the currently selected data source.
func (s *Session) Source() (domain.DataSource, bool) {
	d, ok := s.catalog[s.Spec.DataSource]
	return d, ok
}

// Catalog exposes the session's reference descriptors.
func (s *Session) Catalog() map[string]domain.DataSource { return s.catalog }

// SelectDataSource sets the draft's source and resets the dependent state:
// selected fields become the source's defaults, filters and sorting are
// cleared. Stale rows referencing the previous source's fields must never
// survive a source change. An unknown key still records the selection but
// leaves fields untouched.
func (s *Session) SelectDataSource(key string) {
	s.Spec.DataSource = key
	src, ok := s.catalog[key]
	if !ok {
		return
	}
	s.Spec.SelectedFields = append([]string(nil), src.DefaultFields...)
	s.Spec.Filters = nil
	s.Spec.Sorting = nil
}

// ToggleField adds the key to the selected set if absent, removes it if
// present. Insertion order is preserved; duplicates never appear. Filters
// and sort rules referencing a deselected field are intentionally left in
// place; only a source change purges them.
func (s *Session) ToggleField(key string) {
	for i, f := range s.Spec.SelectedFields {
		if f == key {
			s.Spec.SelectedFields = append(s.Spec.SelectedFields[:i], s.Spec.SelectedFields[i+1:]...)
			return
		}
	}
	s.Spec.SelectedFields = append(s.Spec.SelectedFields, key)
}

// AddFilter appends an empty filter row and returns its index.
func (s *Session) AddFilter() int {
	s.Spec.Filters = append(s.Spec.Filters, domain.Filter{})
	return len(s.Spec.Filters) - 1
}

// UpdateFilter merges a patch into the row at index.
func (s *Session) UpdateFilter(index int, patch FilterPatch) error {
	if index < 0 || index >= len(s.Spec.Filters) {
		return fmt.Errorf("filter row %d does not exist", index)
	}
	row := &s.Spec.Filters[index]
	if patch.Field != nil {
		row.Field = *patch.Field
	}
	if patch.Operator != nil {
		row.Operator = *patch.Operator
	}
	if patch.Value != nil {
		row.Value = *patch.Value
	}
	return nil
}

// RemoveFilter deletes the row at index.
func (s *Session) RemoveFilter(index int) error {
	if index < 0 || index >= len(s.Spec.Filters) {
		return fmt.Errorf("filter row %d does not exist", index)
	}
	s.Spec.Filters = append(s.Spec.Filters[:index], s.Spec.Filters[index+1:]...)
	return nil
}

// AddSort appends an ascending sort rule with no field and returns its index.
func (s *Session) AddSort() int {
	s.Spec.Sorting = append(s.Spec.Sorting, domain.Sort{Direction: "asc"})
	return len(s.Spec.Sorting) - 1
}

// UpdateSort merges a patch into the rule at index.
func (s *Session) UpdateSort(index int, patch SortPatch) error {
	if index < 0 || index >= len(s.Spec.Sorting) {
		return fmt.Errorf("sort rule %d does not exist", index)
	}
	rule := &s.Spec.Sorting[index]
	if patch.Field != nil {
		rule.Field = *patch.Field
	}
	if patch.Direction != nil {
		rule.Direction = *patch.Direction
	}
	return nil
}

// RemoveSort deletes the rule at index.
func (s *Session) RemoveSort(index int) error {
	if index < 0 || index >= len(s.Spec.Sorting) {
		return fmt.Errorf("sort rule %d does not exist", index)
	}
	s.Spec.Sorting = append(s.Spec.Sorting[:index], s.Spec.Sorting[index+1:]...)
	return nil
}

// CanAdvance is the forward gate for the stepper: step 1 needs a source,
// step 2 needs at least one field. Empty filters and sorting are legitimate
// end states, so steps 3 and 4 never block.
func (s *Session) CanAdvance(step int) bool {
	switch step {
	case StepDataSource:
		return s.Spec.DataSource != ""
	case StepFields:
		return len(s.Spec.SelectedFields) > 0
	default:
		return true
	}
}

// Next advances one step when the current step's gate passes.
func (s *Session) Next() error {
	if s.Step >= StepPreview {
		return nil
	}
	if !s.CanAdvance(s.Step) {
		switch s.Step {
		case StepDataSource:
			return ErrNoDataSource
		case StepFields:
			return ErrNoFields
		}
	}
	s.Step++
	return nil
}

// Prev moves one step back; backward navigation is never gated.
func (s *Session) Prev() {
	if s.Step > StepDataSource {
		s.Step--
	}
}

// GeneratePreview validates the draft, strips incomplete filter rows, fixes
// pagination at page 1 of the preview size, and runs the request. On success
// the stored result is replaced wholesale; on failure the previous result is
// kept as-is.
func (s *Session) GeneratePreview(ctx context.Context, exec Executor) (domain.Result, error) {
	req, err := s.BuildRequest()
	if err != nil {
		return domain.Result{}, err
	}
	res, err := exec.Execute(ctx, req)
	if err != nil {
		return domain.Result{}, err
	}
	s.Result = &res
	return res, nil
}

// BuildRequest produces the serializable request for the current draft,
// applying the submission rules without mutating the draft itself.
func (s *Session) BuildRequest() (domain.Spec, error) {
	if s.Spec.DataSource == "" {
		return domain.Spec{}, ErrNoDataSource
	}
	if len(s.Spec.SelectedFields) == 0 {
		return domain.Spec{}, ErrNoFields
	}
	req := domain.Spec{
		DataSource:     s.Spec.DataSource,
		SelectedFields: append([]string(nil), s.Spec.SelectedFields...),
		Filters:        s.Spec.CompleteFilters(),
		Sorting:        append([]domain.Sort(nil), s.Spec.Sorting...),
		Pagination:     domain.Pagination{Page: 1, PerPage: previewPerPage},
	}
	return req, nil
}
