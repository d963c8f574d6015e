package report

import (
	"context"
	"errors"
	"testing"

	"github.com/sithum-sy/hireme-sub001/internal/domain"
)

func testCatalog() map[string]domain.DataSource {
	return map[string]domain.DataSource{
		"services": {
			Key:           "services",
			DisplayName:   "Services",
			DefaultFields: []string{"title", "is_active"},
			Fields: map[string]domain.Field{
				"title":         {Label: "Title", Type: domain.TypeString},
				"is_active":     {Label: "Active", Type: domain.TypeBoolean},
				"category_name": {Label: "Category", Type: domain.TypeEnum, Options: []string{"a", "b"}},
				"created_at":    {Label: "Created At", Type: domain.TypeDatetime},
			},
		},
		"bookings": {
			Key:           "bookings",
			DisplayName:   "Bookings",
			DefaultFields: []string{"status"},
			Fields: map[string]domain.Field{
				"status":     {Label: "Status", Type: domain.TypeEnum, Options: []string{"pending", "completed"}},
				"created_at": {Label: "Created At", Type: domain.TypeDatetime},
			},
		},
	}
}

func strptr(s string) *string { return &s }

func TestSelectDataSourceResetsDependentState(t *testing.T) {
	sess := NewSession(testCatalog(), nil)
	if len(sess.Spec.Sorting) != 1 || sess.Spec.Sorting[0].Field != "created_at" || sess.Spec.Sorting[0].Direction != "desc" {
		t.Fatalf("initial default sorting = %+v", sess.Spec.Sorting)
	}

	sess.SelectDataSource("services")
	sess.ToggleField("category_name")
	i := sess.AddFilter()
	_ = sess.UpdateFilter(i, FilterPatch{Field: strptr("title"), Operator: strptr("contains"), Value: strptr("clean")})
	j := sess.AddSort()
	_ = sess.UpdateSort(j, SortPatch{Field: strptr("title"), Direction: strptr("asc")})

	sess.SelectDataSource("bookings")
	if got := sess.Spec.SelectedFields; len(got) != 1 || got[0] != "status" {
		t.Errorf("selected fields after source change = %v, want [status]", got)
	}
	if len(sess.Spec.Filters) != 0 {
		t.Errorf("filters survived source change: %v", sess.Spec.Filters)
	}
	if len(sess.Spec.Sorting) != 0 {
		t.Errorf("sorting survived source change: %v", sess.Spec.Sorting)
	}
}

func TestSelectUnknownDataSourceLeavesFields(t *testing.T) {
	sess := NewSession(testCatalog(), nil)
	sess.SelectDataSource("services")
	before := append([]string(nil), sess.Spec.SelectedFields...)
	sess.SelectDataSource("nope")
	if sess.Spec.DataSource != "nope" {
		t.Errorf("data source = %q", sess.Spec.DataSource)
	}
	if len(sess.Spec.SelectedFields) != len(before) {
		t.Errorf("fields changed on unknown source: %v", sess.Spec.SelectedFields)
	}
}

func TestToggleFieldIsIdempotentInverse(t *testing.T) {
	sess := NewSession(testCatalog(), nil)
	sess.SelectDataSource("services")
	before := append([]string(nil), sess.Spec.SelectedFields...)

	sess.ToggleField("category_name")
	if got := sess.Spec.SelectedFields; got[len(got)-1] != "category_name" {
		t.Errorf("toggled field not appended: %v", got)
	}
	sess.ToggleField("category_name")
	if got := sess.Spec.SelectedFields; len(got) != len(before) {
		t.Errorf("double toggle did not restore: %v vs %v", got, before)
	}
	sess.ToggleField("title")
	sess.ToggleField("title")
	for i, f := range sess.Spec.SelectedFields {
		for j, g := range sess.Spec.SelectedFields {
			if i != j && f == g {
				t.Fatalf("duplicate field %q in %v", f, sess.Spec.SelectedFields)
			}
		}
	}
}

func TestFieldDeselectionKeepsStaleRows(t *testing.T) {
	sess := NewSession(testCatalog(), nil)
	sess.SelectDataSource("services")
	i := sess.AddFilter()
	_ = sess.UpdateFilter(i, FilterPatch{Field: strptr("is_active"), Operator: strptr("equals"), Value: strptr("1")})
	j := sess.AddSort()
	_ = sess.UpdateSort(j, SortPatch{Field: strptr("is_active")})

	sess.ToggleField("is_active") // deselect
	if len(sess.Spec.Filters) != 1 || sess.Spec.Filters[0].Field != "is_active" {
		t.Errorf("filter was purged on field deselection: %v", sess.Spec.Filters)
	}
	if len(sess.Spec.Sorting) != 1 || sess.Spec.Sorting[0].Field != "is_active" {
		t.Errorf("sort rule was purged on field deselection: %v", sess.Spec.Sorting)
	}
}

func TestUpdateFilterKeepsIllegalOperator(t *testing.T) {
	sess := NewSession(testCatalog(), nil)
	sess.SelectDataSource("services")
	i := sess.AddFilter()
	_ = sess.UpdateFilter(i, FilterPatch{Field: strptr("title"), Operator: strptr("contains")})
	// Re-target the row at a boolean field; contains is now illegal but the
	// patch must not touch it.
	_ = sess.UpdateFilter(i, FilterPatch{Field: strptr("is_active")})
	if got := sess.Spec.Filters[i].Operator; got != "contains" {
		t.Errorf("operator after field patch = %q, want contains", got)
	}
}

func TestBuildRequestDropsIncompleteFilters(t *testing.T) {
	sess := NewSession(testCatalog(), nil)
	sess.SelectDataSource("services")
	a := sess.AddFilter()
	_ = sess.UpdateFilter(a, FilterPatch{Field: strptr("title"), Operator: strptr("equals"), Value: strptr("x")})
	b := sess.AddFilter()
	_ = sess.UpdateFilter(b, FilterPatch{Field: strptr("title"), Value: strptr("no operator")})
	c := sess.AddFilter()
	_ = sess.UpdateFilter(c, FilterPatch{Operator: strptr("equals"), Value: strptr("no field")})

	req, err := sess.BuildRequest()
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if len(req.Filters) != 1 || req.Filters[0].Field != "title" || req.Filters[0].Value != "x" {
		t.Errorf("request filters = %v, want only the complete row", req.Filters)
	}
	// Draft itself keeps all rows.
	if len(sess.Spec.Filters) != 3 {
		t.Errorf("draft filters mutated: %v", sess.Spec.Filters)
	}
	if req.Pagination.Page != 1 || req.Pagination.PerPage != 50 {
		t.Errorf("preview pagination = %+v, want page 1 per_page 50", req.Pagination)
	}
}

func TestBuildRequestValidation(t *testing.T) {
	sess := NewSession(testCatalog(), nil)
	if _, err := sess.BuildRequest(); !errors.Is(err, ErrNoDataSource) {
		t.Errorf("expected ErrNoDataSource, got %v", err)
	}
	sess.SelectDataSource("services")
	sess.Spec.SelectedFields = nil
	if _, err := sess.BuildRequest(); !errors.Is(err, ErrNoFields) {
		t.Errorf("expected ErrNoFields, got %v", err)
	}
}

func TestStepGates(t *testing.T) {
	sess := NewSession(testCatalog(), nil)

	if err := sess.Next(); !errors.Is(err, ErrNoDataSource) {
		t.Fatalf("step 1 advance without source: %v", err)
	}
	sess.SelectDataSource("services")
	if err := sess.Next(); err != nil || sess.Step != StepFields {
		t.Fatalf("step 1->2: err=%v step=%d", err, sess.Step)
	}

	sess.Spec.SelectedFields = nil
	if err := sess.Next(); !errors.Is(err, ErrNoFields) {
		t.Fatalf("step 2 advance without fields: %v", err)
	}
	sess.ToggleField("title")
	if err := sess.Next(); err != nil || sess.Step != StepFilters {
		t.Fatalf("step 2->3: err=%v step=%d", err, sess.Step)
	}

	// Steps 3 and 4 never block, even with zero filters and sort rules.
	if err := sess.Next(); err != nil || sess.Step != StepSorting {
		t.Fatalf("step 3->4: err=%v step=%d", err, sess.Step)
	}
	if err := sess.Next(); err != nil || sess.Step != StepPreview {
		t.Fatalf("step 4->5: err=%v step=%d", err, sess.Step)
	}
	// Forward at the last step stays put; backward is always allowed.
	if err := sess.Next(); err != nil || sess.Step != StepPreview {
		t.Fatalf("step 5 forward: err=%v step=%d", err, sess.Step)
	}
	sess.Prev()
	if sess.Step != StepSorting {
		t.Fatalf("step after Prev = %d", sess.Step)
	}
}

type fakeExecutor struct {
	calls int
	last  domain.Spec
	res   domain.Result
	err   error
}

func (f *fakeExecutor) Execute(ctx context.Context, spec domain.Spec) (domain.Result, error) {
	f.calls++
	f.last = spec
	return f.res, f.err
}

func TestGeneratePreviewStoresResultWholesale(t *testing.T) {
	sess := NewSession(testCatalog(), nil)
	sess.SelectDataSource("services")
	exec := &fakeExecutor{res: domain.Result{
		Results:    []domain.Row{{"title": "a"}},
		Pagination: domain.PageInfo{Total: 1},
	}}
	res, err := sess.GeneratePreview(context.Background(), exec)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if sess.Result == nil || len(sess.Result.Results) != 1 || res.Pagination.Total != 1 {
		t.Fatalf("result not stored: %+v", sess.Result)
	}

	// A failed preview keeps the previous result.
	exec.err = errors.New("backend down")
	if _, err := sess.GeneratePreview(context.Background(), exec); err == nil {
		t.Fatal("expected error")
	}
	if sess.Result == nil || len(sess.Result.Results) != 1 {
		t.Fatalf("previous result lost on failure: %+v", sess.Result)
	}

	// Editing the spec after a preview does not invalidate the result.
	sess.ToggleField("category_name")
	if sess.Result == nil {
		t.Fatal("result invalidated by spec edit")
	}
}

func TestGeneratePreviewValidationSkipsExecutor(t *testing.T) {
	sess := NewSession(testCatalog(), nil)
	exec := &fakeExecutor{}
	if _, err := sess.GeneratePreview(context.Background(), exec); !errors.Is(err, ErrNoDataSource) {
		t.Fatalf("expected ErrNoDataSource, got %v", err)
	}
	if exec.calls != 0 {
		t.Fatalf("executor called %d times on validation failure", exec.calls)
	}
}
