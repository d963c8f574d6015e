package export

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sithum-sy/hireme-sub001/internal/domain"
)

func exportSource() domain.DataSource {
	return domain.DataSource{
		Key:         "services",
		DisplayName: "Services",
		Fields: map[string]domain.Field{
			"title":     {Label: "Title", Type: domain.TypeString},
			"is_active": {Label: "Active", Type: domain.TypeBoolean},
			"rating":    {Label: "Rating", Type: domain.TypeDecimal},
		},
	}
}

func fixedEngine() Engine {
	return Engine{Now: func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}}
}

func TestCSVCellRendering(t *testing.T) {
	spec := domain.Spec{
		DataSource:     "services",
		SelectedFields: []string{"title", "is_active", "rating"},
	}
	res := &domain.Result{
		Results: []domain.Row{
			{"title": "A,B", "is_active": true, "rating": nil},
		},
		Pagination: domain.PageInfo{Total: 1},
	}

	art, err := fixedEngine().CSV(res, spec, exportSource())
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(art.Content), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[0] != "Title,Active,Rating" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != `"A,B",Yes,""` {
		t.Errorf("row = %q, want %q", lines[1], `"A,B",Yes,""`)
	}
	if art.Filename != "custom-report-services-2026-03-14.csv" {
		t.Errorf("filename = %q", art.Filename)
	}
	if art.MIME != "text/csv;charset=utf-8" {
		t.Errorf("mime = %q", art.MIME)
	}
}

func TestCSVEscaping(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{"line\nbreak", "\"line\nbreak\""},
	}
	for _, tc := range cases {
		if got := escapeCSV(tc.in); got != tc.want {
			t.Errorf("escapeCSV(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCSVRoundTripsThroughStandardReader(t *testing.T) {
	spec := domain.Spec{
		DataSource:     "services",
		SelectedFields: []string{"title", "rating"},
	}
	res := &domain.Result{
		Results: []domain.Row{
			{"title": `He said "go", then left`, "rating": 4.5},
			{"title": "multi\nline", "rating": int64(3)},
		},
		Pagination: domain.PageInfo{Total: 2},
	}

	art, err := fixedEngine().CSV(res, spec, exportSource())
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(art.Content))).ReadAll()
	if err != nil {
		t.Fatalf("parse generated csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %v", records)
	}
	if records[1][0] != `He said "go", then left` {
		t.Errorf("quoted cell round-trip = %q", records[1][0])
	}
	if records[2][0] != "multi\nline" {
		t.Errorf("newline cell round-trip = %q", records[2][0])
	}
}

func TestExportWithoutResult(t *testing.T) {
	e := fixedEngine()
	spec := domain.Spec{DataSource: "services", SelectedFields: []string{"title"}}
	if _, err := e.CSV(nil, spec, exportSource()); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("csv err = %v", err)
	}
	if _, err := e.HTML(nil, spec, exportSource()); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("html err = %v", err)
	}
	if _, err := e.Print(nil, spec, exportSource(), FileViewer{Dir: t.TempDir()}); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("print err = %v", err)
	}
}

func TestHTMLDocument(t *testing.T) {
	spec := domain.Spec{
		DataSource:     "services",
		SelectedFields: []string{"title", "is_active", "ghost_field"},
	}
	res := &domain.Result{
		Results: []domain.Row{
			{"title": "Cleaning", "is_active": false},
		},
		Pagination: domain.PageInfo{Total: 120},
		Meta:       domain.Meta{FiltersApplied: 2},
	}

	art, err := fixedEngine().HTML(res, spec, exportSource())
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	doc := string(art.Content)
	for _, want := range []string{
		"<title>Custom Report - Services</title>",
		"<div>Generated: 2026-03-14 09:30:00 UTC</div>",
		"<div>Data Source: Services</div>",
		"<div>Total Records: 120</div>",
		"<div>Filters Applied: 2</div>",
		"<div>Fields: 3</div>",
		"<th>Title<small>string</small></th>",
		"<th>Active<small>boolean</small></th>",
		// Unknown fields export under their raw key with an empty type.
		"<th>ghost_field<small></small></th>",
		"<td>Cleaning</td>",
		"<td>No</td>",
		`<td>""</td>`,
		"<footer>Showing 1 of 120 records.</footer>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if art.Filename != "custom-report-services-2026-03-14.html" {
		t.Errorf("filename = %q", art.Filename)
	}
}

func TestHTMLFooterOmittedForCompleteResults(t *testing.T) {
	spec := domain.Spec{DataSource: "services", SelectedFields: []string{"title"}}
	res := &domain.Result{
		Results:    []domain.Row{{"title": "a"}, {"title": "b"}},
		Pagination: domain.PageInfo{Total: 2},
	}
	art, err := fixedEngine().HTML(res, spec, exportSource())
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	if strings.Contains(string(art.Content), "<footer>") {
		t.Error("footer present for non-truncated result")
	}
}

func TestPrintDeliversToViewer(t *testing.T) {
	dir := t.TempDir()
	spec := domain.Spec{DataSource: "services", SelectedFields: []string{"title"}}
	res := &domain.Result{Results: []domain.Row{{"title": "a"}}, Pagination: domain.PageInfo{Total: 1}}

	doc, err := fixedEngine().Print(res, spec, exportSource(), FileViewer{Dir: dir})
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	saved, err := os.ReadFile(filepath.Join(dir, doc.Filename))
	if err != nil {
		t.Fatalf("read saved doc: %v", err)
	}
	if string(saved) != string(doc.Content) {
		t.Error("saved document differs from rendered artifact")
	}
}

func TestPrintViewerFailure(t *testing.T) {
	spec := domain.Spec{DataSource: "services", SelectedFields: []string{"title"}}
	res := &domain.Result{Results: []domain.Row{{"title": "a"}}, Pagination: domain.PageInfo{Total: 1}}

	blocked := ViewerFunc(func(doc Artifact) error { return errors.New("popup blocked") })
	if _, err := fixedEngine().Print(res, spec, exportSource(), blocked); !errors.Is(err, ErrViewerUnavailable) {
		t.Errorf("blocked viewer err = %v", err)
	}
	if _, err := fixedEngine().Print(res, spec, exportSource(), nil); !errors.Is(err, ErrViewerUnavailable) {
		t.Errorf("nil viewer err = %v", err)
	}
}

func TestFilenameSlug(t *testing.T) {
	src := domain.DataSource{Key: "bookings", DisplayName: "Booking Requests"}
	name := fixedEngine().filename(src, "csv")
	if name != "custom-report-booking-requests-2026-03-14.csv" {
		t.Errorf("filename = %q", name)
	}
}
