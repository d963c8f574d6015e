package export

import (
	"fmt"
	"strings"

	"github.com/sithum-sy/hireme-sub001/internal/domain"
)

const htmlMIME = "text/html;charset=utf-8"

// HTML renders the result into a self-contained, print-ready document:
// title, metadata block, a table with label+type headers, and a footer
// noting partial results when the page is smaller than the total. Cell
// values follow the CSV rendering rules minus CSV escaping.
func (e Engine) HTML(res *domain.Result, spec domain.Spec, src domain.DataSource) (Artifact, error) {
	if res == nil {
		return Artifact{}, ErrNothingToExport
	}
	var b strings.Builder
	title := fmt.Sprintf("Custom Report - %s", src.DisplayName)
	b.WriteString("<!doctype html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\"/>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", title)
	b.WriteString(`<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; }
.meta { margin: 1rem 0; font-size: 0.9rem; color: #555; }
.meta div { margin: 0.15rem 0; }
table { border-collapse: collapse; width: 100%; font-size: 0.85rem; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f3f3f3; }
th small { display: block; font-weight: normal; color: #777; }
footer { margin-top: 1rem; font-size: 0.8rem; color: #777; }
@media print { body { margin: 0.5rem; } }
</style>
`)
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", title)
	b.WriteString("<div class=\"meta\">\n")
	fmt.Fprintf(&b, "<div>Generated: %s</div>\n", e.now().UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "<div>Data Source: %s</div>\n", src.DisplayName)
	fmt.Fprintf(&b, "<div>Total Records: %d</div>\n", res.Pagination.Total)
	fmt.Fprintf(&b, "<div>Filters Applied: %d</div>\n", res.Meta.FiltersApplied)
	fmt.Fprintf(&b, "<div>Fields: %d</div>\n", len(spec.SelectedFields))
	b.WriteString("</div>\n<table>\n<thead>\n<tr>")
	for _, key := range spec.SelectedFields {
		ftype := domain.TypeUnknown
		if f, ok := src.Fields[key]; ok {
			ftype = f.Type
		}
		fmt.Fprintf(&b, "<th>%s<small>%s</small></th>", labelFor(src, key), ftype)
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, row := range res.Results {
		b.WriteString("<tr>")
		for _, key := range spec.SelectedFields {
			fmt.Fprintf(&b, "<td>%s</td>", cellText(row[key]))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
	if shown := len(res.Results); res.Pagination.Total > shown {
		fmt.Fprintf(&b, "<footer>Showing %d of %d records.</footer>\n", shown, res.Pagination.Total)
	}
	b.WriteString("</body>\n</html>\n")
	return Artifact{
		Filename: e.filename(src, "html"),
		MIME:     htmlMIME,
		Content:  []byte(b.String()),
	}, nil
}

// Print renders the printable document and hands it to the viewer. A viewer
// failure is surfaced as ErrViewerUnavailable, never swallowed.
func (e Engine) Print(res *domain.Result, spec domain.Spec, src domain.DataSource, v Viewer) (Artifact, error) {
	doc, err := e.HTML(res, spec, src)
	if err != nil {
		return Artifact{}, err
	}
	if v == nil {
		return Artifact{}, fmt.Errorf("%w: no viewer configured", ErrViewerUnavailable)
	}
	if err := v.View(doc); err != nil {
		return Artifact{}, fmt.Errorf("%w: %v", ErrViewerUnavailable, err)
	}
	return doc, nil
}
