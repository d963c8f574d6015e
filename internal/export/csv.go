package export

import (
	"strings"

	"github.com/sithum-sy/hireme-sub001/internal/domain"
)

const csvMIME = "text/csv;charset=utf-8"

// escapeCSV wraps a value in double quotes, doubling internal quotes, when
// it contains a comma, quote, or newline. Other values pass through bare.
func escapeCSV(v string) string {
	if strings.ContainsAny(v, ",\"\n") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

// CSV renders the result into a downloadable CSV artifact. The header row is
// the selected fields' labels in selection order; data rows follow result
// order. Nil cells are emitted as empty quoted fields, objects as JSON,
// booleans as Yes/No.
func (e Engine) CSV(res *domain.Result, spec domain.Spec, src domain.DataSource) (Artifact, error) {
	if res == nil {
		return Artifact{}, ErrNothingToExport
	}
	var b strings.Builder
	headers := make([]string, len(spec.SelectedFields))
	for i, key := range spec.SelectedFields {
		headers[i] = escapeCSV(labelFor(src, key))
	}
	b.WriteString(strings.Join(headers, ","))
	b.WriteString("\n")
	for _, row := range res.Results {
		cells := make([]string, len(spec.SelectedFields))
		for i, key := range spec.SelectedFields {
			v := row[key]
			if v == nil {
				cells[i] = `""`
				continue
			}
			cells[i] = escapeCSV(domain.CellString(v))
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}
	return Artifact{
		Filename: e.filename(src, "csv"),
		MIME:     csvMIME,
		Content:  []byte(b.String()),
	}, nil
}
