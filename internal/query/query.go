// Package query executes report requests against the marketplace tables.
// Source and field names are whitelisted through the catalog before they
// reach SQL text; values always travel as bind parameters.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sithum-sy/hireme-sub001/internal/catalog"
	"github.com/sithum-sy/hireme-sub001/internal/domain"
	"github.com/sithum-sy/hireme-sub001/internal/report"
)

const (
	defaultPerPage = 50
	maxPerPage     = 100
)

// Store runs report queries over the backing database.
type Store struct {
	DB  *sql.DB
	Now func() time.Time
}

func (s Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Execute runs the request and returns one result page. The request is
// expected to be pre-filtered to complete filter rows; incomplete rows that
// slip through are dropped here as well rather than rejected.
func (s Store) Execute(ctx context.Context, spec domain.Spec) (domain.Result, error) {
	src, ok := catalog.Get(spec.DataSource)
	if !ok {
		return domain.Result{}, fmt.Errorf("unknown data source %q", spec.DataSource)
	}
	if len(spec.SelectedFields) == 0 {
		return domain.Result{}, fmt.Errorf("no fields selected")
	}
	for _, f := range spec.SelectedFields {
		if !src.Has(f) {
			return domain.Result{}, fmt.Errorf("unknown field %q for data source %q", f, spec.DataSource)
		}
	}

	where, args, applied, err := buildWhere(src, spec.CompleteFilters())
	if err != nil {
		return domain.Result{}, err
	}

	var total int
	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, src.Key, where)
	if err := s.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return domain.Result{}, fmt.Errorf("count rows: %w", err)
	}

	page := spec.Pagination.Page
	if page < 1 {
		page = 1
	}
	perPage := spec.Pagination.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	offset := (page - 1) * perPage

	selectSQL := fmt.Sprintf(`SELECT %s FROM %s%s%s LIMIT ? OFFSET ?`,
		strings.Join(spec.SelectedFields, ","), src.Key, where, buildOrder(src, spec.Sorting))
	rows, err := s.DB.QueryContext(ctx, selectSQL, append(append([]any{}, args...), perPage, offset)...)
	if err != nil {
		return domain.Result{}, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	results := []domain.Row{}
	for rows.Next() {
		values := make([]any, len(spec.SelectedFields))
		ptrs := make([]any, len(values))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return domain.Result{}, fmt.Errorf("scan row: %w", err)
		}
		row := domain.Row{}
		for i, key := range spec.SelectedFields {
			row[key] = coerce(src.Fields[key].Type, values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return domain.Result{}, err
	}

	from, to := 0, 0
	if len(results) > 0 {
		from = offset + 1
		to = offset + len(results)
	}
	return domain.Result{
		Results: results,
		Pagination: domain.PageInfo{
			From:        from,
			To:          to,
			Total:       total,
			PerPage:     perPage,
			CurrentPage: page,
		},
		Meta: domain.Meta{
			FiltersApplied: applied,
			GeneratedAt:    s.now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// buildWhere translates complete filter rows into a WHERE clause. Operators
// are checked against the catalog for the field's type; an illegal pairing
// is an execution error, not a silent drop.
func buildWhere(src domain.DataSource, filters []domain.Filter) (string, []any, int, error) {
	var (
		preds   []string
		args    []any
		applied int
	)
	for _, f := range filters {
		if !f.Complete() {
			continue
		}
		field, ok := src.Fields[f.Field]
		if !ok {
			return "", nil, 0, fmt.Errorf("unknown filter field %q", f.Field)
		}
		if !report.LegalOperator(field.Type, f.Operator) {
			return "", nil, 0, fmt.Errorf("operator %q is not valid for field %q (%s)", f.Operator, f.Field, field.Type)
		}
		pred, predArgs, err := predicate(f.Field, field.Type, f.Operator, f.Value)
		if err != nil {
			return "", nil, 0, err
		}
		preds = append(preds, pred)
		args = append(args, predArgs...)
		applied++
	}
	if len(preds) == 0 {
		return "", nil, 0, nil
	}
	return " WHERE " + strings.Join(preds, " AND "), args, applied, nil
}

func predicate(col string, t domain.FieldType, op, value string) (string, []any, error) {
	switch op {
	case report.OpEquals:
		return col + " = ?", []any{bind(t, value)}, nil
	case report.OpNotEquals:
		return col + " != ?", []any{bind(t, value)}, nil
	case report.OpContains:
		return col + " LIKE '%' || ? || '%'", []any{value}, nil
	case report.OpNotContains:
		return col + " NOT LIKE '%' || ? || '%'", []any{value}, nil
	case report.OpStartsWith:
		return col + " LIKE ? || '%'", []any{value}, nil
	case report.OpEndsWith:
		return col + " LIKE '%' || ?", []any{value}, nil
	case report.OpGreaterThan:
		return col + " > ?", []any{bind(t, value)}, nil
	case report.OpLessThan:
		return col + " < ?", []any{bind(t, value)}, nil
	case report.OpBetween:
		parts := splitList(value)
		if len(parts) != 2 {
			return "", nil, fmt.Errorf("between on %q needs two comma-separated values", col)
		}
		return col + " BETWEEN ? AND ?", []any{bind(t, parts[0]), bind(t, parts[1])}, nil
	case report.OpIn, report.OpNotIn:
		parts := splitList(value)
		if len(parts) == 0 {
			return "", nil, fmt.Errorf("%s on %q needs at least one value", op, col)
		}
		marks := strings.TrimRight(strings.Repeat("?,", len(parts)), ",")
		args := make([]any, len(parts))
		for i, p := range parts {
			args[i] = p
		}
		kw := "IN"
		if op == report.OpNotIn {
			kw = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", col, kw, marks), args, nil
	default:
		return "", nil, fmt.Errorf("unsupported operator %q", op)
	}
}

// bind coerces the wire string to the column's storage type. Boolean columns
// are stored as 0/1 integers; everything else binds as text and lets SQLite
// affinity handle numerics and dates.
func bind(t domain.FieldType, value string) any {
	if t == domain.TypeBoolean {
		if value == "1" || strings.EqualFold(value, "true") {
			return 1
		}
		return 0
	}
	return value
}

func splitList(value string) []string {
	var parts []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// buildOrder renders ORDER BY from the sort rules. Rules with an empty or
// unknown field are skipped: stale rules referencing deselected fields are a
// legitimate draft state and must not fail the whole query.
func buildOrder(src domain.DataSource, sorting []domain.Sort) string {
	var keys []string
	for _, rule := range sorting {
		if rule.Field == "" || !src.Has(rule.Field) {
			continue
		}
		dir := "ASC"
		if strings.EqualFold(rule.Direction, "desc") {
			dir = "DESC"
		}
		keys = append(keys, rule.Field+" "+dir)
	}
	if len(keys) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(keys, ", ")
}

// coerce maps a scanned driver value back to the wire representation the
// catalog promises for the field type.
func coerce(t domain.FieldType, v any) any {
	if v == nil {
		return nil
	}
	switch t {
	case domain.TypeBoolean:
		switch n := v.(type) {
		case int64:
			return n != 0
		case bool:
			return n
		}
		return v
	case domain.TypeInteger:
		return v
	case domain.TypeDecimal:
		return v
	default:
		if b, ok := v.([]byte); ok {
			return string(b)
		}
		return v
	}
}

// FieldOptions returns the selectable values for a (source, field) pair:
// declared options for enum fields, distinct non-null column values for the
// free-text fields the name heuristic promotes to selectors.
func (s Store) FieldOptions(ctx context.Context, source, field string) ([]domain.Option, error) {
	src, ok := catalog.Get(source)
	if !ok {
		return nil, fmt.Errorf("unknown data source %q", source)
	}
	f, ok := src.Fields[field]
	if !ok {
		return nil, fmt.Errorf("unknown field %q for data source %q", field, source)
	}
	if f.Type == domain.TypeEnum {
		return report.EnumOptions(f), nil
	}
	rows, err := s.DB.QueryContext(ctx,
		fmt.Sprintf(`SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY %s`, field, src.Key, field, field))
	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", source, field, err)
	}
	defer rows.Close()
	opts := []domain.Option{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		opts = append(opts, domain.Option{Value: v, Label: v})
	}
	return opts, rows.Err()
}
