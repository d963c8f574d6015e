package query

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sithum-sy/hireme-sub001/internal/domain"
)

var ErrNotFound = errors.New("not found")

// InsertExport records a generated export artifact. Draft specifications are
// never persisted; their exports are.
func (s Store) InsertExport(ctx context.Context, rec domain.ExportRecord) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO exports(id,data_source,format,filename,row_count,created_by,created_at) VALUES (?,?,?,?,?,?,?)`,
		rec.ID, rec.DataSource, rec.Format, rec.Filename, rec.RowCount, nullable(rec.CreatedBy), rec.CreatedAt)
	return err
}

// GetExport fetches one export record by id.
func (s Store) GetExport(ctx context.Context, id string) (domain.ExportRecord, error) {
	var (
		rec domain.ExportRecord
		by  sql.NullString
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id,data_source,format,filename,row_count,created_by,created_at FROM exports WHERE id=?`, id).
		Scan(&rec.ID, &rec.DataSource, &rec.Format, &rec.Filename, &rec.RowCount, &by, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return rec, ErrNotFound
	}
	if by.Valid {
		rec.CreatedBy = by.String
	}
	return rec, err
}

// ListExports returns recorded exports, newest first.
func (s Store) ListExports(ctx context.Context, limit int) ([]domain.ExportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id,data_source,format,filename,row_count,created_by,created_at FROM exports ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.ExportRecord{}
	for rows.Next() {
		var (
			rec domain.ExportRecord
			by  sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.DataSource, &rec.Format, &rec.Filename, &rec.RowCount, &by, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if by.Valid {
			rec.CreatedBy = by.String
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
