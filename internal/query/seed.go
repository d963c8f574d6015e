package query

import (
	"context"
	"database/sql"
	"fmt"
)

// Seed inserts a small demo dataset so a fresh workspace has something to
// report on. Idempotent: a non-empty services table is left alone.
func Seed(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM services`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	services := [][]any{
		{"Deep Home Cleaning", "Full house cleaning with supplies included", "home_cleaning", "Sparkle Crew", 120.0, 4.8, 230, 1, "2025-11-03T09:15:00Z"},
		{"Pipe Leak Repair", "Emergency and scheduled plumbing repairs", "plumbing", "FlowFix", 85.0, 4.5, 180, 1, "2025-12-18T14:02:00Z"},
		{"Garden Makeover", "Lawn care, pruning and seasonal planting", "gardening", "GreenThumb Co", 200.0, 4.9, 95, 1, "2026-01-22T11:40:00Z"},
		{"Wiring Inspection", "Residential electrical safety inspection", "electrical", "VoltSafe", 150.0, nil, 40, 0, "2026-02-10T08:30:00Z"},
		{"Math Tutoring", "High-school mathematics, online or in person", "tutoring", "BrightMinds", 45.0, 4.7, 310, 1, "2026-03-05T16:20:00Z"},
	}
	for _, s := range services {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO services(title,description,category_name,provider_name,base_price,rating,views_count,is_active,created_at) VALUES (?,?,?,?,?,?,?,?,?)`, s...); err != nil {
			return fmt.Errorf("seed services: %w", err)
		}
	}

	bookings := [][]any{
		{"Deep Home Cleaning", "Amara Perera", "Sparkle Crew", "completed", 120.0, "2026-04-02", nil, "2026-03-28T10:00:00Z"},
		{"Pipe Leak Repair", "Nuwan Silva", "FlowFix", "confirmed", 85.0, "2026-05-14", "Kitchen sink", "2026-05-10T12:30:00Z"},
		{"Math Tutoring", "Ishara Fernando", "BrightMinds", "pending", 45.0, "2026-06-01", nil, "2026-05-25T09:45:00Z"},
		{"Garden Makeover", "Kasun Jayawardena", "GreenThumb Co", "cancelled_by_client", 200.0, "2026-04-20", "Rescheduling", "2026-04-11T15:10:00Z"},
	}
	for _, b := range bookings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bookings(service_title,customer_name,provider_name,status,total_amount,booking_date,notes,created_at) VALUES (?,?,?,?,?,?,?,?)`, b...); err != nil {
			return fmt.Errorf("seed bookings: %w", err)
		}
	}

	providers := [][]any{
		{"Sparkle Crew", "hello@sparklecrew.example", "Professional cleaning team", 1, 3, 4.8, "2025-09-12T08:00:00Z"},
		{"FlowFix", "support@flowfix.example", nil, 1, 2, 4.5, "2025-10-01T08:00:00Z"},
		{"GreenThumb Co", "info@greenthumb.example", "Landscaping specialists", 0, 1, 4.9, "2026-01-05T08:00:00Z"},
		{"BrightMinds", "teach@brightminds.example", nil, 1, 4, 4.7, "2026-02-20T08:00:00Z"},
	}
	for _, p := range providers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO providers(name,email,bio,is_verified,services_count,rating,created_at) VALUES (?,?,?,?,?,?,?)`, p...); err != nil {
			return fmt.Errorf("seed providers: %w", err)
		}
	}

	categories := [][]any{
		{"home_cleaning", "Residential and office cleaning", 3, 1, "2025-08-01T08:00:00Z"},
		{"plumbing", "Plumbing installation and repair", 2, 1, "2025-08-01T08:00:00Z"},
		{"electrical", "Electrical work and inspections", 1, 1, "2025-08-01T08:00:00Z"},
		{"gardening", "Garden and landscape services", 1, 1, "2025-08-01T08:00:00Z"},
		{"tutoring", "Private tutoring", 4, 1, "2025-08-01T08:00:00Z"},
		{"beauty", "Beauty and wellness", 0, 0, "2025-08-01T08:00:00Z"},
	}
	for _, c := range categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories(name,description,services_count,is_active,created_at) VALUES (?,?,?,?,?)`, c...); err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
	}
	return tx.Commit()
}
