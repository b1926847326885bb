package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jlchiang/tutorbase/internal/domain/billing"
	"github.com/jlchiang/tutorbase/internal/repository"
)

// InvoiceRepository implements invoice persistence for SQLite
type InvoiceRepository struct {
	db *DB
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(db *DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create inserts an invoice. The aggregator preallocates IDs, so an ID is
// only assigned here when none is set.
func (r *InvoiceRepository) Create(ctx context.Context, inv *billing.Invoice) error {
	if inv.ID == 0 {
		id, err := r.db.nextID("invoices")
		if err != nil {
			return err
		}
		inv.ID = id
	}

	query := `
		INSERT INTO invoices (id, student_id, total_amount, created_at, is_paid, period)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		inv.ID,
		inv.StudentID,
		inv.TotalAmount,
		inv.CreatedAt,
		inv.IsPaid,
		inv.Period,
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// Get retrieves an invoice by ID
func (r *InvoiceRepository) Get(ctx context.Context, id int64) (*billing.Invoice, error) {
	query := `
		SELECT id, student_id, total_amount, created_at, is_paid, period
		FROM invoices
		WHERE id = ?
	`

	var inv billing.Invoice
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&inv.ID,
		&inv.StudentID,
		&inv.TotalAmount,
		&inv.CreatedAt,
		&inv.IsPaid,
		&inv.Period,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &inv, nil
}

// List returns all invoices
func (r *InvoiceRepository) List(ctx context.Context) ([]billing.Invoice, error) {
	query := `
		SELECT id, student_id, total_amount, created_at, is_paid, period
		FROM invoices
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []billing.Invoice
	for rows.Next() {
		var inv billing.Invoice
		if err := rows.Scan(
			&inv.ID,
			&inv.StudentID,
			&inv.TotalAmount,
			&inv.CreatedAt,
			&inv.IsPaid,
			&inv.Period,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// Update rewrites an invoice
func (r *InvoiceRepository) Update(ctx context.Context, inv *billing.Invoice) error {
	query := `
		UPDATE invoices
		SET student_id = ?, total_amount = ?, created_at = ?, is_paid = ?, period = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		inv.StudentID,
		inv.TotalAmount,
		inv.CreatedAt,
		inv.IsPaid,
		inv.Period,
		inv.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
