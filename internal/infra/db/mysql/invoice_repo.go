package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/aydinholding/report-service/internal/domain/invoices"
)

type InvoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Save upserts one scraped invoice row.
func (r *InvoiceRepository) Save(ctx context.Context, inv *domain.Invoice) error {
	const q = `
INSERT INTO invoices
  (id, number, ettn, issue_date, due_date, supplier, amount, tax_amount, doc_type, status, scraped_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  number=VALUES(number), ettn=VALUES(ettn), issue_date=VALUES(issue_date),
  due_date=VALUES(due_date), supplier=VALUES(supplier), amount=VALUES(amount),
  tax_amount=VALUES(tax_amount), doc_type=VALUES(doc_type), status=VALUES(status);
`
	scrapedAt := inv.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		inv.ID,
		stringOrDash(inv.Number),
		inv.ETTN,
		inv.IssueDate,
		inv.DueDate,
		stringOrDash(inv.Supplier),
		inv.Amount,
		inv.TaxAmount,
		inv.DocType,
		inv.Status,
		scrapedAt,
	)
	return err
}

// KnownIDs returns the processed-id set for scrape deduplication.
func (r *InvoiceRepository) KnownIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM invoices;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	known := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		known[id] = true
	}
	return known, rows.Err()
}

// Latest returns the most recently scraped invoices.
func (r *InvoiceRepository) Latest(ctx context.Context, limit int) ([]*domain.Invoice, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, number, ettn, issue_date, due_date, supplier, amount, tax_amount, doc_type, status, scraped_at
FROM invoices
ORDER BY scraped_at DESC, id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Invoice
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.Number, &inv.ETTN, &inv.IssueDate, &inv.DueDate,
			&inv.Supplier, &inv.Amount, &inv.TaxAmount, &inv.DocType, &inv.Status, &inv.ScrapedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &inv)
	}
	return out, rows.Err()
}
