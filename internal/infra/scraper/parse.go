package scraper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	domain "github.com/aydinholding/report-service/internal/domain/invoices"
)

// rowFields is the fixed column layout of the portal listing table.
const rowFields = 10

// parseRow converts one listing row's cell texts into an invoice record.
// Cell order: id, number, ettn, issue date, due date, supplier, amount,
// tax, document type, status.
func parseRow(cells []string) (*domain.Invoice, error) {
	if len(cells) < rowFields {
		return nil, fmt.Errorf("expected %d cells, got %d", rowFields, len(cells))
	}
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	if cells[0] == "" {
		return nil, fmt.Errorf("row has empty invoice id")
	}

	issue, err := parseDate(cells[3])
	if err != nil {
		return nil, fmt.Errorf("issue date: %w", err)
	}
	due, err := parseDate(cells[4])
	if err != nil {
		return nil, fmt.Errorf("due date: %w", err)
	}
	amount, err := parseAmount(cells[6])
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	tax, err := parseAmount(cells[7])
	if err != nil {
		return nil, fmt.Errorf("tax: %w", err)
	}

	return &domain.Invoice{
		ID:        cells[0],
		Number:    cells[1],
		ETTN:      cells[2],
		IssueDate: issue,
		DueDate:   due,
		Supplier:  cells[5],
		Amount:    amount,
		TaxAmount: tax,
		DocType:   cells[8],
		Status:    cells[9],
	}, nil
}

// dedupNew filters parsed rows down to the ones not already persisted by an
// earlier run (processed) or collected from an earlier page (seen). seen is
// updated in place so the caller can carry it across pages.
func dedupNew(rows []*domain.Invoice, processed, seen map[string]bool) []*domain.Invoice {
	var out []*domain.Invoice
	for _, inv := range rows {
		if processed[inv.ID] || seen[inv.ID] {
			continue
		}
		seen[inv.ID] = true
		out = append(out, inv)
	}
	return out
}

// parseAmount normalizes portal number formatting: thousands dots are
// dropped, the decimal comma becomes a dot, currency text is stripped.
// "1.234,56 TL" → 1234.56
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "TL")
	s = strings.TrimSuffix(s, "₺")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q", s)
	}
	return v, nil
}

var dateLayouts = []string{"02.01.2006", "02/01/2006", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed date %q", s)
}
