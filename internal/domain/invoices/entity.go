package invoices

import "time"

// Invoice is one row scraped from the supplier portal listing.
type Invoice struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	ETTN       string    `json:"ettn"`
	IssueDate  time.Time `json:"issue_date"`
	DueDate    time.Time `json:"due_date"`
	Supplier   string    `json:"supplier"`
	Amount     float64   `json:"amount"`
	TaxAmount  float64   `json:"tax_amount"`
	DocType    string    `json:"doc_type"`
	Status     string    `json:"status"`
	ScrapedAt  time.Time `json:"scraped_at"`
}

// ScrapeResult summarizes one scrape run.
type ScrapeResult struct {
	Invoices      []*Invoice `json:"invoices"`
	NewInvoiceIDs []string   `json:"new_invoice_ids"`
	PagesVisited  int        `json:"pages_visited"`
	RowErrors     int        `json:"row_errors"`
}
