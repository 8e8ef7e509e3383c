package invoices

import "context"

// Repository port for persisting scraped invoices.
type Repository interface {
	Save(ctx context.Context, inv *Invoice) error
	KnownIDs(ctx context.Context) (map[string]bool, error)
	Latest(ctx context.Context, limit int) ([]*Invoice, error)
}

// Scraper port for the portal browser session.
type Scraper interface {
	// Scrape logs in, paginates the listing and returns rows whose ids are
	// not in processed. Row and page failures are logged, not fatal.
	Scrape(ctx context.Context, processed map[string]bool) (*ScrapeResult, error)
}
