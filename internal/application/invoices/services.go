package invoices

import (
	"context"
	"log"

	domain "github.com/aydinholding/report-service/internal/domain/invoices"
)

// Service orchestrates one scrape run: load the processed-id set, drive the
// portal session, persist the new rows.
type Service struct {
	Repo    domain.Repository
	Scraper domain.Scraper
}

// Run performs a full scrape against the processed-id set from the
// repository. Per-row save failures are logged and skipped; the row stays
// unsaved and will be picked up by the next run.
func (s *Service) Run(ctx context.Context) (*domain.ScrapeResult, error) {
	known, err := s.Repo.KnownIDs(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.Scraper.Scrape(ctx, known)
	if err != nil {
		return nil, err
	}
	saved := res.Invoices[:0]
	ids := res.NewInvoiceIDs[:0]
	for _, inv := range res.Invoices {
		if err := s.Repo.Save(ctx, inv); err != nil {
			log.Printf("invoices: save %s: %v", inv.ID, err)
			continue
		}
		saved = append(saved, inv)
		ids = append(ids, inv.ID)
	}
	res.Invoices = saved
	res.NewInvoiceIDs = ids
	return res, nil
}

// Latest returns the most recently scraped invoices.
func (s *Service) Latest(ctx context.Context, limit int) ([]*domain.Invoice, error) {
	return s.Repo.Latest(ctx, limit)
}
