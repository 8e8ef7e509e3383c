package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	domain "github.com/aydinholding/report-service/internal/domain/invoices"
)

// Listing table locators. The portal switched markup once already; the
// fallback keeps the scraper alive when the primary selector misses.
const (
	tableSelector         = "table.invoice-list tbody"
	tableFallbackSelector = "#invoiceGrid table tbody"
	rowSelector           = "tr"
	nextSelector          = "a.pagination-next, button.pagination-next"

	elementTimeout = 20 * time.Second
)

// Portal drives the supplier portal through a headless browser session.
type Portal struct {
	LoginURL string
	ListURL  string
	Username string
	Password string
	MaxPages int
}

func New(loginURL, listURL, username, password string, maxPages int) *Portal {
	if maxPages <= 0 {
		maxPages = 10
	}
	return &Portal{
		LoginURL: loginURL,
		ListURL:  listURL,
		Username: username,
		Password: password,
		MaxPages: maxPages,
	}
}

// Scrape logs in, paginates the listing and collects rows not yet in
// processed. Row and page failures are logged and skipped; only a failure
// to authenticate or to reach the listing table aborts the run. The browser
// session is always torn down, whatever path the scrape takes.
func (p *Portal) Scrape(ctx context.Context, processed map[string]bool) (*domain.ScrapeResult, error) {
	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		browser.Close()
		l.Cleanup()
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	page = page.Context(ctx)

	if err := p.login(page); err != nil {
		return nil, fmt.Errorf("portal login: %w", err)
	}

	if err := page.Navigate(p.ListURL); err != nil {
		return nil, fmt.Errorf("navigate listing: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	table, err := waitTable(page)
	if err != nil {
		return nil, fmt.Errorf("listing table: %w", err)
	}

	res := &domain.ScrapeResult{}
	seen := make(map[string]bool)
	for pageNo := 1; pageNo <= p.MaxPages; pageNo++ {
		res.PagesVisited = pageNo
		p.collectPage(table, processed, seen, res)

		ok, err := p.nextPage(page)
		if err != nil {
			log.Printf("scraper: pagination after page %d failed, stopping: %v", pageNo, err)
			break
		}
		if !ok {
			break
		}
		table, err = waitTable(page)
		if err != nil {
			log.Printf("scraper: table missing on page %d, stopping: %v", pageNo+1, err)
			break
		}
	}

	for _, inv := range res.Invoices {
		res.NewInvoiceIDs = append(res.NewInvoiceIDs, inv.ID)
	}
	return res, nil
}

func (p *Portal) login(page *rod.Page) error {
	if err := page.Navigate(p.LoginURL); err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		return err
	}
	user, err := page.Timeout(elementTimeout).Element(`input[name="username"], input[type="email"]`)
	if err != nil {
		return fmt.Errorf("username field: %w", err)
	}
	if err := user.Input(p.Username); err != nil {
		return err
	}
	pass, err := page.Element(`input[name="password"], input[type="password"]`)
	if err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	if err := pass.Input(p.Password); err != nil {
		return err
	}
	submit, err := page.Element(`button[type="submit"], input[type="submit"]`)
	if err != nil {
		return fmt.Errorf("submit button: %w", err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	return page.WaitLoad()
}

// waitTable tries the primary locator first, then the fallback.
func waitTable(page *rod.Page) (*rod.Element, error) {
	el, err := page.Timeout(elementTimeout).Element(tableSelector)
	if err == nil {
		return el, nil
	}
	el, ferr := page.Timeout(elementTimeout).Element(tableFallbackSelector)
	if ferr == nil {
		return el, nil
	}
	return nil, fmt.Errorf("primary: %v, fallback: %v", err, ferr)
}

// collectPage parses every row of the current table. Per-row failures are
// logged and counted, never fatal.
func (p *Portal) collectPage(table *rod.Element, processed, seen map[string]bool, res *domain.ScrapeResult) {
	rows, err := table.Elements(rowSelector)
	if err != nil {
		log.Printf("scraper: read rows: %v", err)
		res.RowErrors++
		return
	}
	parsed := make([]*domain.Invoice, 0, len(rows))
	for _, row := range rows {
		inv, err := parseRowElement(row)
		if err != nil {
			log.Printf("scraper: skip row: %v", err)
			res.RowErrors++
			continue
		}
		parsed = append(parsed, inv)
	}
	now := time.Now()
	for _, inv := range dedupNew(parsed, processed, seen) {
		inv.ScrapedAt = now
		res.Invoices = append(res.Invoices, inv)
	}
}

// parseRowElement extracts cell texts positionally. Cells wrapping their
// value in a span still resolve through Text().
func parseRowElement(row *rod.Element) (*domain.Invoice, error) {
	cells, err := row.Elements("td")
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(cells))
	for _, c := range cells {
		t, err := c.Text()
		if err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	return parseRow(texts)
}

// nextPage clicks the pagination control; a disabled or absent control ends
// the scrape.
func (p *Portal) nextPage(page *rod.Page) (bool, error) {
	has, btn, err := page.Has(nextSelector)
	if err != nil {
		return false, err
	}
	if !has {
		return false, nil
	}
	if attr, _ := btn.Attribute("disabled"); attr != nil {
		return false, nil
	}
	if cls, _ := btn.Attribute("class"); cls != nil && strings.Contains(*cls, "disabled") {
		return false, nil
	}
	if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, err
	}
	if err := page.WaitLoad(); err != nil {
		return false, err
	}
	return true, nil
}
