package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	appinvoices "github.com/aydinholding/report-service/internal/application/invoices"
	"github.com/aydinholding/report-service/internal/config"
	dominvoices "github.com/aydinholding/report-service/internal/domain/invoices"
	mysqlp "github.com/aydinholding/report-service/internal/infra/db/mysql"
	postgresp "github.com/aydinholding/report-service/internal/infra/db/postgres"
	"github.com/aydinholding/report-service/internal/infra/scraper"
)

// Standalone invoice scraper. Runs one portal session and exits, intended
// to be driven by cron.
func main() {
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if cfg.Portal.LoginURL == "" || cfg.Portal.ListURL == "" {
		log.Fatal("portal urls not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var (
		db   *sql.DB
		repo dominvoices.Repository
	)
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		repo = mysqlp.NewInvoiceRepository(db)
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		repo = postgresp.NewInvoiceRepository(db)
	default:
		log.Fatalf("scraper requires a database driver, got %q", cfg.Database.Driver)
	}
	defer db.Close()

	svc := &appinvoices.Service{
		Repo: repo,
		Scraper: scraper.New(
			cfg.Portal.LoginURL,
			cfg.Portal.ListURL,
			cfg.Portal.Username,
			cfg.Portal.Password,
			cfg.Portal.MaxPages,
		),
	}

	res, err := svc.Run(ctx)
	if err != nil {
		log.Fatalf("scrape run failed: %v", err)
	}

	log.Printf("scrape done: %d new invoices over %d pages, %d row errors",
		len(res.NewInvoiceIDs), res.PagesVisited, res.RowErrors)
	for _, id := range res.NewInvoiceIDs {
		log.Printf("new invoice: %s", id)
	}
}
