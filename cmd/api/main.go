package main

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/aydinholding/report-service/internal/application"
	appinvoices "github.com/aydinholding/report-service/internal/application/invoices"
	appreports "github.com/aydinholding/report-service/internal/application/reports"
	"github.com/aydinholding/report-service/internal/config"
	dominvoices "github.com/aydinholding/report-service/internal/domain/invoices"
	domain "github.com/aydinholding/report-service/internal/domain/projects"
	openaiclient "github.com/aydinholding/report-service/internal/infra/ai/openai"
	mysqlp "github.com/aydinholding/report-service/internal/infra/db/mysql"
	postgresp "github.com/aydinholding/report-service/internal/infra/db/postgres"
	"github.com/aydinholding/report-service/internal/infra/httpserver"
	"github.com/aydinholding/report-service/internal/infra/mailer"
	"github.com/aydinholding/report-service/internal/infra/pdf"
	"github.com/aydinholding/report-service/internal/infra/render"
	minioStore "github.com/aydinholding/report-service/internal/infra/storage"
	"github.com/aydinholding/report-service/internal/infra/store"
	"github.com/aydinholding/report-service/internal/middleware"
)

func main() {
	// .env is optional, real deployments use environment variables
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// init project store
	repo, err := store.New(cfg.Storage.ProjectsDir, cfg.Storage.ReportsDir)
	if err != nil {
		log.Fatalf("store init error: %v", err)
	}

	// invoice database is optional: the report service runs without it
	var (
		db          *sql.DB
		invoiceRepo dominvoices.Repository
	)
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		invoiceRepo = mysqlp.NewInvoiceRepository(db)
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		invoiceRepo = postgresp.NewInvoiceRepository(db)
	case "":
		log.Println("no database driver configured, invoice endpoints disabled")
	default:
		log.Fatalf("unknown database driver %q", cfg.Database.Driver)
	}
	if db != nil {
		defer db.Close()
	}

	// init minio mirror (optional)
	var mirror domain.ArtifactMirror
	if cfg.Minio.Enabled {
		m, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		mirror = m
	}

	// init ai client
	ai := openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	// init renderer
	palettes := make(map[string]render.Palette, len(cfg.Style.Palettes))
	for name, p := range cfg.Style.Palettes {
		palettes[name] = render.Palette{
			Primary:    p.Primary,
			Secondary:  p.Secondary,
			Accent:     p.Accent,
			Background: p.Background,
			Text:       p.Text,
		}
	}
	renderer, err := render.NewHTMLRenderer(ai, palettes,
		loadDataURI(cfg.Style.LogoPath),
		loadDataURI(cfg.Style.BackgroundPath),
	)
	if err != nil {
		log.Fatalf("renderer init error: %v", err)
	}

	// init pdf engine (headless chrome)
	engine, err := pdf.New(cfg.Style.StylesheetPath)
	if err != nil {
		log.Fatalf("pdf engine init error: %v", err)
	}
	defer engine.Close()

	// init services
	reportsSvc := &appreports.Service{
		Repo:       repo,
		Assets:     repo,
		Drafter:    ai,
		Renderer:   renderer,
		PDF:        engine,
		Mailer:     mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From),
		Mirror:     mirror,
		Clock:      application.SystemClock{},
		Recipients: cfg.RecipientsFor,
	}
	var invoicesSvc *appinvoices.Service
	if invoiceRepo != nil {
		invoicesSvc = &appinvoices.Service{Repo: invoiceRepo}
	}

	// health checks
	health := map[string]middleware.HealthChecker{
		"storage": &middleware.StorageHealthChecker{Dir: cfg.Storage.ProjectsDir},
	}
	if db != nil {
		health["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(reportsSvc, invoicesSvc, cfg.Server.APIKey, health))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // generation waits on the model
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// loadDataURI inlines a static asset as a data URI, empty path or read
// failure yields the empty string and the renderer simply omits it.
func loadDataURI(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("static asset %s not loaded: %v", path, err)
		return ""
	}
	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		mt = "image/png"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data)
}
