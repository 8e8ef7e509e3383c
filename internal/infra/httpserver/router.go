package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appinvoices "github.com/aydinholding/report-service/internal/application/invoices"
	appreports "github.com/aydinholding/report-service/internal/application/reports"
	domai "github.com/aydinholding/report-service/internal/domain/ai"
	domain "github.com/aydinholding/report-service/internal/domain/projects"
	"github.com/aydinholding/report-service/internal/middleware"
)

// maxUploadBytes caps a single asset upload.
const maxUploadBytes = 20 << 20

type Router struct {
	reportsSvc  *appreports.Service
	invoicesSvc *appinvoices.Service
}

func NewRouter(reportsSvc *appreports.Service, invoicesSvc *appinvoices.Service, apiKey string, health map[string]middleware.HealthChecker) http.Handler {
	r := &Router{reportsSvc: reportsSvc, invoicesSvc: invoicesSvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(60, 2))
	mux.Use(middleware.APIKeyAuth(apiKey))

	mux.Get("/health", middleware.HealthHandler(health))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Get("/projects", r.wrap(r.handleListProjects))
	mux.Get("/components", r.wrap(r.handleComponents))
	mux.Post("/project/create-report", r.wrap(r.handleCreateReport))
	mux.Post("/component/save-data", r.wrap(r.handleSaveComponentData))
	mux.Post("/project/generate-report", r.wrap(r.handleGenerateReport))
	mux.Post("/project/finalize-report", r.wrap(r.handleFinalizeReport))
	mux.Get("/download-report/{name}", r.wrap(r.handleDownloadReport))

	mux.Route("/project/{name}", func(rt chi.Router) {
		rt.Get("/", r.wrap(r.handleGetProject))
		rt.Get("/active-report", r.wrap(r.handleGetActiveReport))
		rt.Post("/reset-active-report", r.wrap(r.handleResetActiveReport))
		rt.Delete("/delete-report", r.wrap(r.handleDeleteReport))
		rt.Post("/upload-asset", r.wrap(r.handleUploadAsset))
		rt.Post("/archive", r.wrap(r.handleArchiveProject))
		rt.Delete("/", r.wrap(r.handleDeleteProject))
		rt.Post("/report/{id}/send-email", r.wrap(r.handleSendEmail))
	})

	mux.Get("/invoices/latest", r.wrap(r.handleLatestInvoices))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap translates domain errors into client-facing status codes. Unexpected
// errors are logged with context and surfaced as a generic failure so
// internal paths never leak to the client.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var verr *domain.ValidationError
		switch {
		case errors.Is(err, domain.ErrProjectNotFound),
			errors.Is(err, domain.ErrReportNotFound),
			errors.Is(err, domain.ErrNoActiveReport),
			errors.Is(err, domain.ErrPDFMissing):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, domain.ErrActiveReportExists):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.As(err, &verr),
			errors.Is(err, domain.ErrReportNotGenerated),
			errors.Is(err, domain.ErrReportMissingID):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domai.ErrRateLimited):
			http.Error(w, "text generation rate limited, retry later", http.StatusTooManyRequests)
		case errors.Is(err, domain.ErrMailAuth):
			http.Error(w, "mail server rejected credentials", http.StatusBadGateway)
		default:
			log.Printf("http: %s %s: %v", req.Method, req.URL.Path, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func urlName(req *http.Request) string {
	raw := chi.URLParam(req, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// GET /projects
func (r *Router) handleListProjects(w http.ResponseWriter, req *http.Request) error {
	list, err := r.reportsSvc.ListProjects(req.Context())
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Project{}
	}
	return writeJSON(w, list)
}

// GET /components
func (r *Router) handleComponents(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, domain.QuestionBank())
}

// GET /project/{name}
func (r *Router) handleGetProject(w http.ResponseWriter, req *http.Request) error {
	p, err := r.reportsSvc.GetProject(req.Context(), urlName(req))
	if err != nil {
		return err
	}
	return writeJSON(w, p)
}

// GET /project/{name}/active-report
func (r *Router) handleGetActiveReport(w http.ResponseWriter, req *http.Request) error {
	rep, err := r.reportsSvc.GetActiveReport(req.Context(), urlName(req))
	if err != nil {
		return err
	}
	return writeJSON(w, rep)
}

// POST /project/create-report
// Body: {"project_name": "...", "report_id": "...", "report_date": "YYYY-MM-DD"}
func (r *Router) handleCreateReport(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ProjectName string `json:"project_name"`
		ReportID    string `json:"report_id"`
		ReportDate  string `json:"report_date"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &domain.ValidationError{Field: "body", Reason: err.Error()}
	}
	if err := middleware.ValidateProjectName(body.ProjectName); err != nil {
		return &domain.ValidationError{Field: "project_name", Reason: err.Error()}
	}
	if body.ReportID != "" {
		if err := middleware.ValidateReportID(body.ReportID); err != nil {
			return &domain.ValidationError{Field: "report_id", Reason: err.Error()}
		}
	}
	if err := middleware.ValidateReportDate(body.ReportDate); err != nil {
		return &domain.ValidationError{Field: "report_date", Reason: err.Error()}
	}

	rep, err := r.reportsSvc.CreateReport(req.Context(), body.ProjectName, domain.ReportID(body.ReportID), body.ReportDate)
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, rep)
}

// POST /component/save-data
// Body: {"project_name": "...", "component": "...", "answers": {...}}
func (r *Router) handleSaveComponentData(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ProjectName string                        `json:"project_name"`
		Component   string                        `json:"component"`
		Answers     map[string]domain.AnswerValue `json:"answers"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &domain.ValidationError{Field: "body", Reason: err.Error()}
	}
	if err := middleware.ValidateProjectName(body.ProjectName); err != nil {
		return &domain.ValidationError{Field: "project_name", Reason: err.Error()}
	}
	if len(body.Answers) == 0 {
		return &domain.ValidationError{Field: "answers", Reason: "required"}
	}

	rep, err := r.reportsSvc.SaveComponentData(req.Context(), body.ProjectName, body.Component, body.Answers)
	if err != nil {
		return err
	}
	return writeJSON(w, rep)
}

// POST /project/generate-report
// Body: {"project_name": "...", "user_notes": "...", "use_ai_layout": bool}
func (r *Router) handleGenerateReport(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ProjectName string `json:"project_name"`
		UserNotes   string `json:"user_notes"`
		UseAILayout bool   `json:"use_ai_layout"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &domain.ValidationError{Field: "body", Reason: err.Error()}
	}
	if err := middleware.ValidateProjectName(body.ProjectName); err != nil {
		return &domain.ValidationError{Field: "project_name", Reason: err.Error()}
	}

	res, err := r.reportsSvc.GenerateReport(req.Context(), appreports.GenerateCommand{
		Project:     body.ProjectName,
		UserNotes:   middleware.SanitizeString(body.UserNotes),
		UseAILayout: body.UseAILayout,
	})
	if err != nil {
		middleware.IncrementReportsFailed()
		return err
	}
	middleware.IncrementReportsGenerated()
	return writeJSON(w, res)
}

// GET /download-report/{name}
func (r *Router) handleDownloadReport(w http.ResponseWriter, req *http.Request) error {
	path, filename, err := r.reportsSvc.DownloadPDF(req.Context(), urlName(req))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, req, path)
	return nil
}

// POST /project/finalize-report
// Body: {"project_name": "..."}
func (r *Router) handleFinalizeReport(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ProjectName string `json:"project_name"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &domain.ValidationError{Field: "body", Reason: err.Error()}
	}
	rep, err := r.reportsSvc.FinalizeReport(req.Context(), body.ProjectName)
	if err != nil {
		return err
	}
	return writeJSON(w, rep)
}

// POST /project/{name}/reset-active-report
func (r *Router) handleResetActiveReport(w http.ResponseWriter, req *http.Request) error {
	if err := r.reportsSvc.ResetActiveReportGeneration(req.Context(), urlName(req)); err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"status": "reset"})
}

// DELETE /project/{name}/delete-report
func (r *Router) handleDeleteReport(w http.ResponseWriter, req *http.Request) error {
	if err := r.reportsSvc.DeleteReport(req.Context(), urlName(req)); err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"status": "deleted"})
}

// POST /project/{name}/upload-asset
// multipart form: component, question_id, file
func (r *Router) handleUploadAsset(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return &domain.ValidationError{Field: "body", Reason: "invalid multipart form"}
	}
	component := req.FormValue("component")
	questionID := req.FormValue("question_id")
	file, header, err := req.FormFile("file")
	if err != nil {
		return &domain.ValidationError{Field: "file", Reason: "required"}
	}
	defer file.Close()
	if err := middleware.ValidateUploadFilename(header.Filename); err != nil {
		return &domain.ValidationError{Field: "file", Reason: err.Error()}
	}
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return err
	}

	ref, err := r.reportsSvc.UploadAsset(req.Context(), urlName(req), component, questionID, header.Filename, data)
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, ref)
}

// POST /project/{name}/archive
func (r *Router) handleArchiveProject(w http.ResponseWriter, req *http.Request) error {
	if err := r.reportsSvc.ArchiveProject(req.Context(), urlName(req)); err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"status": "archived"})
}

// DELETE /project/{name}
func (r *Router) handleDeleteProject(w http.ResponseWriter, req *http.Request) error {
	if err := r.reportsSvc.DeleteProject(req.Context(), urlName(req)); err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"status": "deleted"})
}

// POST /project/{name}/report/{id}/send-email
// Body: {"recipients": ["..."]} — empty falls back to configured recipients
func (r *Router) handleSendEmail(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Recipients []string `json:"recipients"`
	}
	if req.Body != nil {
		// body is optional
		_ = json.NewDecoder(req.Body).Decode(&body)
	}
	id := chi.URLParam(req, "id")
	if err := r.reportsSvc.SendReportEmail(req.Context(), urlName(req), domain.ReportID(id), body.Recipients); err != nil {
		return err
	}
	middleware.IncrementEmailsSent()
	return writeJSON(w, map[string]any{"status": "sent"})
}

// GET /invoices/latest?limit=20
func (r *Router) handleLatestInvoices(w http.ResponseWriter, req *http.Request) error {
	if r.invoicesSvc == nil {
		http.Error(w, "invoice storage not configured", http.StatusServiceUnavailable)
		return nil
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.invoicesSvc.Latest(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}
