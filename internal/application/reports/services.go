package reports

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/aydinholding/report-service/internal/application"
	domai "github.com/aydinholding/report-service/internal/domain/ai"
	domain "github.com/aydinholding/report-service/internal/domain/projects"
)

// Service implements the report lifecycle use-cases and the generation
// pipeline. All project mutation runs inside the repository's per-project
// critical section; long external calls (drafting, rendering) run outside it.
type Service struct {
	Repo       domain.Repository
	Assets     domain.AssetStore
	Drafter    domai.Drafter
	Renderer   domain.Renderer
	PDF        domain.PDFEngine
	Mailer     domain.Mailer
	Mirror     domain.ArtifactMirror // optional
	Clock      application.Clock
	Recipients func(project string) []string
}

//
// ==== USE CASES ====
//

func (s *Service) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	return s.Repo.List(ctx)
}

func (s *Service) GetProject(ctx context.Context, name string) (*domain.Project, error) {
	return s.Repo.Load(ctx, name)
}

// CreateReport starts a fresh report. Fails with ErrActiveReportExists when
// the project already has a non-finalized report, no matter how many prior
// create/finalize cycles happened.
func (s *Service) CreateReport(ctx context.Context, project string, id domain.ReportID, reportDate string) (*domain.Report, error) {
	if project == "" {
		return nil, &domain.ValidationError{Field: "project_name", Reason: "required"}
	}
	now := s.Clock.Now()
	var created *domain.Report
	_, err := s.Repo.Mutate(ctx, project, true, func(p *domain.Project) error {
		if p.ActiveReport != nil {
			return domain.ErrActiveReportExists
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		rid := id
		if rid == "" {
			rid = domain.ReportID(uuid.New().String())
		}
		date := reportDate
		if date == "" {
			date = now.Format("2006-01-02")
		}
		p.ActiveReport = domain.NewReport(rid, date, now)
		p.LastUpdated = now
		created = p.ActiveReport
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ensureActive is the explicit idempotent precondition for operations that
// must never block on missing state: it returns the active report, creating
// an empty one first when none exists.
func (s *Service) ensureActive(p *domain.Project, now time.Time) *domain.Report {
	if p.ActiveReport == nil {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.ActiveReport = domain.NewReport(domain.ReportID(uuid.New().String()), now.Format("2006-01-02"), now)
	}
	return p.ActiveReport
}

// SaveComponentData merges answers into the named component, creating the
// project and an active report on the fly when needed. Scalar answers
// overwrite; file-list answers append. The raw-content component writes to
// the report's top-level content instead of the component map.
func (s *Service) SaveComponentData(ctx context.Context, project, component string, answers map[string]domain.AnswerValue) (*domain.Report, error) {
	if component == "" {
		return nil, &domain.ValidationError{Field: "component", Reason: "required"}
	}
	if !domain.KnownComponent(component) {
		return nil, &domain.ValidationError{Field: "component", Reason: "unknown component: " + component}
	}
	now := s.Clock.Now()
	var report *domain.Report
	p, err := s.Repo.Mutate(ctx, project, true, func(p *domain.Project) error {
		r := s.ensureActive(p, now)
		if component == domain.RawContentComponent {
			for _, v := range answers {
				if !v.IsFile() && v.Text != "" {
					r.ReportContent = v.Text
				}
			}
		} else {
			comp := r.Components[component]
			if comp.Answers == nil {
				comp.Answers = make(map[string]domain.AnswerValue)
			}
			for k, v := range answers {
				existing, ok := comp.Answers[k]
				if ok && existing.IsFile() && v.IsFile() {
					comp.Answers[k] = existing.AppendFiles(v.Files...)
					continue
				}
				comp.Answers[k] = v
			}
			comp.LastUpdated = now
			r.Components[component] = comp
		}
		r.LastUpdated = now
		p.LastUpdated = now
		report = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.Assets.MirrorComponents(ctx, p.Name, report.Components); err != nil {
		log.Printf("reports: mirror components for %s: %v", p.Name, err)
	}
	return report, nil
}

// GetActiveReport returns the project's editable report. Legacy project
// shapes are migrated by the store on read.
func (s *Service) GetActiveReport(ctx context.Context, project string) (*domain.Report, error) {
	p, err := s.Repo.Load(ctx, project)
	if err != nil {
		return nil, err
	}
	if p.ActiveReport == nil {
		return nil, domain.ErrNoActiveReport
	}
	return p.ActiveReport, nil
}

// UploadAsset stores a file under the active working tree and appends its
// ref to the owning question's answer list.
func (s *Service) UploadAsset(ctx context.Context, project, component, questionID, filename string, data []byte) (domain.FileRef, error) {
	if component == "" || questionID == "" {
		return domain.FileRef{}, &domain.ValidationError{Field: "component", Reason: "component and question_id are required"}
	}
	if !domain.KnownComponent(component) {
		return domain.FileRef{}, &domain.ValidationError{Field: "component", Reason: "unknown component: " + component}
	}
	ref, err := s.Assets.SaveAsset(ctx, project, component, filename, data)
	if err != nil {
		return domain.FileRef{}, err
	}
	now := s.Clock.Now()
	_, err = s.Repo.Mutate(ctx, project, true, func(p *domain.Project) error {
		r := s.ensureActive(p, now)
		comp := r.Components[component]
		if comp.Answers == nil {
			comp.Answers = make(map[string]domain.AnswerValue)
		}
		comp.Answers[questionID] = comp.Answers[questionID].AppendFiles(ref)
		comp.LastUpdated = now
		r.Components[component] = comp
		r.LastUpdated = now
		p.LastUpdated = now
		return nil
	})
	if err != nil {
		return domain.FileRef{}, err
	}
	return ref, nil
}

// ResetActiveReportGeneration clears the generated artifact while keeping
// all component data. Idempotent: a missing PDF counts as removed.
func (s *Service) ResetActiveReportGeneration(ctx context.Context, project string) error {
	now := s.Clock.Now()
	_, err := s.Repo.Mutate(ctx, project, false, func(p *domain.Project) error {
		r := p.ActiveReport
		if r == nil {
			return domain.ErrNoActiveReport
		}
		if r.ReportID == "" {
			return domain.ErrReportMissingID
		}
		if err := s.Assets.RemovePDF(ctx, p.Name, r.ReportID); err != nil {
			return err
		}
		r.ReportGenerated = false
		r.PDFPath = ""
		r.ReportContent = ""
		r.Status = domain.StatusInProgress
		r.LastUpdated = now
		p.LastUpdated = now
		return nil
	})
	return err
}

// FinalizeReport locks a generated report. The move into the historical
// list happens on the next read; working files are purged immediately.
func (s *Service) FinalizeReport(ctx context.Context, project string) (*domain.Report, error) {
	now := s.Clock.Now()
	var finalized *domain.Report
	p, err := s.Repo.Mutate(ctx, project, false, func(p *domain.Project) error {
		r := p.ActiveReport
		if r == nil {
			return domain.ErrNoActiveReport
		}
		if !r.ReportGenerated {
			return domain.ErrReportNotGenerated
		}
		t := now
		r.IsFinalized = true
		r.FinalizedAt = &t
		r.LastUpdated = now
		p.LastUpdated = now
		finalized = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.Assets.PurgeWorkingFiles(ctx, p.Name); err != nil {
		log.Printf("reports: purge working files for %s: %v", p.Name, err)
	}
	if s.Mirror != nil && finalized.PDFPath != "" {
		key := fmt.Sprintf("%s/%s.pdf", domain.Normalize(p.Name), finalized.ReportID)
		if url, err := s.Mirror.Upload(ctx, finalized.PDFPath, key); err != nil {
			log.Printf("reports: mirror pdf for %s: %v", p.Name, err)
		} else {
			log.Printf("reports: mirrored %s to %s", finalized.PDFPath, url)
		}
	}
	return finalized, nil
}

// DeleteReport removes the active report and its PDF. PDF removal is
// best-effort: a failure is logged and the metadata still goes away.
func (s *Service) DeleteReport(ctx context.Context, project string) error {
	now := s.Clock.Now()
	p, err := s.Repo.Mutate(ctx, project, false, func(p *domain.Project) error {
		r := p.ActiveReport
		if r == nil {
			return domain.ErrNoActiveReport
		}
		if r.ReportID != "" {
			if err := s.Assets.RemovePDF(ctx, p.Name, r.ReportID); err != nil {
				log.Printf("reports: remove pdf for %s/%s: %v", p.Name, r.ReportID, err)
			}
		}
		p.ActiveReport = nil
		p.LastUpdated = now
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.Assets.PurgeWorkingFiles(ctx, p.Name); err != nil {
		log.Printf("reports: purge working files for %s: %v", p.Name, err)
	}
	return nil
}

func (s *Service) ArchiveProject(ctx context.Context, project string) error {
	return s.Repo.Archive(ctx, project)
}

func (s *Service) DeleteProject(ctx context.Context, project string) error {
	return s.Repo.Delete(ctx, project)
}

//
// ==== GENERATION PIPELINE ====
//

type GenerateCommand struct {
	Project     string
	UserNotes   string
	UseAILayout bool
}

type GenerateResult struct {
	ReportID   domain.ReportID `json:"report_id"`
	PDFPath    string          `json:"pdf_path"`
	TextChars  int             `json:"text_chars"`
	UsedLayout string          `json:"used_layout"` // template | ai | fallback-pdf
}

// GenerateReport runs assemble → draft → render → pdf → persist. The store
// write of the PDF and the metadata update share one critical section, so a
// crash can no longer strand an artifact without metadata.
func (s *Service) GenerateReport(ctx context.Context, cmd GenerateCommand) (GenerateResult, error) {
	p, err := s.Repo.Load(ctx, cmd.Project)
	if err != nil {
		return GenerateResult{}, err
	}
	r := p.ActiveReport
	if r == nil {
		return GenerateResult{}, domain.ErrNoActiveReport
	}

	assembled := Assemble(r)
	text, err := s.Drafter.Draft(ctx, domai.DraftRequest{
		ProjectName: p.Name,
		Payload:     assembled.PromptPayload(),
		UserNotes:   cmd.UserNotes,
	})
	if err != nil {
		return GenerateResult{}, fmt.Errorf("draft generation: %w", err)
	}

	images := s.collectImages(ctx, p.Name, r)
	html, usedAI, err := s.Renderer.Render(ctx, domain.RenderInput{
		ProjectName: p.Name,
		ReportText:  text,
		ReportDate:  r.ReportDate,
		Images:      images,
		UseAILayout: cmd.UseAILayout,
	})
	if err != nil {
		return GenerateResult{}, fmt.Errorf("html render: %w", err)
	}

	usedLayout := "template"
	if usedAI {
		usedLayout = "ai"
	}
	pdfBytes, err := s.PDF.Render(ctx, html)
	if err != nil {
		log.Printf("reports: pdf render for %s failed, trying plain fallback: %v", p.Name, err)
		pdfBytes, err = s.PDF.RenderFallback(ctx, text)
		if err != nil {
			return GenerateResult{}, fmt.Errorf("pdf render: %w", err)
		}
		usedLayout = "fallback-pdf"
	}

	id := r.ReportID
	now := s.Clock.Now()
	var pdfPath string
	_, err = s.Repo.Mutate(ctx, cmd.Project, false, func(p *domain.Project) error {
		r := p.ActiveReport
		if r == nil || r.ReportID != id {
			// report was deleted or replaced while we were rendering
			return domain.ErrReportNotFound
		}
		path, err := s.Assets.WritePDF(ctx, p.Name, r.ReportID, pdfBytes)
		if err != nil {
			return err
		}
		pdfPath = path
		r.PDFPath = path
		r.ReportContent = text
		r.ReportGenerated = true
		r.Status = domain.StatusCompleted
		r.LastUpdated = now
		p.LastUpdated = now
		return nil
	})
	if err != nil {
		return GenerateResult{}, err
	}
	return GenerateResult{ReportID: id, PDFPath: pdfPath, TextChars: len(text), UsedLayout: usedLayout}, nil
}

// collectImages base64-inlines every image asset of the report, tagged with
// its owning component. Per-image read failures are logged and skipped.
func (s *Service) collectImages(ctx context.Context, project string, r *domain.Report) []domain.InlineImage {
	var out []domain.InlineImage
	names := make([]string, 0, len(r.Components))
	for name := range r.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range r.Components[name].Answers {
			if !v.IsFile() {
				continue
			}
			for _, f := range v.Files {
				if f.Type != "image" {
					continue
				}
				data, err := s.Assets.ReadAsset(ctx, project, f)
				if err != nil {
					log.Printf("reports: read asset %s: %v", f.RelativePath, err)
					continue
				}
				mt := mime.TypeByExtension(filepath.Ext(f.Filename))
				if mt == "" {
					mt = "image/png"
				}
				out = append(out, domain.InlineImage{
					Component: name,
					Filename:  f.Filename,
					DataURI:   "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data),
				})
			}
		}
	}
	return out
}

//
// ==== DISTRIBUTION ====
//

// DownloadPDF resolves the active report's artifact path, answering
// ErrPDFMissing when metadata claims a generated report but the file is gone.
func (s *Service) DownloadPDF(ctx context.Context, project string) (string, string, error) {
	p, err := s.Repo.Load(ctx, project)
	if err != nil {
		return "", "", err
	}
	r := p.ActiveReport
	if r == nil {
		return "", "", domain.ErrNoActiveReport
	}
	if !r.ReportGenerated || r.PDFPath == "" {
		return "", "", domain.ErrReportNotGenerated
	}
	if _, err := os.Stat(r.PDFPath); err != nil {
		return "", "", domain.ErrPDFMissing
	}
	name := fmt.Sprintf("%s-%s.pdf", domain.Normalize(p.Name), r.ReportID)
	return r.PDFPath, name, nil
}

// SendReportEmail mails the report PDF to the given recipients, falling back
// to the configured list for the project.
func (s *Service) SendReportEmail(ctx context.Context, project string, id domain.ReportID, recipients []string) error {
	p, err := s.Repo.Load(ctx, project)
	if err != nil {
		return err
	}
	r := findReport(p, id)
	if r == nil {
		return domain.ErrReportNotFound
	}
	if !r.ReportGenerated || r.PDFPath == "" {
		return domain.ErrReportNotGenerated
	}
	if _, err := os.Stat(r.PDFPath); err != nil {
		return domain.ErrPDFMissing
	}
	if len(recipients) == 0 && s.Recipients != nil {
		recipients = s.Recipients(p.Name)
	}
	if len(recipients) == 0 {
		return &domain.ValidationError{Field: "recipients", Reason: "no recipients configured"}
	}
	return s.Mailer.SendReport(ctx, domain.ReportMail{
		To:             recipients,
		Subject:        fmt.Sprintf("%s yatırımcı raporu (%s)", p.Name, r.ReportDate),
		Body:           fmt.Sprintf("%s projesinin %s tarihli yatırımcı raporu ektedir.", p.Name, r.ReportDate),
		PDFPath:        r.PDFPath,
		AttachmentName: fmt.Sprintf("%s-%s.pdf", domain.Normalize(p.Name), r.ReportID),
	})
}

func findReport(p *domain.Project, id domain.ReportID) *domain.Report {
	if p.ActiveReport != nil && p.ActiveReport.ReportID == id {
		return p.ActiveReport
	}
	for _, r := range p.Reports {
		if r.ReportID == id {
			return r
		}
	}
	return nil
}
