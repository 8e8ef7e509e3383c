package reports

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domai "github.com/aydinholding/report-service/internal/domain/ai"
	domain "github.com/aydinholding/report-service/internal/domain/projects"
	"github.com/aydinholding/report-service/internal/infra/store"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeDrafter struct {
	text    string
	err     error
	payload string
}

func (f *fakeDrafter) Draft(ctx context.Context, req domai.DraftRequest) (string, error) {
	f.payload = req.Payload
	return f.text, f.err
}

type fakeRenderer struct {
	html   string
	usedAI bool
	err    error
}

func (f *fakeRenderer) Render(ctx context.Context, in domain.RenderInput) (string, bool, error) {
	return f.html, f.usedAI, f.err
}

type fakePDF struct {
	bytes        []byte
	err          error
	fallback     []byte
	fallbackErr  error
	usedFallback bool
}

func (f *fakePDF) Render(ctx context.Context, html string) ([]byte, error) {
	return f.bytes, f.err
}

func (f *fakePDF) RenderFallback(ctx context.Context, text string) ([]byte, error) {
	f.usedFallback = true
	return f.fallback, f.fallbackErr
}

type fakeMailer struct {
	sent []domain.ReportMail
	err  error
}

func (f *fakeMailer) SendReport(ctx context.Context, m domain.ReportMail) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.New(filepath.Join(dir, "projects"), filepath.Join(dir, "reports"))
	require.NoError(t, err)
	return &Service{
		Repo:     st,
		Assets:   st,
		Drafter:  &fakeDrafter{text: "Taslak rapor metni.\n\nİkinci paragraf."},
		Renderer: &fakeRenderer{html: "<html><body>rapor</body></html>"},
		PDF:      &fakePDF{bytes: []byte("%PDF-1.7"), fallback: []byte("%PDF-fallback")},
		Mailer:   &fakeMailer{},
		Clock:    fixedClock{t: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)},
	}, st
}

func TestCreateReportConflictsWithActive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r, err := svc.CreateReport(ctx, "Acme", "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, r.ReportID)
	assert.Equal(t, "2026-08-01", r.ReportDate)

	_, err = svc.CreateReport(ctx, "Acme", "", "")
	assert.ErrorIs(t, err, domain.ErrActiveReportExists)
}

func TestCreateReportAfterFinalizeCycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateReport(ctx, "Acme", "r-1", "2026-08-01")
	require.NoError(t, err)
	_, err = svc.GenerateReport(ctx, GenerateCommand{Project: "Acme"})
	require.NoError(t, err)
	_, err = svc.FinalizeReport(ctx, "Acme")
	require.NoError(t, err)

	// the finalized report moves to history on read, a new one may start
	r, err := svc.CreateReport(ctx, "Acme", "r-2", "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportID("r-2"), r.ReportID)

	p, err := svc.GetProject(ctx, "Acme")
	require.NoError(t, err)
	require.Len(t, p.Reports, 1)
	assert.Equal(t, domain.ReportID("r-1"), p.Reports[0].ReportID)
}

func TestSaveComponentDataCreatesProjectAndReport(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r, err := svc.SaveComponentData(ctx, "Acme", "Finans", map[string]domain.AnswerValue{
		"finance_details": {Text: "Nakit pozisyonu güçlü"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ReportID)
	assert.Equal(t, "Nakit pozisyonu güçlü",
		r.Components["Finans"].Answers["finance_details"].Text)
}

func TestSaveComponentDataScalarOverwritesFileAppends(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveComponentData(ctx, "Acme", "Finans", map[string]domain.AnswerValue{
		"finance_details": {Text: "eski"},
	})
	require.NoError(t, err)
	r, err := svc.SaveComponentData(ctx, "Acme", "Finans", map[string]domain.AnswerValue{
		"finance_details": {Text: "yeni"},
	})
	require.NoError(t, err)
	assert.Equal(t, "yeni", r.Components["Finans"].Answers["finance_details"].Text)

	_, err = svc.SaveComponentData(ctx, "Acme", "Finans", map[string]domain.AnswerValue{
		"outstanding_invoices": {Files: []domain.FileRef{{Filename: "a.png", Type: "image"}}},
	})
	require.NoError(t, err)
	r, err = svc.SaveComponentData(ctx, "Acme", "Finans", map[string]domain.AnswerValue{
		"outstanding_invoices": {Files: []domain.FileRef{{Filename: "b.png", Type: "image"}}},
	})
	require.NoError(t, err)
	assert.Len(t, r.Components["Finans"].Answers["outstanding_invoices"].Files, 2)
}

func TestSaveComponentDataRejectsUnknownComponent(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.SaveComponentData(context.Background(), "Acme", "Pazarlama",
		map[string]domain.AnswerValue{"x": {Text: "y"}})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSaveComponentDataRawContent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	r, err := svc.SaveComponentData(ctx, "Acme", domain.RawContentComponent,
		map[string]domain.AnswerValue{"content": {Text: "elle yazılmış rapor"}})
	require.NoError(t, err)
	assert.Equal(t, "elle yazılmış rapor", r.ReportContent)
	assert.NotContains(t, r.Components, domain.RawContentComponent)
}

func TestGetActiveReport(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetActiveReport(ctx, "Acme")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	_, err = svc.CreateReport(ctx, "Acme", "r-1", "2026-08-01")
	require.NoError(t, err)
	r, err := svc.GetActiveReport(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportID("r-1"), r.ReportID)
}

func TestUploadAssetAppendsFileRef(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	ref, err := svc.UploadAsset(ctx, "Acme", "İnşaat", "site_progress", "foto.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "insaat-foto.png", ref.Filename)

	ref2, err := svc.UploadAsset(ctx, "Acme", "İnşaat", "site_progress", "foto2.png", []byte("png"))
	require.NoError(t, err)

	r, err := svc.GetActiveReport(ctx, "Acme")
	require.NoError(t, err)
	files := r.Components["İnşaat"].Answers["site_progress"].Files
	require.Len(t, files, 2)
	assert.Equal(t, ref.Filename, files[0].Filename)
	assert.Equal(t, ref2.Filename, files[1].Filename)

	data, err := st.ReadAsset(ctx, "Acme", ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
}

func TestGenerateReportHappyPath(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveComponentData(ctx, "Acme", "Finans", map[string]domain.AnswerValue{
		"finance_details": {Text: "Nakit pozisyonu güçlü"},
	})
	require.NoError(t, err)

	res, err := svc.GenerateReport(ctx, GenerateCommand{Project: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "template", res.UsedLayout)
	assert.FileExists(t, res.PDFPath)

	r, err := svc.GetActiveReport(ctx, "Acme")
	require.NoError(t, err)
	assert.True(t, r.ReportGenerated)
	assert.Equal(t, domain.StatusCompleted, r.Status)
	assert.Equal(t, st.PDFPath("Acme", r.ReportID), r.PDFPath)
	assert.Contains(t, r.ReportContent, "Taslak rapor metni")

	drafter := svc.Drafter.(*fakeDrafter)
	assert.Contains(t, drafter.payload, "## Finans")
}

func TestGenerateReportLayoutReflectsRendererOutcome(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateReport(ctx, "Acme", "r-1", "2026-08-01")
	require.NoError(t, err)

	// ai layout requested but the renderer fell back to the template
	res, err := svc.GenerateReport(ctx, GenerateCommand{Project: "Acme", UseAILayout: true})
	require.NoError(t, err)
	assert.Equal(t, "template", res.UsedLayout)

	require.NoError(t, svc.ResetActiveReportGeneration(ctx, "Acme"))
	svc.Renderer.(*fakeRenderer).usedAI = true
	res, err = svc.GenerateReport(ctx, GenerateCommand{Project: "Acme", UseAILayout: true})
	require.NoError(t, err)
	assert.Equal(t, "ai", res.UsedLayout)
}

func TestGenerateReportWithoutActiveReport(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	require.NoError(t, st.Save(ctx, &domain.Project{Name: "Acme"}))

	_, err := svc.GenerateReport(ctx, GenerateCommand{Project: "Acme"})
	assert.ErrorIs(t, err, domain.ErrNoActiveReport)
}

func TestGenerateReportPDFFallback(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	pdf := svc.PDF.(*fakePDF)
	pdf.err = errors.New("chrome crashed")

	_, err := svc.CreateReport(ctx, "Acme", "r-1", "2026-08-01")
	require.NoError(t, err)
	res, err := svc.GenerateReport(ctx, GenerateCommand{Project: "Acme"})
	require.NoError(t, err)
	assert.True(t, pdf.usedFallback)
	assert.Equal(t, "fallback-pdf", res.UsedLayout)
}

func TestGenerateReportDraftFailureLeavesReportUntouched(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	svc.Drafter.(*fakeDrafter).err = errors.New("model unavailable")

	_, err := svc.CreateReport(ctx, "Acme", "r-1", "2026-08-01")
	require.NoError(t, err)
	_, err = svc.GenerateReport(ctx, GenerateCommand{Project: "Acme"})
	require.Error(t, err)

	r, err := svc.GetActiveReport(ctx, "Acme")
	require.NoError(t, err)
	assert.False(t, r.ReportGenerated)
	assert.Empty(t, r.PDFPath)
}

func TestResetActiveReportGeneration(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateReport(ctx, "Acme", "r-1", "2026-08-01")
	require.NoError(t, err)
	res, err := svc.GenerateReport(ctx, GenerateCommand{Project: "Acme"})
	require.NoError(t, err)

	require.NoError(t, svc.ResetActiveReportGeneration(ctx, "Acme"))
	r, err := svc.GetActiveReport(ctx, "Acme")
	require.NoError(t, err)
	assert.False(t, r.ReportGenerated)
	assert.Empty(t, r.PDFPath)
	assert.Empty(t, r.ReportContent)
	assert.Equal(t, domain.StatusInProgress, r.Status)
	_, statErr := os.Stat(res.PDFPath)
	assert.True(t, os.IsNotExist(statErr))

	// idempotent: resetting an already-reset report succeeds
	assert.NoError(t, svc.ResetActiveReportGeneration(ctx, "Acme"))
}

func TestFinalizeRequiresGeneration(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateReport(ctx, "Acme", "r-1", "2026-08-01")
	require.NoError(t, err)
	_, err = svc.FinalizeReport(ctx, "Acme")
	assert.ErrorIs(t, err, domain.ErrReportNotGenerated)

	_, err = svc.GenerateReport(ctx, GenerateCommand{Project: "Acme"})
	require.NoError(t, err)
	f, err := svc.FinalizeReport(ctx, "Acme")
	require.NoError(t, err)
	assert.True(t, f.IsFinalized)
	require.NotNil(t, f.FinalizedAt)
}

func TestDeleteReportRemovesMetadataAndPDF(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateReport(ctx, "Acme", "r-1", "2026-08-01")
	require.NoError(t, err)
	res, err := svc.GenerateReport(ctx, GenerateCommand{Project: "Acme"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteReport(ctx, "Acme"))
	_, err = svc.GetActiveReport(ctx, "Acme")
	assert.ErrorIs(t, err, domain.ErrNoActiveReport)
	_, statErr := os.Stat(res.PDFPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadPDF(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateReport(ctx, "Acme", "r-1", "2026-08-01")
	require.NoError(t, err)
	_, _, err = svc.DownloadPDF(ctx, "Acme")
	assert.ErrorIs(t, err, domain.ErrReportNotGenerated)

	res, err := svc.GenerateReport(ctx, GenerateCommand{Project: "Acme"})
	require.NoError(t, err)
	path, name, err := svc.DownloadPDF(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, res.PDFPath, path)
	assert.Equal(t, "acme-r-1.pdf", name)

	// metadata says generated but the artifact is gone
	require.NoError(t, os.Remove(res.PDFPath))
	_, _, err = svc.DownloadPDF(ctx, "Acme")
	assert.ErrorIs(t, err, domain.ErrPDFMissing)
}

func TestSendReportEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	svc.Recipients = func(project string) []string { return []string{"yatirimci@aydinholding.com.tr"} }

	_, err := svc.CreateReport(ctx, "Acme", "r-1", "2026-08-01")
	require.NoError(t, err)
	_, err = svc.GenerateReport(ctx, GenerateCommand{Project: "Acme"})
	require.NoError(t, err)

	require.NoError(t, svc.SendReportEmail(ctx, "Acme", "r-1", nil))
	mailer := svc.Mailer.(*fakeMailer)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"yatirimci@aydinholding.com.tr"}, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, "Acme")
	assert.Equal(t, "acme-r-1.pdf", mailer.sent[0].AttachmentName)

	err = svc.SendReportEmail(ctx, "Acme", "r-yok", nil)
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestSendReportEmailFindsHistoricalReport(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	svc.Recipients = func(project string) []string { return []string{"yatirimci@aydinholding.com.tr"} }

	_, err := svc.CreateReport(ctx, "Acme", "r-1", "2026-08-01")
	require.NoError(t, err)
	_, err = svc.GenerateReport(ctx, GenerateCommand{Project: "Acme"})
	require.NoError(t, err)
	_, err = svc.FinalizeReport(ctx, "Acme")
	require.NoError(t, err)

	// r-1 now lives in the historical list
	assert.NoError(t, svc.SendReportEmail(ctx, "Acme", "r-1", nil))
}
