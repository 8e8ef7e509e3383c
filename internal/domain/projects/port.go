package projects

import "context"

// Repository port for the per-project JSON store.
type Repository interface {
	List(ctx context.Context) ([]*Project, error)
	Load(ctx context.Context, name string) (*Project, error)
	Save(ctx context.Context, p *Project) error

	// Mutate runs fn on the stored project inside the store's per-project
	// critical section and persists the result. Missing projects surface
	// ErrProjectNotFound unless createIfMissing is set.
	Mutate(ctx context.Context, name string, createIfMissing bool, fn func(p *Project) error) (*Project, error)

	Archive(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
}

// AssetStore port for working-tree files and rendered PDFs.
type AssetStore interface {
	SaveAsset(ctx context.Context, project, component, filename string, data []byte) (FileRef, error)
	ReadAsset(ctx context.Context, project string, ref FileRef) ([]byte, error)
	MirrorComponents(ctx context.Context, project string, components map[string]ComponentData) error
	PurgeWorkingFiles(ctx context.Context, project string) error

	// WritePDF persists bytes to the deterministic per-report path via a
	// temp file and atomic rename, returning the final path.
	WritePDF(ctx context.Context, project string, id ReportID, data []byte) (string, error)
	// RemovePDF treats a missing file as success.
	RemovePDF(ctx context.Context, project string, id ReportID) error
	PDFPath(project string, id ReportID) string
}

// Mailer port for report distribution.
type Mailer interface {
	SendReport(ctx context.Context, m ReportMail) error
}

// ReportMail is one outgoing report email.
type ReportMail struct {
	To             []string
	Subject        string
	Body           string
	PDFPath        string
	AttachmentName string
}

// ArtifactMirror port for mirroring finalized PDFs to object storage.
type ArtifactMirror interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
}
