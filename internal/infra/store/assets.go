package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	domain "github.com/aydinholding/report-service/internal/domain/projects"
)

// SaveAsset writes an upload into the active working tree. Filenames are
// prefixed with the normalized component name so the renderer's
// image-to-component matching works on the prefix alone.
func (s *Store) SaveAsset(ctx context.Context, project, component, filename string, data []byte) (domain.FileRef, error) {
	dir := filepath.Join(s.workDir(project), "images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.FileRef{}, err
	}

	base := domain.Normalize(component) + "-" + sanitizeFilename(filename)
	if err := atomicWrite(filepath.Join(dir, base), data); err != nil {
		return domain.FileRef{}, err
	}
	return domain.FileRef{
		Filename:     base,
		RelativePath: filepath.Join("images", base),
		Type:         assetType(filename),
	}, nil
}

func (s *Store) ReadAsset(ctx context.Context, project string, ref domain.FileRef) ([]byte, error) {
	rel := filepath.Clean(ref.RelativePath)
	if strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return nil, fmt.Errorf("asset path escapes working tree: %s", ref.RelativePath)
	}
	return os.ReadFile(filepath.Join(s.workDir(project), rel))
}

// MirrorComponents keeps text/components.json in the working tree in sync
// with the stored answers.
func (s *Store) MirrorComponents(ctx context.Context, project string, components map[string]domain.ComponentData) error {
	dir := filepath.Join(s.workDir(project), "text")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(components, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(filepath.Join(dir, "components.json"), data)
}

// PurgeWorkingFiles wipes the active working tree wholesale.
func (s *Store) PurgeWorkingFiles(ctx context.Context, project string) error {
	return os.RemoveAll(s.workDir(project))
}

// WritePDF persists rendered bytes via temp file + rename so a crash never
// leaves a half-written artifact at the final path.
func (s *Store) WritePDF(ctx context.Context, project string, id domain.ReportID, data []byte) (string, error) {
	path := s.PDFPath(project, id)
	if err := atomicWrite(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// RemovePDF treats a missing file as success.
func (s *Store) RemovePDF(ctx context.Context, project string, id domain.ReportID) error {
	err := os.Remove(s.PDFPath(project, id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "-")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "asset"
	}
	return b.String()
}

func assetType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp":
		return "image"
	case ".pdf":
		return "pdf"
	default:
		return "file"
	}
}
