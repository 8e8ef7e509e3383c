package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	domain "github.com/aydinholding/report-service/internal/domain/projects"
)

// Store keeps one JSON file per project plus a working tree for the active
// report's uploads. The JSON file is the sole source of truth; every
// operation reads, mutates and rewrites it. Mutation is serialized per
// project behind an in-process mutex, and all writes go through a temp file
// and atomic rename.
type Store struct {
	projectsDir string
	reportsDir  string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(projectsDir, reportsDir string) (*Store, error) {
	for _, d := range []string{projectsDir, reportsDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", d, err)
		}
	}
	return &Store{
		projectsDir: projectsDir,
		reportsDir:  reportsDir,
		locks:       make(map[string]*sync.Mutex),
	}, nil
}

func (s *Store) lock(name string) *sync.Mutex {
	key := domain.Normalize(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[key] = l
	return l
}

func (s *Store) projectPath(name string) string {
	return filepath.Join(s.projectsDir, domain.Normalize(name)+".json")
}

func (s *Store) workDir(name string) string {
	return filepath.Join(s.projectsDir, domain.Normalize(name), "active")
}

// PDFPath is the deterministic per-report artifact path. One file per report
// id; re-rendering overwrites.
func (s *Store) PDFPath(project string, id domain.ReportID) string {
	return filepath.Join(s.reportsDir, domain.Normalize(project)+"-"+string(id)+".pdf")
}

// readProject loads and normalizes without taking the lock; callers hold it.
func (s *Store) readProject(name string) (*domain.Project, error) {
	data, err := os.ReadFile(s.projectPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	var p domain.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptProjectFile, name, err)
	}
	if s.normalize(&p) {
		if err := s.writeProject(&p); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// normalize migrates legacy shapes on read:
//   - older files kept the active report as the first, non-finalized element
//     of the reports array; move it into active_report
//   - a finalized active report moves into the historical list
func (s *Store) normalize(p *domain.Project) bool {
	changed := false
	if p.ActiveReport == nil && len(p.Reports) > 0 && !p.Reports[0].IsFinalized {
		p.ActiveReport = p.Reports[0]
		p.Reports = p.Reports[1:]
		changed = true
	}
	if p.ActiveReport != nil && p.ActiveReport.IsFinalized {
		p.Reports = append(p.Reports, p.ActiveReport)
		p.ActiveReport = nil
		changed = true
	}
	return changed
}

func (s *Store) writeProject(p *domain.Project) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(s.projectPath(p.Name), data)
}

// atomicWrite writes to a sibling temp file and renames over the target.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// List loads every project file in the directory, skipping corrupt entries
// with a log line so one bad file does not hide the rest.
func (s *Store) List(ctx context.Context) ([]*domain.Project, error) {
	entries, err := os.ReadDir(s.projectsDir)
	if err != nil {
		return nil, err
	}
	var out []*domain.Project
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		l := s.lock(name)
		l.Lock()
		p, err := s.readProject(name)
		l.Unlock()
		if err != nil {
			log.Printf("store: skipping %s: %v", e.Name(), err)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) Load(ctx context.Context, name string) (*domain.Project, error) {
	l := s.lock(name)
	l.Lock()
	defer l.Unlock()
	return s.readProject(name)
}

func (s *Store) Save(ctx context.Context, p *domain.Project) error {
	l := s.lock(p.Name)
	l.Lock()
	defer l.Unlock()
	return s.writeProject(p)
}

// Mutate runs fn on the stored project under the project lock and persists
// the result. With createIfMissing a fresh project is materialized instead
// of surfacing ErrProjectNotFound.
func (s *Store) Mutate(ctx context.Context, name string, createIfMissing bool, fn func(p *domain.Project) error) (*domain.Project, error) {
	l := s.lock(name)
	l.Lock()
	defer l.Unlock()

	p, err := s.readProject(name)
	if errors.Is(err, domain.ErrProjectNotFound) && createIfMissing {
		p = &domain.Project{Name: name}
		err = nil
	}
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.writeProject(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) Archive(ctx context.Context, name string) error {
	l := s.lock(name)
	l.Lock()
	defer l.Unlock()

	src := s.projectPath(name)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrProjectNotFound
		}
		return err
	}
	dir := filepath.Join(s.projectsDir, "archive")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.Rename(src, filepath.Join(dir, filepath.Base(src)))
}

func (s *Store) Delete(ctx context.Context, name string) error {
	l := s.lock(name)
	l.Lock()
	defer l.Unlock()

	path := s.projectPath(name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrProjectNotFound
		}
		return err
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Dir(s.workDir(name))); err != nil {
		log.Printf("store: remove working tree for %s: %v", name, err)
	}
	// best-effort sweep of report PDFs
	prefix := domain.Normalize(name) + "-"
	entries, err := os.ReadDir(s.reportsDir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), ".pdf") {
			if err := os.Remove(filepath.Join(s.reportsDir, e.Name())); err != nil {
				log.Printf("store: remove %s: %v", e.Name(), err)
			}
		}
	}
	return nil
}
