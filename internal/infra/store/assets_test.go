package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/aydinholding/report-service/internal/domain/projects"
)

func TestSaveAssetPrefixesComponent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ref, err := s.SaveAsset(ctx, "Acme", "İnşaat", "şantiye fotoğrafı.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "insaat-antiye-fotoraf.png", ref.Filename)
	assert.Equal(t, "image", ref.Type)

	data, err := s.ReadAsset(ctx, "Acme", ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
}

func TestSaveAssetTypeByExtension(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cases := map[string]string{
		"grafik.PNG":  "image",
		"rapor.pdf":   "pdf",
		"tablo.xlsx":  "file",
		"cizim.webp":  "image",
	}
	for name, want := range cases {
		ref, err := s.SaveAsset(ctx, "Acme", "Finans", name, []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, want, ref.Type, "filename %q", name)
	}
}

func TestReadAssetRejectsEscapingPaths(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReadAsset(ctx, "Acme", domain.FileRef{RelativePath: "../../etc/passwd"})
	assert.Error(t, err)
	_, err = s.ReadAsset(ctx, "Acme", domain.FileRef{RelativePath: "/etc/passwd"})
	assert.Error(t, err)
}

func TestWriteAndRemovePDF(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	path, err := s.WritePDF(ctx, "Acme", "r-1", []byte("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, s.PDFPath("Acme", "r-1"), path)

	require.NoError(t, s.RemovePDF(ctx, "Acme", "r-1"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// removing again is not an error
	assert.NoError(t, s.RemovePDF(ctx, "Acme", "r-1"))
}

func TestPurgeWorkingFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ref, err := s.SaveAsset(ctx, "Acme", "Finans", "bilanco.png", []byte("png"))
	require.NoError(t, err)
	require.NoError(t, s.PurgeWorkingFiles(ctx, "Acme"))

	_, err = s.ReadAsset(ctx, "Acme", ref)
	assert.Error(t, err)
}

func TestMirrorComponents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	comps := map[string]domain.ComponentData{
		"Finans": {Answers: map[string]domain.AnswerValue{"cash_flow": {Text: "pozitif"}}},
	}
	require.NoError(t, s.MirrorComponents(ctx, "Acme", comps))

	data, err := os.ReadFile(s.workDir("Acme") + "/text/components.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), "pozitif")
}
