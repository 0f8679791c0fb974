package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedManifestLoads(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	models := c.List()
	require.NotEmpty(t, models)

	seen := map[Kind]bool{}
	for _, m := range models {
		seen[m.Kind] = true
	}
	require.True(t, seen[KindWhisper])
	require.True(t, seen[KindTransducer])
	require.True(t, seen[KindCloudOpenAI])
	require.True(t, seen[KindCloudGroq])
}

func TestLookup(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	model, err := c.Lookup("whisper-base")
	require.NoError(t, err)
	require.Equal(t, KindWhisper, model.Kind)
	require.Equal(t, []string{"ggml-base.bin"}, model.Files)

	_, err = c.Lookup("nope")
	require.ErrorIs(t, err, ErrUnknownModel)
}

func TestIsDownloadedChecksAllFiles(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	require.NoError(t, err)

	model, err := c.Lookup("parakeet-tdt-0.6b-v2")
	require.NoError(t, err)
	require.False(t, c.IsDownloaded(model))

	modelDir := c.ResolvePath(model.ID)
	require.NoError(t, os.MkdirAll(modelDir, 0o700))
	for i, file := range model.Files {
		require.False(t, c.IsDownloaded(model), "missing file %d", i)
		require.NoError(t, os.WriteFile(filepath.Join(modelDir, file), []byte("x"), 0o600))
	}
	require.True(t, c.IsDownloaded(model))
}

func TestRemoteKindsAlwaysDownloaded(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	model, err := c.Lookup("cloud-openai")
	require.NoError(t, err)
	require.True(t, c.IsDownloaded(model))
}

func TestOpenRejectsBadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")

	require.NoError(t, os.WriteFile(path, []byte("models: []\n"), 0o600))
	_, err := Open(path, dir)
	require.Error(t, err)

	dup := "models:\n  - id: a\n    kind: cloud-openai\n  - id: a\n    kind: cloud-groq\n"
	require.NoError(t, os.WriteFile(path, []byte(dup), 0o600))
	_, err = Open(path, dir)
	require.ErrorContains(t, err, "duplicate")

	localNoFiles := "models:\n  - id: a\n    kind: whisper\n"
	require.NoError(t, os.WriteFile(path, []byte(localNoFiles), 0o600))
	_, err = Open(path, dir)
	require.ErrorContains(t, err, "no files")
}
