package ingest

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "claim.PNG")
	writeFile(t, path, pngBytes(t))

	got, err := NewFSIngestor(0, false, nil).Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, got.Path)
	assert.Len(t, got.HashHex, 64)
	assert.Equal(t, constants.MediaPNG, got.Document.MediaType())
	assert.Equal(t, "claim.PNG", got.Document.Filename())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("hello"))
	writeFile(t, filepath.Join(dir, "big.pdf"), bytes.Repeat([]byte("x"), 64))

	ing := NewFSIngestor(32, false, nil)

	_, err := ing.Load(filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, common.ErrUnsupportedMediaType)

	_, err = ing.Load(filepath.Join(dir, "big.pdf"))
	assert.ErrorIs(t, err, common.ErrDocumentTooLarge)

	_, err = ing.Load(filepath.Join(dir, "missing.jpg"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.pdf"), []byte("%PDF-1.4"))
	writeFile(t, filepath.Join(root, "a.jpg"), []byte("x"))
	writeFile(t, filepath.Join(root, "sub", "c.jpeg"), []byte("x"))
	writeFile(t, filepath.Join(root, "readme.md"), []byte("x"))
	writeFile(t, filepath.Join(root, ".cache", "d.png"), []byte("x"))
	writeFile(t, filepath.Join(root, ".e.png"), []byte("x"))

	paths, stats, err := NewFSIngestor(0, true, nil).Discover(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "b.pdf"),
		filepath.Join(root, "sub", "c.jpeg"),
	}, paths)
	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(3), stats.Skipped)

	paths, _, err = NewFSIngestor(0, false, nil).Discover(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, paths, 5)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, _, err := NewFSIngestor(0, false, nil).Discover(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)

	_, _, err = NewFSIngestor(0, false, nil).Discover(context.Background(), " ")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestStartWatcher(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "existing.pdf")
	writeFile(t, existing, []byte("%PDF-1.4"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    20 * time.Millisecond,
	})
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, existing, p)
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan did not emit")
	}

	created := filepath.Join(root, "new.png")
	writeFile(t, created, pngBytes(t))
	writeFile(t, filepath.Join(root, "ignored.txt"), []byte("x"))

	select {
	case p := <-events:
		assert.Equal(t, created, p)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not emit created file")
	}

	cancel()
	for range events {
	}
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
