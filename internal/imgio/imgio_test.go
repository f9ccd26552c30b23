package imgio

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.White)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path) //nolint:gosec // test fixture path is controlled
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a.png"))
	assert.True(t, IsSupported("A.JPG"))
	assert.False(t, IsSupported("a.gif"))
	assert.False(t, IsSupported(""))
}

func TestLoadDecodesPNG(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "sample.png", 32, 16)

	img, meta, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32, meta.Width)
	assert.Equal(t, 16, meta.Height)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world\n"), 0o600))

	_, _, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}

func TestLoadAllPreservesOrderAndIsolatesErrors(t *testing.T) {
	dir := t.TempDir()
	good1 := writePNG(t, dir, "one.png", 8, 8)
	good2 := writePNG(t, dir, "two.png", 8, 8)
	badPath := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(badPath, []byte("not an image"), 0o600))

	results := LoadAll([]string{good1, badPath, good2})
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, good1, results[0].Path)
	assert.Equal(t, badPath, results[1].Path)
	assert.Equal(t, good2, results[2].Path)
}
