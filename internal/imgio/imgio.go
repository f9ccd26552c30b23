// Package imgio decodes raster image files into contiguous RGB buffers the
// rest of the core can feed directly to internal/imgtensor, and implements
// the image-loader collaborator named in spec §6. Grounded on the teacher's
// internal/utils/image_io.go (LoadImage/BatchLoadImages/ImageMetadata).
package imgio

import (
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder

	"github.com/jrbeckett/speedreader/internal/ocrerr"
)

// SupportedExtensions lists the file extensions this loader recognizes.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff"}

// IsSupported reports whether path has a recognized image extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Metadata captures lightweight file and pixel information alongside a
// decoded image.
type Metadata struct {
	Path      string
	Format    string
	SizeBytes int64
	Width     int
	Height    int
}

// Load decodes an image file into a contiguous *image.NRGBA (via
// imaging.Clone, so the result always satisfies imgtensor's contiguity
// requirement regardless of the source format's native pixel layout) plus
// its metadata.
func Load(path string) (*image.NRGBA, Metadata, error) {
	if path == "" {
		return nil, Metadata{}, ocrerr.New(ocrerr.InvalidImageFormat, fmt.Errorf("imgio: empty path"))
	}
	if !IsSupported(path) {
		return nil, Metadata{}, ocrerr.New(ocrerr.InvalidImageFormat,
			fmt.Errorf("imgio: unsupported extension %q", filepath.Ext(path)))
	}

	f, err := os.Open(path) //nolint:gosec // G304: operator-provided image path is expected
	if err != nil {
		return nil, Metadata{}, ocrerr.New(ocrerr.InvalidImageFormat, fmt.Errorf("imgio: open %s: %w", path, err))
	}
	defer f.Close() //nolint:errcheck // read-only handle, nothing to recover from on close failure

	fi, err := f.Stat()
	if err != nil {
		return nil, Metadata{}, ocrerr.New(ocrerr.InvalidImageFormat, fmt.Errorf("imgio: stat %s: %w", path, err))
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, Metadata{}, ocrerr.New(ocrerr.InvalidImageFormat, fmt.Errorf("imgio: decode %s: %w", path, err))
	}

	contiguous := imaging.Clone(img)
	b := contiguous.Bounds()
	return contiguous, Metadata{
		Path:      path,
		Format:    format,
		SizeBytes: fi.Size(),
		Width:     b.Dx(),
		Height:    b.Dy(),
	}, nil
}

// LoadResult is one entry of a batch load, preserving input order even
// when individual loads fail.
type LoadResult struct {
	Path  string
	Image *image.NRGBA
	Meta  Metadata
	Err   error
}

// LoadAll loads every path in order, collecting per-path errors rather than
// aborting the batch.
func LoadAll(paths []string) []LoadResult {
	results := make([]LoadResult, 0, len(paths))
	for _, p := range paths {
		img, meta, err := Load(p)
		results = append(results, LoadResult{Path: p, Image: img, Meta: meta, Err: err})
	}
	return results
}
