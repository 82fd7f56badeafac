// Package spriteio decodes sprite files into raw pixel buffers and writes the
// generated maps back to disk.
package spriteio

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg" // Register JPEG decoder

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/MeKo-Tech/spritemaps/internal/pixel"
)

// Load opens and decodes the image at path.
func Load(path string) (pixel.Raw, error) {
	file, err := os.Open(path)
	if err != nil {
		return pixel.Raw{}, fmt.Errorf("failed to open sprite %s: %w", path, err)
	}
	defer file.Close()

	raw, _, err := Decode(file)
	if err != nil {
		return pixel.Raw{}, fmt.Errorf("failed to decode sprite %s: %w", path, err)
	}
	return raw, nil
}

// Decode reads any registered image format and returns its raw buffer and format name.
func Decode(r io.Reader) (pixel.Raw, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return pixel.Raw{}, "", err
	}
	return pixel.FromImage(img), format, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePNG writes img to path, creating parent directories.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// BaseName returns the file name of path without directory and extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
