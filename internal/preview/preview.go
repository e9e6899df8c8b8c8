// Package preview exports WebP thumbnails of decrypted images so a batch
// run can be eyeballed without opening every file.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// WriteThumb decodes PNG data, scales it so the longer side is at most
// size pixels, and writes it as WebP to outPath.
func WriteThumb(pngData []byte, outPath string, size int) error {
	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return fmt.Errorf("preview: decode png: %w", err)
	}

	img := scaleDown(src, size)

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("preview: webp encode: %w", err)
	}
	return nil
}

// scaleDown fits src into a size×size box, preserving aspect ratio.
// Images already small enough are converted without resampling.
func scaleDown(src image.Image, size int) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if w <= size && h <= size {
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}

	if w >= h {
		h = max(1, h*size/w)
		w = size
	} else {
		w = max(1, w*size/h)
		h = size
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
