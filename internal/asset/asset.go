// Package asset holds decoded images for the lifetime of a single request.
package asset

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxPixels bounds the declared size of any image accepted for decoding.
const MaxPixels = 50_000_000

var (
	ErrEmpty    = errors.New("empty image")
	ErrTooLarge = errors.New("image too large")
)

// Asset is a decoded raster image, independent of the file format it came from.
type Asset struct {
	Image  image.Image
	Format string
}

// Decode reads the image header before the pixel data and refuses images
// declaring more than MaxPixels.
func Decode(r io.Reader) (*Asset, error) {
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &header))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, ErrTooLarge)
	}

	img, format, err := image.Decode(io.MultiReader(&header, r))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmpty
	}
	return &Asset{Image: img, Format: format}, nil
}

func DecodeBytes(data []byte) (*Asset, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return Decode(bytes.NewReader(data))
}

func (a *Asset) Width() int  { return a.Image.Bounds().Dx() }
func (a *Asset) Height() int { return a.Image.Bounds().Dy() }

func (a *Asset) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, a.Image); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// Fit scales the asset down so that its longer edge is at most maxEdge,
// keeping the aspect ratio. Assets that already fit, or a maxEdge <= 0,
// come back unchanged.
func (a *Asset) Fit(maxEdge int) *Asset {
	w, h := a.Width(), a.Height()
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return a
	}

	nw, nh := maxEdge, maxEdge
	if w >= h {
		nh = max(1, h*maxEdge/w)
	} else {
		nw = max(1, w*maxEdge/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), a.Image, a.Image.Bounds(), draw.Over, nil)
	return &Asset{Image: dst, Format: a.Format}
}

// DataURI renders PNG bytes for inline display in a page.
func DataURI(pngData []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
}
