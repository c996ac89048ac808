// wallpaper.go - Pluggable desktop wallpaper decoding

package displaystack

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

const (
	maxWallpaperW = 1920
	maxWallpaperH = 1080
	maxWallpaper  = maxWallpaperW * maxWallpaperH
)

// Wallpaper holds decoded desktop background pixels in a fixed-capacity
// buffer. HasWallpaper is the feature flag; when false, DS paints the
// solid desktop color instead.
type Wallpaper struct {
	pixels       [maxWallpaper]uint32
	w, h         int
	HasWallpaper bool
}

// WallpaperDecoder is the pluggable "bytes -> (w,h,pixels) or failure"
// contract called out by spec.md's open question on JPEG decoding: the
// composition path does not care which concrete decoder produced the
// pixels.
type WallpaperDecoder interface {
	Decode(data []byte) (w, h int, pixels []uint32, err error)
}

// stdlibImageDecoder delegates to image.Decode, which dispatches to any
// format registered via a blank image import (jpeg, png, and x/image/bmp
// are registered by this file's imports).
type stdlibImageDecoder struct{}

func (stdlibImageDecoder) Decode(data []byte) (int, int, []uint32, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, nil, &DisplayError{Operation: "wallpaper_decode", Details: "unsupported or corrupt image", Err: err}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || w*h > maxWallpaper {
		return 0, 0, nil, &DisplayError{Operation: "wallpaper_decode", Details: "decoded dimensions exceed capacity"}
	}
	pixels := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			pixels[y*w+x] = (uint32(r>>8) << 16) | (uint32(g>>8) << 8) | uint32(bl>>8)
		}
	}
	return w, h, pixels, nil
}

// DefaultWallpaperDecoder is the decoder wired by main when none is
// otherwise configured.
var DefaultWallpaperDecoder WallpaperDecoder = stdlibImageDecoder{}

// Load decodes data with the given decoder and installs the result.
// On decode failure, HasWallpaper is left false (solid-color fallback) and
// the error is returned for logging only — it never aborts DS init.
func (w *Wallpaper) Load(data []byte, dec WallpaperDecoder) error {
	if dec == nil {
		dec = DefaultWallpaperDecoder
	}
	width, height, pixels, err := dec.Decode(data)
	if err != nil {
		w.HasWallpaper = false
		return err
	}
	w.w, w.h = width, height
	copy(w.pixels[:], pixels)
	w.HasWallpaper = true
	return nil
}

// Clear disables the wallpaper, reverting to solid desktop color.
func (w *Wallpaper) Clear() {
	w.HasWallpaper = false
}

// sampleNearest returns the wallpaper pixel that nearest-neighbour maps to
// screen position (x,y) for a screen of size screenW×screenH.
func (w *Wallpaper) sampleNearest(x, y, screenW, screenH int) uint32 {
	if w.w <= 0 || w.h <= 0 {
		return 0
	}
	sx := x * w.w / screenW
	sy := y * w.h / screenH
	if sx >= w.w {
		sx = w.w - 1
	}
	if sy >= w.h {
		sy = w.h - 1
	}
	return w.pixels[sy*w.w+sx]
}
