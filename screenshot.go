package peel

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled screenshot to be captured at the end of the
// next Draw. The PNG is written to the app's screenshot directory with a
// timestamped filename.
func (a *App) Screenshot(label string) {
	a.screenshotQueue = append(a.screenshotQueue, label)
}

// flushScreenshots captures the rendered frame once for every queued label.
func (a *App) flushScreenshots(screen *ebiten.Image) {
	if len(a.screenshotQueue) == 0 {
		return
	}
	defer func() { a.screenshotQueue = a.screenshotQueue[:0] }()

	if err := os.MkdirAll(a.screenshotDir, 0o755); err != nil {
		a.log.Error("screenshot", "dir", a.screenshotDir, "err", err)
		return
	}

	img := readNRGBA(screen)
	stamp := time.Now().Format("20060102_150405")
	for _, label := range a.screenshotQueue {
		path := filepath.Join(a.screenshotDir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			a.log.Error("screenshot", "err", err)
			continue
		}
		a.log.Info("screenshot saved", "path", path)
	}
}

// readNRGBA reads back an ebiten image as straight-alpha NRGBA.
func readNRGBA(src *ebiten.Image) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	src.ReadPixels(pixels)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	unpremultiply(img.Pix, pixels)
	return img
}

// unpremultiply converts premultiplied RGBA bytes in src to straight alpha
// in dst.
func unpremultiply(dst, src []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		r, g, b, a := src[i], src[i+1], src[i+2], src[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		dst[i], dst[i+1], dst[i+2], dst[i+3] = r, g, b, a
	}
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
