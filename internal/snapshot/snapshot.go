// Package snapshot persists the coordinator's frame buffer to disk. The
// encoder is treated as an external, interface-only collaborator (spec
// §1, §6.3): the controller never touches image-format bytes directly.
package snapshot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/hatchway/raycoord/internal/frame"
)

// Encoder turns a frame buffer into bytes suitable for writing to disk.
type Encoder interface {
	Encode(buf *frame.Buffer) ([]byte, error)
}

// PNGEncoder produces 8-bit RGB PNGs via the standard library's image/png
// package. No PNG-encoding library appears anywhere in the retrieved
// corpus; this is the "external encoder" the spec scopes out of the
// coordinator's own concern, fulfilled with stdlib rather than a fallback.
type PNGEncoder struct{}

// Encode implements Encoder.
func (PNGEncoder) Encode(buf *frame.Buffer) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	for y := 0; y < buf.Height; y++ {
		rowOff := y * buf.Width * 3
		for x := 0; x < buf.Width; x++ {
			i := rowOff + x*3
			img.SetRGBA(x, y, color.RGBA{R: buf.Pixels[i], G: buf.Pixels[i+1], B: buf.Pixels[i+2], A: 0xff})
		}
	}

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return out.Bytes(), nil
}

// Save encodes buf with enc and writes it to path.
func Save(enc Encoder, buf *frame.Buffer, path string) error {
	data, err := enc.Encode(buf)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return nil
}

// Filename returns the spec's §6.3 naming convention: "image.png" for a
// single snapshot (cycle == 0), "imageK.png" for the Kth of a scripted
// sequence (cycle >= 1).
func Filename(cycle int) string {
	if cycle <= 0 {
		return "image.png"
	}
	return fmt.Sprintf("image%d.png", cycle)
}
