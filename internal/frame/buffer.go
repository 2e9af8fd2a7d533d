// Package frame holds the coordinator's shared pixel buffer and the
// frame-coordinator logic that fans render work out across workers
// (spec §3, §4.4, §5).
package frame

import "fmt"

const bytesPerPixel = 3

// midGrey is the initial value of every channel in a freshly created
// buffer. Stale pixels are never cleared between frames: a later
// full-height render makes the output fully fresh, but a partial render
// would leave the untouched region holding whatever the previous frame
// left there (spec §3).
const midGrey = 0x7f

// Buffer is a row-major, 3-bytes-per-pixel (R,G,B) frame of a fixed
// width and height. The coordinator holds exactly one for the lifetime
// of a session.
type Buffer struct {
	Width  int
	Height int
	Pixels []byte
}

// New allocates a width*height*3 buffer initialized to mid-grey.
func New(width, height int) (*Buffer, error) {
	if width <= 0 || width%64 != 0 {
		return nil, fmt.Errorf("frame: width must be a positive multiple of 64, got %d", width)
	}
	if height <= 0 {
		return nil, fmt.Errorf("frame: height must be positive, got %d", height)
	}

	pixels := make([]byte, width*height*bytesPerPixel)
	for i := range pixels {
		pixels[i] = midGrey
	}
	return &Buffer{Width: width, Height: height, Pixels: pixels}, nil
}
