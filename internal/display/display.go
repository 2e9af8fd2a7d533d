// Package display holds the external window-surface collaborator (spec
// §9): something the controller hands a finished frame to for on-screen
// preview. The coordinator itself never draws.
package display

import "github.com/hatchway/raycoord/internal/frame"

// Surface receives a finished frame buffer for presentation. Show must
// not retain buf beyond the call: the controller reuses the backing
// array on the next render.
type Surface interface {
	Show(buf *frame.Buffer) error
}

// NullSurface discards every frame. Used in headless/scripted runs where
// no preview window is wanted.
type NullSurface struct{}

// Show implements Surface by doing nothing.
func (NullSurface) Show(buf *frame.Buffer) error { return nil }
