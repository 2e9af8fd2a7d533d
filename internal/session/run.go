package session

import (
	"fmt"

	"github.com/hatchway/raycoord/internal/camera"
	"github.com/hatchway/raycoord/internal/display"
	"github.com/hatchway/raycoord/internal/snapshot"
)

// RunSingle drives the simplest deployment: one render, one snapshot
// saved to outPath, no camera movement (spec scenario 1).
func (c *Controller) RunSingle(enc snapshot.Encoder, surf display.Surface, outPath string) error {
	if surf == nil {
		surf = display.NullSurface{}
	}
	if err := c.RenderAll(); err != nil {
		return err
	}
	if err := snapshot.Save(enc, c.Buf, outPath); err != nil {
		return err
	}
	return surf.Show(c.Buf)
}

// RunScripted drives the batch variant: cycles repetitions of
// render → snapshot → camera-forward, each snapshot named per
// snapshot.Filename and emitted before that cycle's camera move (spec
// scenario 4). surf previews every rendered frame; a NullSurface is the
// usual choice for a headless batch run.
func (c *Controller) RunScripted(cycles int, enc snapshot.Encoder, surf display.Surface, outDir string) error {
	if surf == nil {
		surf = display.NullSurface{}
	}
	for cycle := 1; cycle <= cycles; cycle++ {
		if err := c.RenderAll(); err != nil {
			return fmt.Errorf("cycle %d: %w", cycle, err)
		}
		if err := snapshot.Save(enc, c.Buf, outDir+"/"+snapshot.Filename(cycle)); err != nil {
			return fmt.Errorf("cycle %d: %w", cycle, err)
		}
		if err := surf.Show(c.Buf); err != nil {
			return fmt.Errorf("cycle %d: %w", cycle, err)
		}
		if err := c.BroadcastCAM(camera.TranslateForward); err != nil {
			return fmt.Errorf("cycle %d: %w", cycle, err)
		}
	}
	return nil
}

// RunInteractive drives the interactive variant: for every key event,
// broadcast its mnemonic, render, and show the result; on quit, persist
// one final snapshot to outPath and return (spec scenario 5).
func (c *Controller) RunInteractive(source camera.Source, enc snapshot.Encoder, surf display.Surface, outPath string) error {
	if surf == nil {
		surf = display.NullSurface{}
	}
	for {
		mnemonic, quit, err := source.Next()
		if err != nil {
			return fmt.Errorf("camera input: %w", err)
		}
		if quit {
			break
		}

		if err := c.BroadcastCAM(mnemonic); err != nil {
			return err
		}
		if err := c.RenderAll(); err != nil {
			return err
		}
		if err := surf.Show(c.Buf); err != nil {
			return fmt.Errorf("display: %w", err)
		}
	}
	return snapshot.Save(enc, c.Buf, outPath)
}
