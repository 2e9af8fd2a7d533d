// Package session runs the controller state machine that drives a fixed
// worker roster through initialization, render/snapshot, and camera-move
// phases (spec §4.5).
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hatchway/raycoord/internal/frame"
	"github.com/hatchway/raycoord/internal/roster"
)

// Controller owns the worker roster and the shared frame buffer for one
// session and tracks which state of §4.5's machine it currently occupies.
type Controller struct {
	Workers []*roster.Worker
	Buf     *frame.Buffer
	Timeout time.Duration
	Log     *slog.Logger

	state State
	mu    sync.Mutex
}

// New builds a controller already past the Listening state: the caller is
// expected to have obtained workers via roster.Accept.
func New(workers []*roster.Worker, buf *frame.Buffer, timeout time.Duration, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{Workers: workers, Buf: buf, Timeout: timeout, Log: log, state: Idle}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.Log.Debug("session state transition", "state", s.String())
}

// InitAll runs INFO/SETSCENE on every worker in parallel, transitioning
// Idle → Initializing → Idle. Any worker's failure aborts the whole call
// and terminates the session.
func (c *Controller) InitAll(width, height int, scenePath string) error {
	c.setState(Initializing)

	errs := make([]error, len(c.Workers))
	var wg sync.WaitGroup
	for i, w := range c.Workers {
		wg.Add(1)
		go func(i int, w *roster.Worker) {
			defer wg.Done()
			errs[i] = c.initOne(w, width, height, scenePath)
		}(i, w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			c.setState(Terminated)
			return err
		}
	}
	c.setState(Idle)
	return nil
}

func (c *Controller) initOne(w *roster.Worker, width, height int, scenePath string) error {
	d := w.Driver(c.Timeout)

	if err := d.Send(fmt.Sprintf("INFO %d %d", width, height)); err != nil {
		return fmt.Errorf("worker %d: %w", w.ID, err)
	}
	if _, _, err := d.Expect("INFODONE"); err != nil {
		return fmt.Errorf("worker %d: %w", w.ID, err)
	}

	if err := d.Send("SETSCENE " + scenePath); err != nil {
		return fmt.Errorf("worker %d: %w", w.ID, err)
	}
	if _, _, err := d.Expect("SETSCENEDONE"); err != nil {
		return fmt.Errorf("worker %d: %w", w.ID, err)
	}
	return nil
}

// RenderAll runs one full render pass, transitioning Idle → Rendering →
// Idle. The buffer is mutated in place; callers snapshot it separately.
func (c *Controller) RenderAll() error {
	c.setState(Rendering)
	if err := frame.RenderAll(c.Workers, c.Buf, c.Timeout); err != nil {
		c.setState(Terminated)
		return err
	}
	c.setState(Idle)
	return nil
}

// BroadcastCAM sends one CAM mnemonic to every worker in turn, waiting for
// that worker's CAMDONE before moving to the next, transitioning
// Idle → Moving → Idle. Workers are driven sequentially (not in parallel)
// so every worker's scene state stays in lockstep (spec §4.5).
func (c *Controller) BroadcastCAM(mnemonic string) error {
	c.setState(Moving)
	for _, w := range c.Workers {
		d := w.Driver(c.Timeout)
		if err := d.Send("CAM " + mnemonic); err != nil {
			c.setState(Terminated)
			return fmt.Errorf("worker %d: %w", w.ID, err)
		}
		if _, _, err := d.Expect("CAMDONE"); err != nil {
			c.setState(Terminated)
			return fmt.Errorf("worker %d: %w", w.ID, err)
		}
	}
	c.setState(Idle)
	return nil
}

// Terminate closes every worker connection and moves to Terminated. Safe
// to call from any state, including after a fatal error.
func (c *Controller) Terminate() {
	c.setState(Terminated)
	for _, w := range c.Workers {
		w.Close()
	}
}
