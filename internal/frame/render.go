package frame

import (
	"fmt"
	"sync"
	"time"

	"github.com/hatchway/raycoord/internal/band"
	"github.com/hatchway/raycoord/internal/roster"
)

// RenderAll partitions buf into one disjoint byte slice per worker and
// renders each worker's band in its own goroutine, one CALCULATE/RESULT
// exchange per row, then joins. No lock guards buf: the per-worker ranges
// are disjoint by construction (spec §3, §5), so each goroutine owns an
// exclusive region for the call's duration.
//
// RenderAll waits for every task to finish, win or lose, then returns the
// first error encountered (workers are listed in roster order). Empty
// bands (more workers than rows) are skipped entirely; they still count
// toward the roster but receive no CALCULATE commands.
func RenderAll(workers []*roster.Worker, buf *Buffer, timeout time.Duration) error {
	if len(workers) == 0 {
		return nil
	}

	ranges := band.Assign(len(workers), buf.Height)
	errs := make([]error, len(workers))

	var wg sync.WaitGroup
	for i, w := range workers {
		r := ranges[i]
		if r.Empty() {
			continue
		}
		wg.Add(1)
		go func(i int, w *roster.Worker, r band.Range) {
			defer wg.Done()
			errs[i] = renderBand(w, buf, r, timeout)
		}(i, w, r)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// renderBand requests and copies in rows [r.Start, r.End) in ascending
// order, consuming exactly one reply per command sent to this worker.
func renderBand(w *roster.Worker, buf *Buffer, r band.Range, timeout time.Duration) error {
	d := w.Driver(timeout)
	offset, length := band.ByteRange(buf.Width, r)
	dst := buf.Pixels[offset : offset+length]

	for y := r.Start; y < r.End; y++ {
		cmd := fmt.Sprintf("CALCULATE 1 %d %d 1", y, buf.Width)
		if err := d.Send(cmd); err != nil {
			return fmt.Errorf("worker %d: %w", w.ID, err)
		}
		if err := d.ExpectResult(buf.Width, dst, y-r.Start); err != nil {
			return fmt.Errorf("worker %d: %w", w.ID, err)
		}
	}
	return nil
}
