// Package manifest writes a msgpack-encoded sidecar file alongside each
// persisted snapshot, recording which worker produced which row band —
// useful for post-hoc debugging of a render (not part of the wire
// protocol; opt-in, see cmd/raycoord).
package manifest

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/hatchway/raycoord/internal/band"
	"github.com/hatchway/raycoord/internal/roster"
)

// WorkerBand records one worker's identity and the row range it rendered.
type WorkerBand struct {
	WorkerID int    `msgpack:"worker_id"`
	Addr     string `msgpack:"addr"`
	Name     string `msgpack:"name"`
	RowStart int    `msgpack:"row_start"`
	RowEnd   int    `msgpack:"row_end"`
}

// Manifest describes one rendered frame: its index in a scripted
// sequence (0 for a single-snapshot run), its dimensions, and the
// worker roster's row assignment for that frame.
type Manifest struct {
	Cycle  int          `msgpack:"cycle"`
	Width  int          `msgpack:"width"`
	Height int          `msgpack:"height"`
	Bands  []WorkerBand `msgpack:"bands"`
}

// Build assembles a Manifest from the current roster and frame
// dimensions, using the same band assignment the render phase used.
func Build(cycle, width, height int, workers []*roster.Worker) Manifest {
	ranges := band.Assign(len(workers), height)
	bands := make([]WorkerBand, len(workers))
	for i, w := range workers {
		bands[i] = WorkerBand{
			WorkerID: w.ID,
			Addr:     w.Addr,
			Name:     w.Name,
			RowStart: ranges[i].Start,
			RowEnd:   ranges[i].End,
		}
	}
	return Manifest{Cycle: cycle, Width: width, Height: height, Bands: bands}
}

// Write msgpack-encodes m and writes it to path.
func Write(m Manifest, path string) error {
	data, err := msgpack.Marshal(m)
	if err != nil {
		return fmt.Errorf("manifest: encoding: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("manifest: writing %s: %w", path, err)
	}
	return nil
}

// SidecarPath returns the manifest path for a given snapshot path,
// following the "<snapshot>.manifest" naming convention.
func SidecarPath(snapshotPath string) string {
	return snapshotPath + ".manifest"
}
