// Package config assembles the coordinator's configuration from defaults,
// an optional YAML overlay, and CLI flags, then validates it (spec
// §6.1).
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every knob the coordinator's CLI exposes.
type Config struct {
	Scene           string        `yaml:"scene"`
	Width           int           `yaml:"width"`
	Height          int           `yaml:"height"`
	BindAddr        string        `yaml:"bind_addr"`
	BindPort        int           `yaml:"bind_port"`
	ClientCount     int           `yaml:"client_count"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	Verbosity       int           `yaml:"verbosity"`
	Interactive     bool          `yaml:"interactive"`
	WSAddr          string        `yaml:"ws_addr"`
	OutDir          string        `yaml:"out_dir"`
	ScriptedCycles  int           `yaml:"scripted_cycles"`
	ManifestEnabled bool          `yaml:"manifest"`
}

// Addr returns the host:port the roster acceptor should bind.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.BindAddr, c.BindPort)
}

// Validate enforces the structural invariants the rest of the
// coordinator assumes hold (spec §4.1, §6.1).
func (c Config) Validate() error {
	if c.Width <= 0 || c.Width%64 != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWidth, c.Width)
	}
	if c.Height <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidHeight, c.Height)
	}
	if c.ClientCount < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidClientCount, c.ClientCount)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidTimeout, c.ReadTimeout)
	}
	if c.Scene == "" {
		return ErrMissingScene
	}
	return nil
}

// LoadOverlay reads a YAML file at path and merges its fields onto base,
// returning the result. A field absent from the YAML document leaves
// base's value untouched, since yaml.Unmarshal only writes the keys it
// finds.
func LoadOverlay(base Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("config: reading overlay %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &base); err != nil {
		return base, fmt.Errorf("config: parsing overlay %s: %w", path, err)
	}
	return base, nil
}

// overlayPath scans args for "-config"/"--config" without going through
// flag.Parse, so the overlay can be loaded before the real flag set's
// defaults are fixed.
func overlayPath(args []string) string {
	for i, a := range args {
		switch {
		case a == "-config" || a == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case len(a) > 8 && a[:8] == "-config=":
			return a[8:]
		case len(a) > 9 && a[:9] == "--config=":
			return a[9:]
		}
	}
	return ""
}

// ParseFlags builds the effective configuration from Default(), an
// optional YAML overlay named by "-config", and fs's flags (in that
// precedence order, lowest to highest). args excludes the program name.
func ParseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Default()

	if path := overlayPath(args); path != "" {
		var err error
		cfg, err = LoadOverlay(cfg, path)
		if err != nil {
			return cfg, err
		}
	}

	var discardConfig string
	var timeoutSecs float64
	var verbosity countFlag

	fs.StringVar(&discardConfig, "config", "", "path to a YAML configuration overlay")
	fs.StringVar(&cfg.Scene, "s", cfg.Scene, "scene file path, sent verbatim in SETSCENE")
	fs.IntVar(&cfg.Width, "w", cfg.Width, "frame width, must be a multiple of 64")
	fs.IntVar(&cfg.Height, "y", cfg.Height, "frame height")
	fs.StringVar(&cfg.BindAddr, "a", cfg.BindAddr, "bind address")
	fs.IntVar(&cfg.BindPort, "p", cfg.BindPort, "bind port")
	fs.IntVar(&cfg.ClientCount, "c", cfg.ClientCount, "number of workers to await")
	fs.Float64Var(&timeoutSecs, "t", cfg.ReadTimeout.Seconds(), "per-read timeout in seconds")
	fs.Var(&verbosity, "v", "increase verbosity (repeatable, 0-4)")
	fs.BoolVar(&cfg.Interactive, "i", cfg.Interactive, "run the interactive camera-driven variant")
	fs.StringVar(&cfg.WSAddr, "ws", cfg.WSAddr, "websocket bind address for the interactive preview window")
	fs.StringVar(&cfg.OutDir, "o", cfg.OutDir, "output directory for snapshots")
	fs.IntVar(&cfg.ScriptedCycles, "cycles", cfg.ScriptedCycles, "number of render/snapshot/camera cycles in the scripted variant")
	fs.BoolVar(&cfg.ManifestEnabled, "manifest", cfg.ManifestEnabled, "write a msgpack manifest sidecar alongside each snapshot")

	if err := fs.Parse(args); err != nil {
		return cfg, fmt.Errorf("config: parsing flags: %w", err)
	}

	cfg.ReadTimeout = time.Duration(timeoutSecs * float64(time.Second))
	if int(verbosity) > 0 {
		cfg.Verbosity = int(verbosity)
	}

	return cfg, nil
}

// countFlag implements flag.Value for a repeatable "-v -v -v" style flag.
type countFlag int

func (c *countFlag) String() string { return fmt.Sprintf("%d", int(*c)) }
func (c *countFlag) Set(string) error {
	*c++
	return nil
}

// IsBoolFlag lets "-v" stand alone instead of consuming the next argument.
func (c *countFlag) IsBoolFlag() bool { return true }
