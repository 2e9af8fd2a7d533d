package config

import "time"

// Default returns the coordinator's configuration before any CLI flags
// or YAML overlay are applied (spec §6.1).
func Default() Config {
	return Config{
		BindAddr:       "127.0.0.1",
		BindPort:       1234,
		ClientCount:    1,
		ReadTimeout:    10 * time.Second,
		Verbosity:      0,
		ScriptedCycles: 5,
		OutDir:         ".",
		WSAddr:         "127.0.0.1:8080",
	}
}
