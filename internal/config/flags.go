package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagWorkers  = flag.Int("workers", 0, "Traversal worker count")
	flagStrategy = flag.String("strategy", "", "Traversal strategy: single, local_merge, shared_accumulator")
	flagOverflow = flag.String("overflow", "", "Instance overflow policy: reject, split")
	flagBackend  = flag.String("backend", "", "Graphics backend: headless, gl")
	flagFrames   = flag.Int("frames", 0, "Frames to run in bench")
	flagHidden   = flag.Bool("hidden", false, "Render the gl backend into a hidden window")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWorkers > 0 {
		cfg.Scene.Workers = *flagWorkers
	}
	if *flagStrategy != "" {
		cfg.Scene.Strategy = *flagStrategy
	}
	if *flagOverflow != "" {
		cfg.Scene.Overflow = *flagOverflow
	}
	if *flagBackend != "" {
		cfg.Graphics.Backend = *flagBackend
	}
	if *flagFrames > 0 {
		cfg.Bench.Frames = *flagFrames
	}
	if *flagHidden {
		cfg.Graphics.Hidden = true
	}
}
