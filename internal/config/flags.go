package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagListen  = flag.String("listen", "", "Stats feed listen address (enables the feed)")
	flagSeed    = flag.Int64("seed", 0, "World seed override")
	flagWorkers = flag.Int("workers", 0, "Worker thread count override")
	flagCache   = flag.Int("cache", 0, "Max cached tile count override")
	flagInline  = flag.Bool("inline", false, "Generate tiles on the main thread (no workers)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
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
	if *flagListen != "" {
		cfg.Server.Enabled = true
		cfg.Server.Listen = *flagListen
	}
	if *flagSeed != 0 {
		cfg.Generation.Seed = *flagSeed
	}
	if *flagWorkers > 0 {
		cfg.Streaming.NumWorkerThreads = *flagWorkers
	}
	if *flagCache > 0 {
		cfg.Streaming.MaxCacheSize = *flagCache
	}
	if *flagInline {
		cfg.Streaming.UseBackgroundThreads = false
	}
}
