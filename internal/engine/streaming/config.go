package streaming

import "runtime"

// Config fixes the orchestrator's resource bounds. Immutable once the
// orchestrator is created.
type Config struct {
	NumWorkerThreads     int     `yaml:"num_worker_threads"`
	MaxCacheSize         int     `yaml:"max_cache_size"`
	MaxPendingRequests   int     `yaml:"max_pending_requests"`
	MaxFrameTimeMs       float64 `yaml:"max_frame_time_ms"`
	MaxTilesPerFrame     int     `yaml:"max_tiles_per_frame"`
	UseBackgroundThreads bool    `yaml:"use_background_threads"`
}

// DefaultConfig sizes the pool to the machine and keeps the per-frame drain
// under two milliseconds.
func DefaultConfig() Config {
	return Config{
		NumWorkerThreads:     max(runtime.NumCPU()-1, 1),
		MaxCacheSize:         256,
		MaxPendingRequests:   64,
		MaxFrameTimeMs:       2,
		MaxTilesPerFrame:     8,
		UseBackgroundThreads: true,
	}
}

// sanitized clamps degenerate values so a zero-value or hand-edited config
// cannot wedge the orchestrator.
func (c Config) sanitized() Config {
	if c.NumWorkerThreads < 1 {
		c.NumWorkerThreads = 1
	}
	if c.MaxCacheSize < 1 {
		c.MaxCacheSize = 1
	}
	if c.MaxPendingRequests < 1 {
		c.MaxPendingRequests = 1
	}
	if c.MaxTilesPerFrame < 1 {
		c.MaxTilesPerFrame = 1
	}
	if c.MaxFrameTimeMs <= 0 {
		c.MaxFrameTimeMs = 1
	}
	return c
}
