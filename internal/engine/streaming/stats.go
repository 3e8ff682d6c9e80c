package streaming

// Stats is the orchestrator's telemetry snapshot. It is mutated only on the
// update thread; readers get value copies.
type Stats struct {
	CacheHits         int64   `json:"cache_hits"`
	CacheMisses       int64   `json:"cache_misses"`
	PendingRequests   int     `json:"pending_requests"`
	CachedTiles       int     `json:"cached_tiles"`
	CompletedRequests int64   `json:"completed_requests"`
	AverageLoadTimeMs float64 `json:"average_load_time_ms"`
	LastFrameTimeMs   float64 `json:"last_frame_load_time_ms"`
	TilesLoadedFrame  int     `json:"tiles_loaded_this_frame"`
}
