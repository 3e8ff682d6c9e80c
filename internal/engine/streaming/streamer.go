package streaming

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/engine/terrain"
)

// Streamer accepts tile-load requests, dispatches them to the worker pool,
// caches finished tiles and merges completed work under a per-frame budget.
//
// Ownership: the cache, the request table and the stats belong to the thread
// that calls RequestTileLoad/Update/GetLoadedTile. Workers communicate only
// through the pending and completed channels and never touch shared maps;
// that single-writer rule is what makes the rest of the struct lock-free.
type Streamer struct {
	cfg      Config
	log      *zap.Logger
	pipeline *terrain.Pipeline

	cache    *TileCache
	requests map[int32]*request
	inflight map[terrain.TileKey]int32 // pending (position, lod) -> request id
	nextID   int32
	clock    float64
	stats    Stats

	pending   chan job
	completed chan result
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// job is the value copy a worker receives; it carries everything generation
// needs so the worker never reads the request table.
type job struct {
	id         int32
	pos        mgl32.Vec2
	tileSize   float32
	resolution int
	lod        int
	gen        terrain.GenerationConfig
}

// result is the worker's hand-off back to the update thread.
type result struct {
	id   int32
	tile *terrain.TileData
	err  error
}

// request is the update thread's bookkeeping for one load.
type request struct {
	id          int32
	key         terrain.TileKey
	pos         mgl32.Vec2
	tileSize    float32
	resolution  int
	lod         int
	priority    int
	distance    float32
	requestTime float64 // orchestrator clock seconds
	complete    bool
	err         error
	tile        *terrain.TileData
}

// New builds a streamer over the given pipeline and starts the worker pool
// when background threads are enabled; otherwise generation runs inline on
// the requesting thread.
func New(cfg Config, pipeline *terrain.Pipeline, log *zap.Logger) *Streamer {
	cfg = cfg.sanitized()
	s := &Streamer{
		cfg:      cfg,
		log:      log,
		pipeline: pipeline,
		cache:    NewTileCache(cfg.MaxCacheSize),
		requests: make(map[int32]*request),
		inflight: make(map[terrain.TileKey]int32),
		pending:  make(chan job, cfg.MaxPendingRequests),
		// Headroom for results whose requests were cancelled before a drain.
		completed: make(chan result, 2*cfg.MaxPendingRequests),
		done:      make(chan struct{}),
	}

	if cfg.UseBackgroundThreads {
		for i := 0; i < cfg.NumWorkerThreads; i++ {
			s.wg.Add(1)
			go s.worker()
		}
		log.Info("tile streamer started",
			zap.Int("workers", cfg.NumWorkerThreads),
			zap.Int("max_cache", cfg.MaxCacheSize),
			zap.Int("max_pending", cfg.MaxPendingRequests))
	} else {
		log.Info("tile streamer in inline mode")
	}
	return s
}

// worker pulls jobs until shutdown, generating tiles and pushing fully formed
// results. Generation errors ride back on the result instead of crashing the
// pool.
func (s *Streamer) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case j := <-s.pending:
			tile, err := s.pipeline.GenerateTile(j.pos, j.tileSize, j.resolution, j.lod, j.gen)
			select {
			case s.completed <- result{id: j.id, tile: tile, err: err}:
			case <-s.done:
				return
			}
		}
	}
}

// RequestTileLoad asks for the tile at (position, lod). A cached tile is
// served as an immediately complete request and counted as a hit. A request
// already in flight for the same key returns the existing id rather than
// queuing duplicate generation. When the request table is at capacity the
// call is refused with -1 and no state changes.
func (s *Streamer) RequestTileLoad(pos mgl32.Vec2, tileSize float32, lod, resolution int, gen terrain.GenerationConfig, priority int, viewerPos mgl32.Vec2) int32 {
	key := terrain.Quantize(pos, int32(lod))

	if tile := s.cache.Get(key, s.clock); tile != nil {
		s.stats.CacheHits++
		id := s.allocID()
		s.requests[id] = &request{
			id: id, key: key, pos: pos, tileSize: tileSize,
			resolution: resolution, lod: lod, priority: priority,
			requestTime: s.clock, complete: true, tile: tile,
		}
		return id
	}
	s.stats.CacheMisses++

	if id, ok := s.inflight[key]; ok {
		return id
	}
	if len(s.requests) >= s.cfg.MaxPendingRequests {
		return -1
	}

	id := s.allocID()
	req := &request{
		id: id, key: key, pos: pos, tileSize: tileSize,
		resolution: resolution, lod: lod, priority: priority,
		distance:    viewerPos.Sub(pos).Len(),
		requestTime: s.clock,
	}

	if s.cfg.UseBackgroundThreads {
		select {
		case s.pending <- job{id: id, pos: pos, tileSize: tileSize, resolution: resolution, lod: lod, gen: gen}:
		default:
			// Queue full even though the table had room; refuse like any
			// other backpressure case.
			return -1
		}
		s.requests[id] = req
		s.inflight[key] = id
		return id
	}

	s.requests[id] = req
	s.inflight[key] = id
	tile, err := s.pipeline.GenerateTile(pos, tileSize, resolution, lod, gen)
	res := result{id: id, tile: tile, err: err}
	select {
	case s.completed <- res:
	default:
		// Inline mode runs on the owning thread, so merging directly is safe
		// when the queue is saturated.
		s.mergeResult(res)
	}
	return id
}

// IsTileReady reports whether the request has completed, successfully or not.
func (s *Streamer) IsTileReady(id int32) bool {
	req, ok := s.requests[id]
	return ok && req.complete
}

// GetLoadedTile retrieves and removes a completed request. A request that
// completed with a generation error is removed, logged, and reported as
// unavailable; the caller may retry with a fresh RequestTileLoad.
func (s *Streamer) GetLoadedTile(id int32) (*terrain.TileData, bool) {
	req, ok := s.requests[id]
	if !ok || !req.complete {
		return nil, false
	}
	delete(s.requests, id)
	if req.err != nil {
		s.log.Warn("discarding failed tile request",
			zap.Int32("request", id), zap.Error(req.err))
		return nil, false
	}
	return req.tile, true
}

// CancelRequest drops the bookkeeping for a request. An in-flight worker is
// not interrupted; its result is silently discarded at the next drain. This
// is fire-and-forget cancellation, not preemption.
func (s *Streamer) CancelRequest(id int32) {
	req, ok := s.requests[id]
	if !ok {
		return
	}
	delete(s.requests, id)
	if existing, live := s.inflight[req.key]; live && existing == id {
		delete(s.inflight, req.key)
	}
}

// Update advances the orchestrator clock, drains completed work under the
// frame budget, and refreshes the telemetry snapshot. Call once per frame.
func (s *Streamer) Update(deltaTime float64) {
	s.clock += deltaTime
	s.stats.TilesLoadedFrame = 0

	start := time.Now()
	processed := s.drainCompleted(start)

	s.stats.TilesLoadedFrame = processed
	s.stats.LastFrameTimeMs = float64(time.Since(start)) / float64(time.Millisecond)

	pending := 0
	for _, req := range s.requests {
		if !req.complete {
			pending++
		}
	}
	s.stats.PendingRequests = pending
	s.stats.CachedTiles = s.cache.Len()
}

// drainCompleted merges finished results until the queue is empty or the
// frame budget (time or tile count) is spent. Budget is checked before each
// pop, so unbudgeted results simply stay queued for the next frame and
// nothing is dropped.
func (s *Streamer) drainCompleted(start time.Time) int {
	processed := 0
	for processed < s.cfg.MaxTilesPerFrame {
		if float64(time.Since(start))/float64(time.Millisecond) >= s.cfg.MaxFrameTimeMs {
			break
		}
		select {
		case res := <-s.completed:
			s.mergeResult(res)
			processed++
		default:
			return processed
		}
	}
	return processed
}

// mergeResult copies a worker result into its request, caches successful
// tiles, and updates the load-time average. Results for cancelled requests
// are discarded.
func (s *Streamer) mergeResult(res result) {
	req, ok := s.requests[res.id]
	if !ok {
		return
	}
	req.complete = true
	req.err = res.err
	req.tile = res.tile
	delete(s.inflight, req.key)

	if res.err != nil {
		s.log.Warn("tile generation failed",
			zap.Int32("request", res.id), zap.Error(res.err))
	} else {
		s.cache.Add(res.tile, s.clock)
	}

	s.stats.CompletedRequests++
	loadMs := (s.clock - req.requestTime) * 1000
	n := float64(s.stats.CompletedRequests)
	s.stats.AverageLoadTimeMs += (loadMs - s.stats.AverageLoadTimeMs) / n
}

// Stats returns a copy of the telemetry snapshot.
func (s *Streamer) Stats() Stats {
	return s.stats
}

// ResetStats zeroes the counters. Gauges are refreshed on the next Update.
func (s *Streamer) ResetStats() {
	s.stats = Stats{}
}

// IsTileCached reports whether (position, lod) is in the cache.
func (s *Streamer) IsTileCached(pos mgl32.Vec2, lod int) bool {
	return s.cache.Contains(terrain.Quantize(pos, int32(lod)))
}

// GetCachedTile returns the cached tile for (position, lod), bumping its
// recency.
func (s *Streamer) GetCachedTile(pos mgl32.Vec2, lod int) (*terrain.TileData, bool) {
	tile := s.cache.Get(terrain.Quantize(pos, int32(lod)), s.clock)
	return tile, tile != nil
}

// AddToCache inserts a tile directly, evicting as needed.
func (s *Streamer) AddToCache(tile *terrain.TileData) {
	s.cache.Add(tile, s.clock)
}

// ClearCache drops every cached tile.
func (s *Streamer) ClearCache() {
	s.cache.Clear()
}

// CacheLen returns the number of cached tiles.
func (s *Streamer) CacheLen() int {
	return s.cache.Len()
}

// Shutdown stops the worker pool and waits for every worker to exit before
// returning, so no worker outlives the orchestrator's state.
func (s *Streamer) Shutdown() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
	s.log.Info("tile streamer stopped")
}

func (s *Streamer) allocID() int32 {
	s.nextID++
	return s.nextID
}
