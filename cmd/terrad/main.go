// Package main is the entry point for the terrastream daemon. It streams
// terrain tiles around a wandering viewer and, when enabled, publishes
// telemetry to the websocket stats feed.
package main

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/config"
	"github.com/Faultbox/terrastream/internal/engine/noise"
	"github.com/Faultbox/terrastream/internal/engine/streaming"
	"github.com/Faultbox/terrastream/internal/engine/terrain"
	"github.com/Faultbox/terrastream/internal/logger"
	"github.com/Faultbox/terrastream/internal/server"
)

const tickInterval = 16 * time.Millisecond

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("=== terrastream daemon ===", zap.Int64("seed", cfg.Generation.Seed))

	pipeline := terrain.NewPipeline(noise.NewSimplex(cfg.Generation.Seed))
	streamer := streaming.New(cfg.Streaming, pipeline, log)
	defer streamer.Shutdown()

	var hub *server.Hub
	if cfg.Server.Enabled {
		hub = server.NewHub(log)
		hub.Start(cfg.Server.Listen)
		defer func() { _ = hub.Close() }()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	run(cfg, streamer, hub, log, sig)
	log.Info("daemon closed normally")
}

// run drives the per-frame loop: move the viewer, request the surrounding
// tiles, drain completed work under the frame budget, and collect finished
// tiles the way a mesh layer would.
func run(cfg *config.Config, s *streaming.Streamer, hub *server.Hub, log *zap.Logger, sig chan os.Signal) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var viewer mgl32.Vec2
	var heading float64
	outstanding := make(map[int32]struct{})
	last := time.Now()

	for {
		select {
		case <-sig:
			log.Info("signal received, shutting down")
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			heading += dt * 0.05
			step := cfg.Viewer.WanderSpeed * float32(dt)
			viewer = viewer.Add(mgl32.Vec2{
				float32(math.Cos(heading)) * step,
				float32(math.Sin(heading)) * step,
			})

			requestAround(cfg, s, viewer, outstanding)
			s.Update(dt)
			collect(s, outstanding, log)

			if hub != nil {
				hub.Publish(s.Stats())
			}
		}
	}
}

// requestAround asks for every tile within the viewer radius. The LOD level
// grows with ring distance and halves the grid resolution per level, the way
// a geomorphing mesh layer consumes tiles.
func requestAround(cfg *config.Config, s *streaming.Streamer, viewer mgl32.Vec2, outstanding map[int32]struct{}) {
	ts := cfg.Viewer.TileSize
	cx := float32(math.Floor(float64(viewer.X() / ts)))
	cz := float32(math.Floor(float64(viewer.Y() / ts)))

	r := cfg.Viewer.Radius
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			ring := max(abs(dx), abs(dz))
			pos := mgl32.Vec2{(cx + float32(dx)) * ts, (cz + float32(dz)) * ts}

			if s.IsTileCached(pos, ring) {
				continue
			}

			res := ((cfg.Viewer.Resolution - 1) >> ring) + 1
			if res < 5 {
				res = 5
			}
			id := s.RequestTileLoad(pos, ts, ring, res, cfg.Generation, r-ring, viewer)
			if id >= 0 {
				outstanding[id] = struct{}{}
			}
		}
	}
}

// collect retrieves finished requests; failed tiles are already logged by the
// streamer and simply retried on a later pass.
func collect(s *streaming.Streamer, outstanding map[int32]struct{}, log *zap.Logger) {
	for id := range outstanding {
		if !s.IsTileReady(id) {
			continue
		}
		delete(outstanding, id)
		if tile, ok := s.GetLoadedTile(id); ok {
			log.Debug("tile streamed",
				zap.Float32("x", tile.WorldPosition.X()),
				zap.Float32("z", tile.WorldPosition.Y()),
				zap.Int("lod", tile.LOD),
				zap.Int("resolution", tile.Resolution))
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
