// Package metrics exposes Prometheus counters and gauges for the relay,
// following the promauto + wrapper-function shape used by
// kstaniek-go-ampio-server's internal/metrics package.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kaillera-go/relay/internal/logger"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kaillera_sessions_active",
		Help: "Current number of live peer sessions.",
	})
	GamesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kaillera_games_active",
		Help: "Current number of games (any status).",
	})
	BytesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kaillera_sync_bytes_relayed_total",
		Help: "Total bytes placed in outbound GameData bundles by the sync engine.",
	})
	BundlesEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kaillera_sync_bundles_emitted_total",
		Help: "Total GameData/GameCache bundles emitted by the sync engine.",
	})
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kaillera_cache_hits_total",
		Help: "Cache hits, by cache kind (input, output).",
	}, []string{"kind"})
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kaillera_cache_misses_total",
		Help: "Cache misses, by cache kind (input, output).",
	}, []string{"kind"})
	MalformedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kaillera_malformed_frames_total",
		Help: "Total datagrams dropped for failing codec validation.",
	})
	SyncErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kaillera_sync_errors_total",
		Help: "Sync engine errors, by kind (invalid_player, unknown_cache_position, bad_unit_size).",
	}, []string{"kind"})
	SessionsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kaillera_sessions_evicted_total",
		Help: "Total sessions evicted for idling past the timeout.",
	})
	PlayersDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kaillera_players_dropped_total",
		Help: "Total players marked dropped from an in-progress game.",
	})
)

// StartHTTP serves Prometheus metrics at /metrics on addr. The server runs
// in its own goroutine; call Shutdown on the returned server to stop it.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Info("Metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server error: %v", err)
		}
	}()
	return srv
}

// IncCacheHit records a hit against the named cache (input or output).
func IncCacheHit(kind string) { CacheHits.WithLabelValues(kind).Inc() }

// IncCacheMiss records a miss against the named cache (input or output).
func IncCacheMiss(kind string) { CacheMisses.WithLabelValues(kind).Inc() }

// IncSyncError records a sync engine failure by kind.
func IncSyncError(kind string) { SyncErrors.WithLabelValues(kind).Inc() }
