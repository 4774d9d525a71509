package cli

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/noah-isme/college-catalog/internal/repository"
	"github.com/noah-isme/college-catalog/internal/service"
	"github.com/noah-isme/college-catalog/internal/store"
	"github.com/noah-isme/college-catalog/internal/transport"
	"github.com/noah-isme/college-catalog/pkg/cache"
	"github.com/noah-isme/college-catalog/pkg/config"
)

// app holds the per-invocation stores and their collaborators.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *service.MetricsService
	snapshots *service.CacheService
	catalog   *store.CatalogStore
	favorites *store.FavoritesStore
	closers   []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) *app {
	a := &app{cfg: cfg, logger: logger, metrics: service.NewMetricsService()}
	a.snapshots = a.openSnapshots()

	client := transport.NewClientFromConfig(cfg.API, logger, a.metrics)

	catalogOpts := []store.CatalogOption{
		store.WithCatalogLogger(logger),
		store.WithCatalogMetrics(a.metrics),
		store.WithJoinedRefresh(cfg.Catalog.RefreshJoinedOnWrite),
	}
	if a.snapshots.Enabled() {
		catalogOpts = append(catalogOpts, store.WithSnapshotCache(a.snapshots))
	}
	a.catalog = store.NewCatalogStore(transport.NewCatalogTransport(client), catalogOpts...)
	a.catalog.Hydrate(ctx)

	a.favorites = store.NewFavoritesStore(transport.NewFavoritesTransport(client),
		store.WithFavoritesLogger(logger),
		store.WithFavoritesMetrics(a.metrics),
	)
	return a
}

// openSnapshots connects the configured snapshot backend. A backend that cannot be
// opened disables snapshots for this run.
func (a *app) openSnapshots() *service.CacheService {
	var repo service.CacheRepository
	switch a.cfg.Snapshot.Backend {
	case config.SnapshotRedis:
		client, err := cache.NewRedis(a.cfg.Redis)
		if err != nil {
			a.logger.Warn("snapshot cache disabled", zap.String("backend", config.SnapshotRedis), zap.Error(err))
			return service.NewCacheService(nil, a.metrics, a.cfg.Snapshot.TTL, a.logger)
		}
		r := repository.NewRedisSnapshotRepository(client, a.logger)
		a.closers = append(a.closers, r)
		repo = r
	case config.SnapshotBolt:
		db, err := cache.NewBolt(a.cfg.Snapshot.BoltPath)
		if err != nil {
			a.logger.Warn("snapshot cache disabled", zap.String("backend", config.SnapshotBolt), zap.Error(err))
			return service.NewCacheService(nil, a.metrics, a.cfg.Snapshot.TTL, a.logger)
		}
		r := repository.NewBoltSnapshotRepository(db)
		a.closers = append(a.closers, r)
		repo = r
	}
	return service.NewCacheService(repo, a.metrics, a.cfg.Snapshot.TTL, a.logger)
}

func (a *app) close() {
	a.catalog.Close()
	a.favorites.Close()
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close snapshot backend", zap.Error(err))
		}
	}
	m := a.metrics.Snapshot()
	a.logger.Debug("session metrics",
		zap.Uint64("transport_requests", m.TransportRequests),
		zap.Uint64("transport_failures", m.TransportFailures),
		zap.Float64("avg_transport_ms", m.AverageTransportMs),
		zap.Uint64("store_actions", m.StoreActions),
		zap.Uint64("stale_responses", m.StaleResponsesDiscarded),
		zap.Float64("snapshot_hit_ratio", m.SnapshotHitRatio),
	)
}
