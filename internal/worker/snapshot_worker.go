package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-insights/internal/config"
)

// SnapshotRefresher rebuilds the cached student snapshot.
type SnapshotRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// SnapshotWorker keeps the Redis student snapshot warm. It refreshes on a fixed
// interval and whenever a message arrives on the students-changed channel.
type SnapshotWorker struct {
	cache    SnapshotRefresher
	rdb      *redis.Client
	interval time.Duration
	log      zerolog.Logger
}

// DefaultRefreshInterval replaces non-positive refresh intervals.
const DefaultRefreshInterval = 20 * time.Second

// NewSnapshotWorker creates a SnapshotWorker. rdb may be nil, in which case only
// the interval drives refreshes.
func NewSnapshotWorker(cache SnapshotRefresher, rdb *redis.Client, interval time.Duration, log zerolog.Logger) *SnapshotWorker {
	w := &SnapshotWorker{
		cache:    cache,
		rdb:      rdb,
		interval: interval,
		log:      log.With().Str("component", "snapshot_worker").Logger(),
	}
	if interval <= 0 {
		w.log.Warn().Dur("interval", interval).Dur("using", DefaultRefreshInterval).Msg("invalid refresh interval")
		w.interval = DefaultRefreshInterval
	}
	return w
}

// Start runs until ctx is cancelled.
func (w *SnapshotWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("SnapshotWorker started")

	var changed <-chan *redis.Message
	if w.rdb != nil {
		sub := w.rdb.Subscribe(ctx, config.WorkerKey.StudentsChangedChannel)
		defer sub.Close()
		changed = sub.Channel()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx, "startup")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SnapshotWorker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx, "interval")
		case msg, ok := <-changed:
			if !ok {
				changed = nil
				continue
			}
			w.refresh(ctx, "notify:"+msg.Payload)
		}
	}
}

func (w *SnapshotWorker) refresh(ctx context.Context, reason string) {
	start := time.Now()
	n, err := w.cache.Refresh(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Str("reason", reason).Msg("snapshot refresh failed")
		}
		return
	}
	w.log.Debug().
		Int("students", n).
		Str("reason", reason).
		Dur("took", time.Since(start)).
		Msg("snapshot refreshed")
}

// NotifyStudentsChanged asks running workers to refresh their snapshot now.
func NotifyStudentsChanged(ctx context.Context, rdb *redis.Client, reason string) error {
	return rdb.Publish(ctx, config.WorkerKey.StudentsChangedChannel, reason).Err()
}
