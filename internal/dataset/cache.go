package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/sync/singleflight"
)

// KeyMode selects how the source-file fingerprint is computed.
type KeyMode string

const (
	// KeyModeMTime hashes path, size and modification time of each file.
	KeyModeMTime KeyMode = "mtime"
	// KeyModeContent hashes the bytes of each file.
	KeyModeContent KeyMode = "content"
)

// Fingerprint identifies one version of the source files. Absent files are
// part of the key so that a file appearing later triggers a reload.
func Fingerprint(src Sources, mode KeyMode) (string, error) {
	d := xxhash.New()
	for _, path := range src.Files() {
		_, _ = d.WriteString(path)
		_, _ = d.WriteString("\x00")

		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				_, _ = d.WriteString("missing\x00")
				continue
			}
			return "", fmt.Errorf("stat %s: %w", path, err)
		}

		switch mode {
		case KeyModeContent:
			if err := hashFile(d, path); err != nil {
				return "", err
			}
		default:
			_, _ = d.WriteString(strconv.FormatInt(info.Size(), 10))
			_, _ = d.WriteString("\x00")
			_, _ = d.WriteString(strconv.FormatInt(info.ModTime().UnixNano(), 10))
		}
		_, _ = d.WriteString("\x00")
	}
	return strconv.FormatUint(d.Sum64(), 16), nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}
	return nil
}

// cacheMetrics holds the cache instruments.
type cacheMetrics struct {
	hits     metric.Int64Counter
	misses   metric.Int64Counter
	reloads  metric.Int64Counter
	duration metric.Float64Histogram
}

func newCacheMetrics(meter metric.Meter) (*cacheMetrics, error) {
	hits, err := meter.Int64Counter("dataset_cache_hits_total",
		metric.WithDescription("Snapshot cache hits"))
	if err != nil {
		return nil, err
	}
	misses, err := meter.Int64Counter("dataset_cache_misses_total",
		metric.WithDescription("Snapshot cache misses"))
	if err != nil {
		return nil, err
	}
	reloads, err := meter.Int64Counter("dataset_reloads_total",
		metric.WithDescription("Snapshot rebuilds by outcome"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("dataset_load_duration_seconds",
		metric.WithDescription("Time spent loading the dataset"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &cacheMetrics{hits: hits, misses: misses, reloads: reloads, duration: duration}, nil
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithMeter records cache metrics on meter.
func WithMeter(meter metric.Meter) CacheOption {
	return func(c *Cache) { c.meter = meter }
}

// WithKeyMode selects the fingerprint mode. The default is KeyModeMTime.
func WithKeyMode(mode KeyMode) CacheOption {
	return func(c *Cache) { c.mode = mode }
}

// Cache memoises one Snapshot per source fingerprint. Concurrent misses for
// the same fingerprint share a single load.
type Cache struct {
	loader  *Loader
	sources Sources
	mode    KeyMode
	meter   metric.Meter
	metrics *cacheMetrics
	logger  *slog.Logger

	mu   sync.RWMutex
	snap *Snapshot
	key  string

	group singleflight.Group
}

// NewCache creates a cache over sources.
func NewCache(loader *Loader, sources Sources, logger *slog.Logger, opts ...CacheOption) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		loader:  loader,
		sources: sources,
		mode:    KeyModeMTime,
		meter:   noop.NewMeterProvider().Meter("dataset"),
		logger:  logger.With(slog.String("component", "snapshot_cache")),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.mode != KeyModeMTime && c.mode != KeyModeContent {
		return nil, fmt.Errorf("unknown cache key mode %q", c.mode)
	}
	m, err := newCacheMetrics(c.meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache metrics: %w", err)
	}
	c.metrics = m
	return c, nil
}

// Sources returns the files the cache watches.
func (c *Cache) Sources() Sources {
	return c.sources
}

// Get returns the snapshot for the current version of the source files,
// loading it when the fingerprint changed since the last call.
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	key, err := Fingerprint(c.sources, c.mode)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	snap, cached := c.snap, c.key
	c.mu.RUnlock()
	if snap != nil && cached == key {
		c.metrics.hits.Add(ctx, 1)
		return snap, nil
	}
	c.metrics.misses.Add(ctx, 1)

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		// Waiters share this load, so it must outlive the caller that started it.
		ctx := context.WithoutCancel(ctx)
		start := time.Now()
		loaded, err := c.loader.Load(ctx, c.sources)
		c.metrics.duration.Record(ctx, time.Since(start).Seconds())
		if err != nil {
			c.metrics.reloads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
			return nil, err
		}
		loaded.Fingerprint = key
		c.metrics.reloads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "success")))

		c.mu.Lock()
		c.snap, c.key = loaded, key
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "dataset load failed",
			slog.String("fingerprint", key),
			slog.String("error", err.Error()))
		return nil, err
	}
	if !shared {
		c.logger.InfoContext(ctx, "snapshot rebuilt", slog.String("fingerprint", key))
	}
	return v.(*Snapshot), nil
}

// Invalidate drops the cached snapshot. The next Get reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap, c.key = nil, ""
	c.mu.Unlock()
	c.logger.Info("snapshot invalidated")
}

// Current returns the cached snapshot without checking the files, or nil.
func (c *Cache) Current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}
