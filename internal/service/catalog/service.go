package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	pipeline "github.com/vivispa/catalog-api/internal/catalog"
	"github.com/vivispa/catalog-api/internal/model"
	"github.com/vivispa/catalog-api/internal/repository"
	"github.com/vivispa/catalog-api/pkg/errors"
	"github.com/vivispa/catalog-api/pkg/messaging"
	"github.com/vivispa/catalog-api/pkg/metrics"
)

// EventReloaded is published after every successful reload.
const EventReloaded = "catalog.reloaded"

// Reload triggers, used as metric labels.
const (
	TriggerStartup = "startup"
	TriggerAdmin   = "admin"
	TriggerWatch   = "watch"
	TriggerRefresh = "refresh"
	TriggerEvent   = "event"
)

type CatalogServicer interface {
	Reload(ctx context.Context, trigger string) (*model.Snapshot, error)
	Sync(ctx context.Context) error
	Ready() bool
	InstanceID() string
	Catalogs(ctx context.Context) ([]CatalogInfo, error)
	Query(ctx context.Context, name string, c model.Criteria) (*QueryResult, error)
	Groups(ctx context.Context, name string, c model.Criteria) (*GroupResult, error)
	Options(ctx context.Context, name, field string) ([]string, error)
	Definitions(ctx context.Context, name string) ([]model.FilterDefinition, error)
	Offers(ctx context.Context, location string, c model.Criteria) (*QueryResult, error)
	Locations(ctx context.Context) ([]model.Location, error)
}

type Config struct {
	CacheTTL      time.Duration
	CacheCleanup  time.Duration
	OffersCatalog string
	Broker        messaging.Broker
	Channel       string
}

// ReloadEvent is the payload of EventReloaded.
type ReloadEvent struct {
	Origin   string    `json:"origin"`
	Version  int64     `json:"version"`
	Source   string    `json:"source"`
	Items    int       `json:"items"`
	LoadedAt time.Time `json:"loaded_at"`
}

type CatalogInfo struct {
	Name        string        `json:"name"`
	Title       string        `json:"title,omitempty"`
	Items       int           `json:"items"`
	BucketSet   string        `json:"bucket_set"`
	DefaultSort model.SortKey `json:"default_sort,omitempty"`
}

type QueryResult struct {
	Catalog       string               `json:"catalog"`
	Version       int64                `json:"version"`
	Items         []model.Item         `json:"items"`
	Total         int                  `json:"total"`
	Count         int                  `json:"count"`
	Empty         bool                 `json:"empty"`
	ActiveFilters []model.ActiveFilter `json:"active_filters"`
	Summary       model.Summary        `json:"summary"`
	Query         string               `json:"query"`
}

type GroupResult struct {
	Catalog string                `json:"catalog"`
	Version int64                 `json:"version"`
	Groups  []model.CategoryGroup `json:"groups"`
	Empty   bool                  `json:"empty"`
	Query   string                `json:"query"`
}

type Service struct {
	repo       repository.CatalogRepository
	metrics    *metrics.Metrics
	cache      *cache.Cache
	config     Config
	instanceID string

	mu      sync.Mutex // serializes reloads
	current atomic.Pointer[model.Snapshot]
}

func NewService(repo repository.CatalogRepository, m *metrics.Metrics, cfg Config) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.CacheCleanup <= 0 {
		cfg.CacheCleanup = 2 * cfg.CacheTTL
	}
	if cfg.OffersCatalog == "" {
		cfg.OffersCatalog = "offers"
	}
	return &Service{
		repo:       repo,
		metrics:    m,
		cache:      cache.New(cfg.CacheTTL, cfg.CacheCleanup),
		config:     cfg,
		instanceID: uuid.NewString(),
	}
}

// InstanceID identifies this process in published reload events.
func (s *Service) InstanceID() string {
	return s.instanceID
}

// Ready reports whether a snapshot has been loaded.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Reload loads a fresh snapshot, swaps it in and announces it on the
// broker. On failure the previous snapshot keeps serving.
func (s *Service) Reload(ctx context.Context, trigger string) (*model.Snapshot, error) {
	snap, err := s.load(ctx, trigger)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, snap)
	return snap, nil
}

// Sync reloads in response to another instance's event without publishing.
func (s *Service) Sync(ctx context.Context) error {
	_, err := s.load(ctx, TriggerEvent)
	return err
}

func (s *Service) load(ctx context.Context, trigger string) (*model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.repo.Load(ctx)
	if err != nil {
		s.metrics.CatalogReloads.WithLabelValues(trigger, "failed").Inc()
		log.Error().Err(err).Str("trigger", trigger).Str("source", s.repo.Source()).Msg("catalog reload failed")
		return nil, fmt.Errorf("failed to load catalogs: %w", err)
	}

	snap.Version = 1
	if prev := s.current.Load(); prev != nil {
		snap.Version = prev.Version + 1
	}
	s.current.Store(snap)
	s.cache.Flush()

	s.metrics.CatalogReloads.WithLabelValues(trigger, "success").Inc()
	s.metrics.SnapshotVersion.Set(float64(snap.Version))
	s.metrics.CatalogItems.Reset()
	for _, c := range snap.Catalogs {
		s.metrics.CatalogItems.WithLabelValues(c.Name).Set(float64(len(c.Items)))
	}

	log.Info().
		Str("trigger", trigger).
		Str("source", snap.Source).
		Int64("version", snap.Version).
		Int("catalogs", len(snap.Catalogs)).
		Int("items", snap.ItemCount()).
		Msg("catalog snapshot loaded")
	return snap, nil
}

func (s *Service) publish(ctx context.Context, snap *model.Snapshot) {
	if s.config.Broker == nil {
		return
	}
	msg, err := messaging.NewMessage(EventReloaded, ReloadEvent{
		Origin:   s.instanceID,
		Version:  snap.Version,
		Source:   snap.Source,
		Items:    snap.ItemCount(),
		LoadedAt: snap.LoadedAt,
	})
	if err == nil {
		err = s.config.Broker.Publish(ctx, s.config.Channel, msg)
	}
	if err != nil {
		s.metrics.BrokerMessages.WithLabelValues("publish", "failed").Inc()
		log.Warn().Err(err).Str("channel", s.config.Channel).Msg("failed to publish reload event")
		return
	}
	s.metrics.BrokerMessages.WithLabelValues("publish", "success").Inc()
}

func (s *Service) snapshot() (*model.Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, errors.Unavailable("catalogs not loaded", nil)
	}
	return snap, nil
}

func (s *Service) lookup(name string) (*model.Snapshot, *model.Catalog, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, nil, err
	}
	c, ok := snap.Catalog(name)
	if !ok {
		return nil, nil, errors.NotFound(fmt.Sprintf("catalog %q", name), nil)
	}
	return snap, c, nil
}

func (s *Service) Catalogs(ctx context.Context) ([]CatalogInfo, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]CatalogInfo, 0, len(snap.Catalogs))
	for _, c := range snap.Catalogs {
		out = append(out, CatalogInfo{
			Name:        c.Name,
			Title:       c.Title,
			Items:       len(c.Items),
			BucketSet:   c.BucketSet,
			DefaultSort: c.DefaultSort,
		})
	}
	return out, nil
}

// criteria normalizes c, applies the catalog's default sort and rejects
// values the catalog cannot interpret.
func criteria(cat *model.Catalog, opts pipeline.Options, c model.Criteria) (model.Criteria, error) {
	c = c.Normalize()
	if c.SortBy == model.SortNone {
		c.SortBy = cat.DefaultSort
	}
	if !c.SortBy.Valid() {
		return c, errors.BadRequest(fmt.Sprintf("unknown sort key %q", c.SortBy), nil)
	}
	if c.PriceRange != model.All {
		if _, ok := opts.Buckets.Lookup(c.PriceRange); !ok {
			return c, errors.BadRequest(fmt.Sprintf("unknown price range %q for catalog %q", c.PriceRange, cat.Name), nil)
		}
	}
	return c, nil
}

func (s *Service) memo(key string, compute func() interface{}) interface{} {
	if v, ok := s.cache.Get(key); ok {
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return v
	}
	s.metrics.CacheLookups.WithLabelValues("miss").Inc()
	v := compute()
	s.cache.Set(key, v, cache.DefaultExpiration)
	return v
}

func cacheKey(version int64, op, name string, c model.Criteria) string {
	return fmt.Sprintf("%d|%s|%s|%s", version, op, name, pipeline.EncodeCriteria(c))
}

func (s *Service) observe(name, op string, empty bool, start time.Time) {
	result := "matched"
	if empty {
		result = "empty"
	}
	s.metrics.CatalogQueries.WithLabelValues(name, op, result).Inc()
	s.metrics.CatalogLatency.WithLabelValues(name, op).Observe(time.Since(start).Seconds())
}

func (s *Service) Query(ctx context.Context, name string, c model.Criteria) (*QueryResult, error) {
	snap, cat, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	opts := pipeline.OptionsFor(cat, snap.BucketSets)
	c, err = criteria(cat, opts, c)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res := s.memo(cacheKey(snap.Version, "items", name, c), func() interface{} {
		return buildResult(snap.Version, cat.Name, cat.Items, len(cat.Items), c, opts)
	}).(*QueryResult)
	s.observe(name, "items", res.Empty, start)
	return res, nil
}

func buildResult(version int64, name string, items []model.Item, total int, c model.Criteria, opts pipeline.Options) *QueryResult {
	filtered := pipeline.Query(items, c, opts)
	return &QueryResult{
		Catalog:       name,
		Version:       version,
		Items:         filtered,
		Total:         total,
		Count:         len(filtered),
		Empty:         len(filtered) == 0,
		ActiveFilters: pipeline.ActiveFilters(c, opts.Buckets),
		Summary:       pipeline.Summarize(filtered, total, c),
		Query:         pipeline.EncodeCriteria(c),
	}
}

func (s *Service) Groups(ctx context.Context, name string, c model.Criteria) (*GroupResult, error) {
	snap, cat, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	opts := pipeline.OptionsFor(cat, snap.BucketSets)
	c, err = criteria(cat, opts, c)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res := s.memo(cacheKey(snap.Version, "groups", name, c), func() interface{} {
		groups := pipeline.GroupByCategory(pipeline.Query(cat.Items, c, opts))
		return &GroupResult{
			Catalog: cat.Name,
			Version: snap.Version,
			Groups:  groups,
			Empty:   len(groups) == 0,
			Query:   pipeline.EncodeCriteria(c),
		}
	}).(*GroupResult)
	s.observe(name, "groups", res.Empty, start)
	return res, nil
}

// Options returns the distinct values of field, e.g. the categories of a catalog.
func (s *Service) Options(ctx context.Context, name, field string) ([]string, error) {
	_, cat, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	f, ok := pipeline.ParseField(field)
	if !ok || f == pipeline.FieldName || f == pipeline.FieldDescription {
		return nil, errors.BadRequest(fmt.Sprintf("unknown option field %q", field), nil)
	}
	return pipeline.ExtractUniqueValues(cat.Items, f), nil
}

func (s *Service) Definitions(ctx context.Context, name string) ([]model.FilterDefinition, error) {
	snap, cat, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return pipeline.DefinitionsFor(cat, pipeline.OptionsFor(cat, snap.BucketSets)), nil
}

// Offers runs c over the offers catalog as seen from location. An empty or
// "all" location queries every offer without per-location rewriting.
func (s *Service) Offers(ctx context.Context, location string, c model.Criteria) (*QueryResult, error) {
	snap, cat, err := s.lookup(s.config.OffersCatalog)
	if err != nil {
		return nil, err
	}
	opts := pipeline.OptionsFor(cat, snap.BucketSets)
	c, err = criteria(cat, opts, c)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res := s.memo(cacheKey(snap.Version, "offers@"+location, cat.Name, c), func() interface{} {
		items := cat.Items
		if location != "" && location != model.All {
			items = pipeline.ForLocation(items, location)
		}
		return buildResult(snap.Version, cat.Name, items, len(items), c, opts)
	}).(*QueryResult)
	s.observe(cat.Name, "offers", res.Empty, start)
	return res, nil
}

func (s *Service) Locations(ctx context.Context) ([]model.Location, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Locations, nil
}
