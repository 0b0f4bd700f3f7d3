package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jalad-shrimali/cdr-analyzer/cache"
)

// DefaultConcurrency caps in-flight upstream requests per batch.
const DefaultConcurrency = 8

// Config wires the enrichment sources. Nil sources are unavailable.
type Config struct {
	SIM         SIMLookup
	CallerID    CallerNameLookup
	Cache       Cache
	Concurrency int
	Logger      *zap.Logger
}

// Options selects what to look up for one batch.
type Options struct {
	TopN       int
	CallerTopN int
	SIM        bool
	CallerID   bool
}

// Result is aligned with the numbers passed to Enrich.
type Result struct {
	Records   []Record
	Lookups   int // upstream requests issued
	CacheHits int
	Failures  int
}

// Enricher fans lookups out over a bounded worker pool.
type Enricher struct {
	sim    SIMLookup
	caller CallerNameLookup
	cache  Cache
	limit  int
	log    *zap.Logger
}

func New(cfg Config) *Enricher {
	e := &Enricher{
		sim:    cfg.SIM,
		caller: cfg.CallerID,
		cache:  cfg.Cache,
		limit:  cfg.Concurrency,
		log:    cfg.Logger,
	}
	if e.limit <= 0 {
		e.limit = DefaultConcurrency
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	return e
}

// SIMAvailable reports whether SIM lookups can run.
func (e *Enricher) SIMAvailable() bool { return e.sim != nil }

// CallerIDAvailable reports whether caller-ID lookups can run.
func (e *Enricher) CallerIDAvailable() bool { return e.caller != nil }

type counters struct {
	lookups, hits, failures atomic.Int64
}

// Enrich looks up the first min(TopN, n) numbers in the SIM registry and the
// first min(CallerTopN, n) in the caller-ID service. numbers must already be
// ordered by descending frequency. Per-number failures leave that record
// empty and never fail the batch; Enrich returns once every lookup finished.
func (e *Enricher) Enrich(ctx context.Context, numbers []string, opts Options) Result {
	recs := make([]Record, len(numbers))
	var c counters

	g := new(errgroup.Group)
	g.SetLimit(e.limit)

	if opts.SIM && e.sim != nil {
		for i := range numbers[:min(max(opts.TopN, 0), len(numbers))] {
			i := i
			g.Go(func() error {
				if info := e.lookupSIM(ctx, numbers[i], &c); info != nil {
					recs[i].Name, recs[i].CNIC, recs[i].Address = info.Name, info.CNIC, info.Address
				}
				return nil
			})
		}
	}
	if opts.CallerID && e.caller != nil {
		for i := range numbers[:min(max(opts.CallerTopN, 0), len(numbers))] {
			i := i
			g.Go(func() error {
				recs[i].CallerNames = e.lookupCaller(ctx, numbers[i], &c)
				return nil
			})
		}
	}
	_ = g.Wait()

	res := Result{
		Records:   recs,
		Lookups:   int(c.lookups.Load()),
		CacheHits: int(c.hits.Load()),
		Failures:  int(c.failures.Load()),
	}
	e.log.Info("enrichment finished",
		zap.Int("numbers", len(numbers)),
		zap.Int("lookups", res.Lookups),
		zap.Int("cache_hits", res.CacheHits),
		zap.Int("failures", res.Failures))
	return res
}

func (e *Enricher) lookupSIM(ctx context.Context, number string, c *counters) *SIMInfo {
	key := cache.Key("sim", number)
	if b := e.cached(ctx, key); b != nil {
		var info SIMInfo
		if json.Unmarshal(b, &info) == nil {
			c.hits.Add(1)
			return &info
		}
		e.evict(ctx, key)
	}

	c.lookups.Add(1)
	start := time.Now()
	info, err := e.sim.Lookup(ctx, number)
	if err != nil {
		e.fail(c, "sim registry", number, err)
		return nil
	}
	e.log.Debug("sim registry hit", zap.String("number", number), zap.Duration("took", time.Since(start)))
	if b, err := json.Marshal(info); err == nil {
		e.store(ctx, key, b)
	}
	return info
}

func (e *Enricher) lookupCaller(ctx context.Context, number string, c *counters) string {
	key := cache.Key("callerid", number)
	if b := e.cached(ctx, key); b != nil {
		c.hits.Add(1)
		return string(b)
	}

	c.lookups.Add(1)
	names, err := e.caller.Lookup(ctx, number)
	if err != nil {
		e.fail(c, "caller id", number, err)
		return ""
	}
	e.store(ctx, key, []byte(names))
	return names
}

func (e *Enricher) fail(c *counters, source, number string, err error) {
	c.failures.Add(1)
	if errors.Is(err, errNoData) {
		e.log.Debug(source+" returned no data", zap.String("number", number))
		return
	}
	e.log.Debug(source+" lookup failed", zap.String("number", number), zap.Error(err))
	// url.Error carries the request URL, and with it the number.
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	e.log.Warn(source+" lookup failed", zap.Error(err))
}

/* ──────────── cache helpers (errors are misses) ──────────── */

func (e *Enricher) cached(ctx context.Context, key string) []byte {
	if e.cache == nil {
		return nil
	}
	b, err := e.cache.Get(ctx, key)
	if err != nil {
		e.log.Warn("cache get failed", zap.Error(err))
		return nil
	}
	if len(b) == 0 {
		return nil
	}
	return b
}

// evict drops an entry that no longer decodes.
func (e *Enricher) evict(ctx context.Context, key string) {
	if err := e.cache.Delete(ctx, key); err != nil {
		e.log.Warn("cache delete failed", zap.Error(err))
	}
}

func (e *Enricher) store(ctx context.Context, key string, val []byte) {
	if e.cache == nil || len(val) == 0 {
		return
	}
	if err := e.cache.Set(ctx, key, val); err != nil {
		e.log.Warn("cache set failed", zap.Error(err))
	}
}
