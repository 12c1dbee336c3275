package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Entry is a network bound to one registry descriptor.
type Entry struct {
	Descriptor ModelDescriptor
	LoadedAt   time.Time

	mu      sync.RWMutex
	network Network
}

// Forward runs the entry's network. Eviction waits for running passes.
func (e *Entry) Forward(input []float32) ([]float32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.network == nil {
		return nil, fmt.Errorf("%s: %w", e.Descriptor.Name, ErrEvicted)
	}
	return e.network.Forward(input)
}

func (e *Entry) close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.network == nil {
		return nil
	}
	err := e.network.Close()
	e.network = nil
	return err
}

type CacheOptions struct {
	// ResultsDir holds the weight files named by the registry.
	ResultsDir string
	// RealWeights binds weight files. When false, entries hold the bare
	// topology and no file is read.
	RealWeights bool
	// MaxLoaded bounds resident models; the least recently used one is
	// evicted past it. Zero means unbounded.
	MaxLoaded int
}

// Cache keeps at most one loaded network per model name. Concurrent first
// requests for the same name share a single load.
type Cache struct {
	registry *Registry
	runtime  Runtime
	opts     CacheOptions

	mu      sync.Mutex
	entries *orderedmap.OrderedMap[string, *Entry]

	group singleflight.Group
	loads atomic.Int64
}

func NewCache(registry *Registry, runtime Runtime, opts CacheOptions) *Cache {
	return &Cache{
		registry: registry,
		runtime:  runtime,
		opts:     opts,
		entries:  orderedmap.New[string, *Entry](),
	}
}

// GetOrLoad returns the cached entry for name, loading it on first use.
func (c *Cache) GetOrLoad(name string) (*Entry, error) {
	if e, ok := c.get(name); ok {
		return e, nil
	}

	v, err, shared := c.group.Do(name, func() (any, error) {
		// another flight may have finished between the miss and Do
		if e, ok := c.get(name); ok {
			return e, nil
		}

		e, err := c.load(name)
		if err != nil {
			return nil, err
		}
		c.put(e)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("joined in-flight model load", "model", name)
	}
	return v.(*Entry), nil
}

func (c *Cache) get(name string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(name)
	if ok {
		_ = c.entries.MoveToBack(name)
	}
	return e, ok
}

func (c *Cache) load(name string) (*Entry, error) {
	desc, err := c.registry.Lookup(name)
	if err != nil {
		return nil, err
	}

	top, err := Build(desc.Architecture, len(desc.Emotions))
	if err != nil {
		return nil, err
	}

	var network Network = top
	if c.opts.RealWeights {
		path := filepath.Join(c.opts.ResultsDir, desc.File)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrMissingWeightFile, path)
			}
			return nil, fmt.Errorf("%w: %v", ErrLoad, err)
		}

		start := time.Now()
		network, err = c.runtime.Load(top, path)
		if err != nil {
			slog.Error("error loading model", "model", name, "path", path, "error", err)
			if errors.Is(err, ErrLoad) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrLoad, err)
		}
		slog.Debug("weights bound", "model", name, "path", path, "duration", time.Since(start))
	}

	if got := network.NumClasses(); got != len(desc.Emotions) {
		network.Close()
		return nil, fmt.Errorf("%w: %s has %d outputs for %d emotions", ErrLoad, name, got, len(desc.Emotions))
	}

	c.loads.Add(1)
	slog.Info("successfully loaded model", "model", name, "architecture", desc.Architecture, "weights", c.opts.RealWeights)

	return &Entry{Descriptor: desc, LoadedAt: time.Now(), network: network}, nil
}

func (c *Cache) put(e *Entry) {
	var evicted []*Entry

	c.mu.Lock()
	c.entries.Set(e.Descriptor.Name, e)
	for c.opts.MaxLoaded > 0 && c.entries.Len() > c.opts.MaxLoaded {
		oldest := c.entries.Oldest()
		c.entries.Delete(oldest.Key)
		evicted = append(evicted, oldest.Value)
	}
	c.mu.Unlock()

	for _, old := range evicted {
		slog.Info("evicting model", "model", old.Descriptor.Name)
		if err := old.close(); err != nil {
			slog.Warn("error closing model", "model", old.Descriptor.Name, "error", err)
		}
	}
}

// Loaded returns the resident model names, least recently used first.
func (c *Cache) Loaded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, c.entries.Len())
	for pair := c.entries.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.entries.Len()
}

// Loads counts completed loads over the cache's lifetime.
func (c *Cache) Loads() int64 {
	return c.loads.Load()
}

// Preload loads names concurrently. Failures are logged and returned joined;
// models that did load stay cached.
func (c *Cache) Preload(ctx context.Context, names []string) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := c.GetOrLoad(name); err != nil {
				slog.Warn("could not load model", "model", name, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

// Close unloads every entry.
func (c *Cache) Close() error {
	c.mu.Lock()
	var entries []*Entry
	for pair := c.entries.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, pair.Value)
	}
	c.entries = orderedmap.New[string, *Entry]()
	c.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if err := e.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
