package search

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/c2h5oh/datasize"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/maci0/resembl/internal/config"
	"github.com/maci0/resembl/internal/lsh"
	"github.com/maci0/resembl/internal/store"
)

// avgSnippetBytes estimates the average cached Snippet size, used to turn a
// byte budget into an LRU entry count.
const avgSnippetBytes = 2 * datasize.KB

// cacheFileName is the LSH index cache file within a Context's cache
// directory.
const cacheFileName = "lsh.cache"

// Context threads everything an orchestrator operation needs: the
// configuration, the storage backend, the LSH index over it, a bounded
// snippet cache fronting repeated lookups, and a logger.
type Context struct {
	Config   config.Config
	Backend  store.Backend
	CacheDir string
	Logger   *zap.Logger

	index *lsh.Index
	cache *lru.Cache[store.Checksum, store.Snippet]
}

// NewContext wires a Context. cacheDir holds the on-disk LSH cache and its
// advisory lock file. lruBudget sizes the in-process snippet cache; zero
// selects a conservative default.
func NewContext(cfg config.Config, backend store.Backend, logger *zap.Logger, cacheDir string, lruBudget datasize.ByteSize) (*Context, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lruBudget == 0 {
		lruBudget = 32 * datasize.MB
	}
	entries := int(lruBudget / avgSnippetBytes)
	if entries < 16 {
		entries = 16
	}
	c, err := lru.New[store.Checksum, store.Snippet](entries)
	if err != nil {
		return nil, fmt.Errorf("%w: lru cache: %v", ErrBadInput, err)
	}
	return &Context{
		Config:   cfg,
		Backend:  backend,
		CacheDir: cacheDir,
		Logger:   logger,
		cache:    c,
	}, nil
}

func (c *Context) cachePath() string {
	return filepath.Join(c.CacheDir, cacheFileName)
}

func (c *Context) indexParams() lsh.Params {
	p := lsh.Params{
		Permutations: int(c.Config.NumPermutations),
		NgramSize:    int(c.Config.NgramSize),
		Generalize:   true,
	}
	p.Bands, p.Rows = lsh.ChooseBanding(p.Permutations, c.Config.LSHThreshold)
	return p
}

// getSnippet loads a snippet by checksum through the LRU cache.
func (c *Context) getSnippet(ctx context.Context, checksum store.Checksum) (store.Snippet, error) {
	if sn, ok := c.cache.Get(checksum); ok {
		return sn, nil
	}
	sn, err := c.Backend.GetByChecksum(ctx, checksum)
	if err != nil {
		return store.Snippet{}, err
	}
	c.cache.Add(checksum, sn)
	return sn, nil
}

func (c *Context) invalidateSnippet(checksum store.Checksum) {
	c.cache.Remove(checksum)
}

// EnsureIndex loads the on-disk LSH cache if its parameters and fingerprint
// match the current backend contents, otherwise rebuilds it from the
// backend's stored MinHashes and persists the rebuilt index.
func (c *Context) EnsureIndex(ctx context.Context) error {
	want := c.indexParams()
	fp, err := c.fingerprint(ctx, want)
	if err != nil {
		return err
	}

	fl, err := lsh.Lock(c.CacheDir)
	if err != nil {
		return fmt.Errorf("%w: acquiring cache lock: %v", store.ErrTransientStorage, err)
	}
	defer fl.Unlock()

	idx, cachedFP, err := lsh.Load(c.cachePath(), want)
	if err == nil && cachedFP == fp {
		c.index = idx
		return nil
	}
	if err != nil {
		c.Logger.Debug("lsh cache miss, rebuilding", zap.Error(err))
	} else {
		c.Logger.Debug("lsh cache fingerprint stale, rebuilding")
	}

	idx, err = c.rebuildIndex(ctx, want)
	if err != nil {
		return err
	}
	c.index = idx
	if err := lsh.Save(c.cachePath(), idx, fp); err != nil {
		c.Logger.Warn("failed to persist lsh cache", zap.Error(err))
	}
	return nil
}

func (c *Context) rebuildIndex(ctx context.Context, want lsh.Params) (*lsh.Index, error) {
	idx := lsh.New(want, c.Config.LSHThreshold)
	var nextID uint32
	err := c.Backend.IterAll(ctx, func(sn store.Snippet) error {
		sig, perr := minhashFromBytes(sn.MinHash, want.Permutations)
		if perr != nil {
			return fmt.Errorf("%w: stored minhash unreadable for %x: %v", ErrStaleIndex, sn.Checksum, perr)
		}
		idx.Insert(nextID, lsh.Checksum(sn.Checksum), sig)
		nextID++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Index returns the current in-memory LSH index, loading it first via
// EnsureIndex if it has not yet been built in this Context.
func (c *Context) Index(ctx context.Context) (*lsh.Index, error) {
	if c.index == nil {
		if err := c.EnsureIndex(ctx); err != nil {
			return nil, err
		}
	}
	return c.index, nil
}
