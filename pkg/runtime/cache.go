package runtime

import (
	"sync/atomic"

	"github.com/dgraph-io/ristretto"
	"github.com/segmentio/fasthash/fnv1a"
	"github.com/zeebo/blake3"

	"github.com/thomasrohde/mini/pkg/ast"
)

// DefaultCacheSize is the number of parsed programs kept by NewProgramCache
// when size is not positive.
const DefaultCacheSize = 256

// ProgramCache keeps parsed programs keyed by their source so repeated runs
// skip lexing and parsing. Trees are never mutated after parsing, so a cached
// Block is shared between runs.
type ProgramCache struct {
	cache  *ristretto.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	fingerprint [32]byte
	block       *ast.Block
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NewProgramCache creates a cache holding up to size programs.
func NewProgramCache(size int64) (*ProgramCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        size * 10,
		MaxCost:            size,
		BufferItems:        64,
		IgnoreInternalCost: true, // MaxCost counts programs
	})
	if err != nil {
		return nil, err
	}
	return &ProgramCache{cache: c}, nil
}

func cacheKey(filename, source string) (uint64, [32]byte) {
	text := filename + "\x00" + source
	return fnv1a.HashString64(text), blake3.Sum256([]byte(text))
}

// Get returns the cached tree for source. The 64-bit key is confirmed
// against a full fingerprint so a key collision reads as a miss.
func (c *ProgramCache) Get(filename, source string) (*ast.Block, bool) {
	if c == nil {
		return nil, false
	}
	key, fp := cacheKey(filename, source)
	v, ok := c.cache.Get(key)
	if ok {
		if e, _ := v.(*cacheEntry); e != nil && e.fingerprint == fp {
			c.hits.Add(1)
			return e.block, true
		}
	}
	c.misses.Add(1)
	return nil, false
}

// Put stores a parsed tree. Admission is asynchronous; call Wait to make a
// Put visible to the next Get.
func (c *ProgramCache) Put(filename, source string, block *ast.Block) {
	if c == nil || block == nil {
		return
	}
	key, fp := cacheKey(filename, source)
	c.cache.Set(key, &cacheEntry{fingerprint: fp, block: block}, 1)
}

// Wait blocks until pending writes are applied.
func (c *ProgramCache) Wait() {
	if c != nil {
		c.cache.Wait()
	}
}

// Stats returns hit and miss counts.
func (c *ProgramCache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Close releases the cache's background goroutines.
func (c *ProgramCache) Close() {
	if c != nil {
		c.cache.Close()
	}
}
