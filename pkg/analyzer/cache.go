package analyzer

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/wcspec/pkg/tsnode"
)

const defaultCacheSize = 8192

type cacheKey struct {
	node    tsnode.Key
	handler string
}

// cacheEntry is a walked declaration and the diagnostics its walk raised,
// replayed whenever the entry is served.
type cacheEntry struct {
	decl  *ComponentDeclaration
	diags []Diagnostic
}

// Cache memoizes walked declarations by node identity and declaration
// handler. Walks that ran into a heritage cycle are never stored, since
// their result depends on where the walk started.
//
// A Cache is tied to one program: node identities are byte ranges, so
// replacing a file's source invalidates what was stored for it. Call Purge
// after reloading files.
type Cache struct {
	decls *lru.Cache[cacheKey, *cacheEntry]
	hits  int
	miss  int
}

// NewCache creates a cache bounded to size declarations. 0 uses 8192.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	decls, err := lru.New[cacheKey, *cacheEntry](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Cache{decls: decls}
}

func (c *Cache) get(k cacheKey) (*cacheEntry, bool) {
	e, ok := c.decls.Get(k)
	if ok {
		c.hits++
	} else {
		c.miss++
	}
	return e, ok
}

func (c *Cache) put(k cacheKey, d *ComponentDeclaration, diags []Diagnostic) {
	c.decls.Add(k, &cacheEntry{decl: d, diags: diags})
}

// Purge drops every cached declaration.
func (c *Cache) Purge() {
	c.decls.Purge()
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Entries int
	Hits    int
	Misses  int
}

// Stats returns current cache metrics.
func (c *Cache) Stats() CacheStats {
	return CacheStats{Entries: c.decls.Len(), Hits: c.hits, Misses: c.miss}
}
