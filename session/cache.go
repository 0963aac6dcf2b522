package session

import (
	"fmt"
	"sync/atomic"
	"time"

	log "github.com/Lafeng/dhdemo/glog"
	"github.com/Lafeng/dhdemo/modp"
	"github.com/cloudflare/golibs/lrucache"
)

const (
	DEFAULT_CACHE_SIZE = 16
	TABLE_TTL          = time.Hour
)

type tableEntry struct {
	table   modp.PowerTable
	verdict bool
}

// TableCache memoizes power tables by (alpha mod q, q). It may be shared by
// any number of sessions.
type TableCache struct {
	lru    *lrucache.LRUCache
	hits   uint64
	misses uint64
}

func NewTableCache(capacity int) *TableCache {
	if capacity <= 0 {
		capacity = DEFAULT_CACHE_SIZE
	}
	return &TableCache{lru: lrucache.NewLRUCache(uint(capacity))}
}

// Build returns the cached table of alpha over q or computes and stores it.
// Callers must not modify the returned table.
func (c *TableCache) Build(alpha, q uint64) (modp.PowerTable, bool) {
	if q <= 1 {
		return modp.BuildPowerTable(alpha, q)
	}
	key := fmt.Sprintf("%d/%d", alpha%q, q)
	if v, ok := c.lru.Get(key); ok {
		atomic.AddUint64(&c.hits, 1)
		e := v.(*tableEntry)
		if log.V(log.LV_CACHE) {
			log.Infoln("table cache hit", key)
		}
		return e.table, e.verdict
	}
	atomic.AddUint64(&c.misses, 1)
	table, verdict := modp.BuildPowerTable(alpha, q)
	c.lru.Set(key, &tableEntry{table, verdict}, time.Now().Add(TABLE_TTL))
	return table, verdict
}

func (c *TableCache) Len() int {
	return c.lru.Len()
}

func (c *TableCache) Stats() string {
	return fmt.Sprintf("TableCache: entries=%d hits=%d misses=%d",
		c.lru.Len(), atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses))
}
