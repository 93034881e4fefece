package depmanager

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nexus-automations/taskgraph/internal/analyzer"
)

// analysisCache is the façade's fingerprint-keyed, LRU-bounded cache of
// DependencyAnalysis results. Per spec §5 ("Shared resources"), entries
// are evicted on any dependency mutation touching the fingerprint; in
// practice a mutation changes every subsequent fingerprint (it is part
// of the hash input), so stale entries simply age out of the LRU rather
// than needing point eviction.
type analysisCache struct {
	inner *lru.Cache[string, *analyzer.DependencyAnalysis]
}

func newAnalysisCache(size int) *analysisCache {
	if size <= 0 {
		size = 32
	}
	c, _ := lru.New[string, *analyzer.DependencyAnalysis](size)
	return &analysisCache{inner: c}
}

func (c *analysisCache) get(fp string) (*analyzer.DependencyAnalysis, bool) {
	return c.inner.Get(fp)
}

func (c *analysisCache) put(fp string, a *analyzer.DependencyAnalysis) {
	c.inner.Add(fp, a)
}

// purge clears every cached entry, used when a mutation bumps the
// config epoch independent of the fingerprint (e.g. UpdateDependencies
// changing a task no caller has yet re-fingerprinted against).
func (c *analysisCache) purge() {
	c.inner.Purge()
}

func (c *analysisCache) len() int {
	return c.inner.Len()
}
