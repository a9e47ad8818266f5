package catalog

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// knownURISchemes are the prefixes that mark an input as already a
// catalog URI rather than a display name.
var knownURISchemes = []string{"query:", "browser:", "device:", "preset:"}

// Resolve maps a display name to its catalog URI, or returns the input
// unchanged (pass-through) if it already looks like a URI, the catalog is
// not ready within timeout, or the name has no match. A cold cache
// resolves as pass-through, never as an error.
func (c *Cache) Resolve(ctx context.Context, nameOrURI string, timeout time.Duration) string {
	if looksLikeURI(nameOrURI) {
		return nameOrURI
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if !c.ready.Wait(waitCtx) {
		c.logger.Warn("catalog resolve timed out waiting for population, passing through",
			zap.String("input", nameOrURI))
		return nameOrURI
	}

	c.mu.RLock()
	uri, ok := c.byName[normalizeName(nameOrURI)]
	c.mu.RUnlock()
	if !ok {
		return nameOrURI
	}
	return uri
}

func looksLikeURI(s string) bool {
	for _, scheme := range knownURISchemes {
		if strings.HasPrefix(s, scheme) {
			return true
		}
	}
	return false
}
