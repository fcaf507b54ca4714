// Package gitarchive probes whether a remote supports server-side
// `git archive --remote`, caching the result per hostname process-wide.
package gitarchive

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EmundoT/git-resolve/pkg/giturl"
)

// Prober runs the actual probe command, typically
// `git archive --remote=<repo> HEAD <nonexistent-file>`, returning the
// raw error from the subprocess (nil means, improbably, that the
// nonexistent filename existed) and its stderr text.
type Prober func(ctx context.Context, repository string) (stderr string, err error)

// Cache memoizes hasArchiveCapability results per hostname. Unlike the
// upstream behavior this is modeled on — which cached a miss
// immediately but only cached a hit by assignment, leaving any
// unexpected probe error uncached — Cache caches both outcomes, since
// a transient probe error is not meaningfully different from a
// deterministic "no capability" answer for a given host within one
// process lifetime.
type Cache struct {
	mu   sync.Mutex
	seen map[string]bool
	ttl  time.Duration
	at   map[string]time.Time
}

// NewCache returns a Cache seeded with the known-false entries, in
// particular github.com which refuses server-side archive. ttl of 0
// means entries never expire.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		seen: map[string]bool{"github.com": false},
		ttl:  ttl,
		at:   map[string]time.Time{},
	}
}

// HasCapability returns whether hostname supports git archive --remote,
// probing repository and caching the result on first consultation for
// that hostname. Only meaningful for ssh: URLs with a non-empty
// hostname; callers are expected to have checked that already.
func (c *Cache) HasCapability(ctx context.Context, g giturl.GitURL, probe Prober) bool {
	c.mu.Lock()
	if v, ok := c.seen[g.Hostname]; ok && !c.expired(g.Hostname) {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	capable := c.probeOnce(ctx, g, probe)

	c.mu.Lock()
	c.seen[g.Hostname] = capable
	c.at[g.Hostname] = time.Now()
	c.mu.Unlock()

	return capable
}

func (c *Cache) expired(hostname string) bool {
	if c.ttl <= 0 {
		return false
	}
	t, ok := c.at[hostname]
	return !ok || time.Since(t) > c.ttl
}

func (c *Cache) probeOnce(ctx context.Context, g giturl.GitURL, probe Prober) bool {
	stderr, err := probe(ctx, g.Repository)
	if err == nil {
		// The guaranteed-nonexistent filename unexpectedly succeeded;
		// treat that as "no capability" rather than trust an anomaly.
		return false
	}
	return strings.Contains(stderr, "did not match any files")
}

// ProbeFilename builds the guaranteed-nonexistent filename argument for
// the probe command: a random UUID, which will not exist in any real
// tree and carries no timing information.
func ProbeFilename() string {
	return fmt.Sprintf(".git-resolve-probe-%s", uuid.NewString())
}
