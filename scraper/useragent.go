package scraper

import "sync/atomic"

// DefaultUserAgents is the identity pool used when none is configured.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.0.0",
}

// UserAgentPool hands out request identities round-robin. Safe for
// concurrent use.
type UserAgentPool struct {
	agents []string
	next   atomic.Uint64
}

// NewUserAgentPool creates a pool; an empty list falls back to
// DefaultUserAgents.
func NewUserAgentPool(agents []string) *UserAgentPool {
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}
	cp := make([]string, len(agents))
	copy(cp, agents)
	return &UserAgentPool{agents: cp}
}

// Next returns the next identity, wrapping at the end of the pool.
func (p *UserAgentPool) Next() string {
	i := p.next.Add(1) - 1
	return p.agents[i%uint64(len(p.agents))]
}
