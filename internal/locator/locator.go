// Package locator decides whether a catalog reference is a usable remote URL
// and builds sibling URLs for relative references.
package locator

import (
	"context"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"esmcat/internal/domain"
)

// ParseRemote is the structural half of the reachability check. It reports
// whether candidate is a string URL with a scheme, a network location and a
// non-empty path. It never panics, whatever the input.
func ParseRemote(candidate any) (*url.URL, bool) {
	s, ok := candidate.(string)
	if !ok {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, false
	}
	if u.Scheme == "" || u.Host == "" || u.Path == "" {
		return nil, false
	}
	return u, true
}

// Checker combines the structural check with a live probe.
type Checker struct {
	prober domain.Prober
	logger *slog.Logger
}

// NewChecker creates a Checker. A nil logger discards output.
func NewChecker(prober domain.Prober, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Checker{prober: prober, logger: logger}
}

// Usable reports whether candidate is a well-formed URL whose resource is
// reachable right now. Every call probes again; failures of any kind are
// reported as false.
func (c *Checker) Usable(ctx context.Context, candidate any) bool {
	_, ok := c.Remote(ctx, candidate)
	return ok
}

// Remote is Usable that also hands back the parsed URL.
func (c *Checker) Remote(ctx context.Context, candidate any) (*url.URL, bool) {
	u, ok := ParseRemote(candidate)
	if !ok {
		return nil, false
	}
	if err := c.prober.Probe(ctx, u); err != nil {
		c.logger.DebugContext(ctx, "probe failed", "url", u.Redacted(), "error", err)
		return nil, false
	}
	return u, true
}

// JoinRelative resolves ref against the parent of base's path and keeps
// base's scheme, host, query and fragment. A trailing slash on base does not
// count as a path segment. An absolute ref replaces the path, and a query or
// fragment on ref replaces base's.
func JoinRelative(base *url.URL, ref string) string {
	joined := *base
	joined.RawPath = ""

	refPath := ref
	if r, err := url.Parse(ref); err == nil && r.Scheme == "" && r.Host == "" {
		refPath = r.Path
		if r.RawQuery != "" || r.ForceQuery {
			joined.RawQuery = r.RawQuery
			joined.ForceQuery = r.ForceQuery
		}
		if r.Fragment != "" {
			joined.Fragment = r.Fragment
			joined.RawFragment = r.RawFragment
		}
	}

	if strings.HasPrefix(refPath, "/") {
		joined.Path = path.Clean(refPath)
		return joined.String()
	}
	dir := base.Path
	if len(dir) > 1 {
		dir = strings.TrimSuffix(dir, "/")
	}
	joined.Path = path.Join(path.Dir(dir), refPath)
	return joined.String()
}
