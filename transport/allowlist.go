package transport

import "strings"

// DefaultPublicPaths are the endpoints that never receive a credential.
var DefaultPublicPaths = []string{
	"/auth/login",
	"/auth/register",
}

// Allowlist matches request paths that are public. A pattern either matches
// the path exactly or, when it ends in "/*", matches the whole subtree.
type Allowlist struct {
	patterns []string
}

// NewAllowlist builds an allow-list from the default public endpoints plus
// any extra patterns.
func NewAllowlist(extra ...string) *Allowlist {
	patterns := make([]string, 0, len(DefaultPublicPaths)+len(extra))
	patterns = append(patterns, DefaultPublicPaths...)
	for _, p := range extra {
		p = strings.TrimSpace(p)
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	return &Allowlist{patterns: patterns}
}

// Match reports whether the path is public.
func (a *Allowlist) Match(path string) bool {
	for _, pattern := range a.patterns {
		if subtree, ok := strings.CutSuffix(pattern, "/*"); ok {
			if path == subtree || strings.HasPrefix(path, subtree+"/") {
				return true
			}
			continue
		}
		if path == pattern {
			return true
		}
	}
	return false
}
