package storage

import (
	"errors"
	"fmt"
	neturl "net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrAccessDenied is returned for locations matched by the access policy.
var ErrAccessDenied = errors.New("access denied")

// Policy denies access to local paths and remote domains.
type Policy struct {
	paths   []string
	domains []string
}

// NewPolicy builds a policy. Paths may start with ~/ and match the named
// file or anything below it; domains may start with *. to cover subdomains.
func NewPolicy(paths, domains []string) *Policy {
	p := &Policy{}
	for _, path := range paths {
		if path = strings.TrimSpace(path); path != "" {
			p.paths = append(p.paths, filepath.Clean(expandHome(path)))
		}
	}
	for _, domain := range domains {
		if domain = strings.ToLower(strings.TrimSpace(domain)); domain != "" {
			p.domains = append(p.domains, domain)
		}
	}
	return p
}

// Check returns ErrAccessDenied when location is covered by the policy.
// A nil policy allows everything.
func (p *Policy) Check(location string) error {
	if p == nil {
		return nil
	}

	URL := normalise(location)
	if local, ok := localPath(URL); ok {
		if pattern, blocked := p.pathBlocked(local); blocked {
			return fmt.Errorf("%w: %s is inside %s", ErrAccessDenied, location, pattern)
		}
		return nil
	}

	parsed, err := neturl.Parse(URL)
	if err != nil {
		return fmt.Errorf("invalid location %q: %w", location, err)
	}
	if host := strings.ToLower(parsed.Hostname()); host != "" && p.domainBlocked(host) {
		return fmt.Errorf("%w: domain %s is denied", ErrAccessDenied, host)
	}
	return nil
}

func (p *Policy) pathBlocked(path string) (string, bool) {
	candidates := []string{filepath.Clean(path)}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		candidates = append(candidates, resolved)
	}

	for _, pattern := range p.paths {
		for _, candidate := range candidates {
			if candidate == pattern || strings.HasPrefix(candidate, pattern+string(filepath.Separator)) {
				return pattern, true
			}
			if matched, _ := filepath.Match(pattern, candidate); matched {
				return pattern, true
			}
		}
	}
	return "", false
}

func (p *Policy) domainBlocked(host string) bool {
	for _, pattern := range p.domains {
		if base, ok := strings.CutPrefix(pattern, "*."); ok {
			if host == base || strings.HasSuffix(host, "."+base) {
				return true
			}
			continue
		}
		if host == pattern {
			return true
		}
	}
	return false
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
