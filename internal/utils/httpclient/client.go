// Package httpclient builds the HTTP clients used for model calls and
// remote document fetches.
package httpclient

import (
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ProxyVariables are consulted in order; the first non-placeholder value wins.
var ProxyVariables = []string{"HTTPS_PROXY", "https_proxy", "HTTP_PROXY", "http_proxy"}

// NoProxyVariables list hosts that bypass the proxy.
var NoProxyVariables = []string{"NO_PROXY", "no_proxy"}

// DefaultUserAgent is sent when Options.UserAgent is empty.
const DefaultUserAgent = "mcp-pdfedit"

// Options configures New.
type Options struct {
	// Timeout bounds a whole request. Zero leaves requests unbounded; the
	// caller's context still applies.
	Timeout   time.Duration
	UserAgent string
	Logger    *logrus.Logger
}

// New returns a client that routes through the environment proxy, if any,
// and stamps every request with a User-Agent.
func New(opts Options) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.Proxy = nil

	if raw := proxyFromEnv(); raw != "" {
		proxyURL, err := url.Parse(raw)
		switch {
		case err != nil:
			if opts.Logger != nil {
				opts.Logger.WithError(err).WithField("proxy_url", redact(raw)).Warn("Ignoring unparsable proxy URL")
			}
		default:
			bypass := noProxyHosts()
			base.Proxy = func(req *http.Request) (*url.URL, error) {
				if bypassed(req.URL.Hostname(), bypass) {
					return nil, nil
				}
				return proxyURL, nil
			}
			if opts.Logger != nil {
				opts.Logger.WithFields(logrus.Fields{
					"proxy_url": redact(raw),
					"no_proxy":  len(bypass),
				}).Debug("HTTP client using proxy")
			}
		}
	}

	agent := opts.UserAgent
	if agent == "" {
		agent = DefaultUserAgent
	}
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: &userAgentTransport{next: base, agent: agent},
	}
}

// ProxyConfigured reports whether a usable proxy variable is set.
func ProxyConfigured() bool {
	return proxyFromEnv() != ""
}

type userAgentTransport struct {
	next  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.next.RoundTrip(clone)
}

func proxyFromEnv() string {
	for _, name := range ProxyVariables {
		value := strings.TrimSpace(os.Getenv(name))
		// Unexpanded shell placeholders show up in some launch configs
		if value == "" || strings.HasPrefix(value, "$") {
			continue
		}
		return value
	}
	return ""
}

func noProxyHosts() []string {
	var hosts []string
	for _, name := range NoProxyVariables {
		for _, host := range strings.Split(os.Getenv(name), ",") {
			if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
				hosts = append(hosts, host)
			}
		}
	}
	return hosts
}

func bypassed(host string, patterns []string) bool {
	host = strings.ToLower(host)
	for _, pattern := range patterns {
		if pattern == "*" {
			return true
		}
		suffix := strings.TrimPrefix(pattern, "*")
		if !strings.HasPrefix(suffix, ".") {
			if host == suffix {
				return true
			}
			suffix = "." + suffix
		}
		if strings.HasSuffix(host, suffix) || host == suffix[1:] {
			return true
		}
	}
	return false
}

func redact(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "[invalid-url]"
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword("***", "***")
	}
	return parsed.String()
}
