// Package util holds small transport helpers shared by the speech engines
// and the audio loader.
package util

import (
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

// ProxyConfig overrides the HTTP_PROXY, HTTPS_PROXY and NO_PROXY
// environment variables. Empty fields keep the environment's value.
type ProxyConfig struct {
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// IsZero reports whether no override is set
func (c ProxyConfig) IsZero() bool {
	return c.HTTPProxy == "" && c.HTTPSProxy == "" && c.NoProxy == ""
}

// Func returns a proxy function for http.Transport. Loopback hosts are
// never proxied.
func (c ProxyConfig) Func() func(*http.Request) (*url.URL, error) {
	if c.IsZero() {
		return http.ProxyFromEnvironment
	}

	cfg := httpproxy.FromEnvironment()
	if c.HTTPProxy != "" {
		cfg.HTTPProxy = c.HTTPProxy
	}
	if c.HTTPSProxy != "" {
		cfg.HTTPSProxy = c.HTTPSProxy
	}
	if c.NoProxy != "" {
		cfg.NoProxy = c.NoProxy
	}

	proxy := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return proxy(req.URL)
	}
}
