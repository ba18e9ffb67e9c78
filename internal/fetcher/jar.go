package fetcher

import (
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// NewJar copies browser cookies into a cookie jar, keyed by each cookie's
// domain. Cookies without a domain belong to fallback's host.
func NewJar(cookies []*http.Cookie, fallback *url.URL) (http.CookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	byHost := make(map[string][]*http.Cookie)
	for _, c := range cookies {
		if c == nil {
			continue
		}
		cc := *c
		host := strings.TrimPrefix(cc.Domain, ".")
		if host == "" && fallback != nil {
			host = fallback.Hostname()
		}
		if host == "" {
			continue
		}
		// IP hosts only take host-only cookies.
		if net.ParseIP(host) != nil {
			cc.Domain = ""
		}
		byHost[host] = append(byHost[host], &cc)
	}

	for host, cs := range byHost {
		jar.SetCookies(&url.URL{Scheme: "https", Host: host, Path: "/"}, cs)
	}
	return jar, nil
}
