package domain

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// CanonicalDomain reduces a raw hostname or URL to its registrable domain
// (one label plus public suffix, e.g. "example.com"), which is the dedup key
// for URL-bound records. Inputs without a registrable domain, such as bare
// single labels or IP literals, fail with ErrInvalidDomain.
func CanonicalDomain(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidDomain)
	}

	host := trimmed
	if strings.Contains(trimmed, "://") {
		parsed, err := url.Parse(trimmed)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidDomain, raw)
		}
		host = parsed.Hostname()
	} else if h, _, err := net.SplitHostPort(trimmed); err == nil {
		host = h
	}

	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return "", fmt.Errorf("%w: empty host in %q", ErrInvalidDomain, raw)
	}
	if net.ParseIP(host) != nil {
		return "", fmt.Errorf("%w: %q is an IP literal", ErrInvalidDomain, raw)
	}

	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", fmt.Errorf("%w: %q has no registrable domain", ErrInvalidDomain, host)
	}
	return registrable, nil
}
