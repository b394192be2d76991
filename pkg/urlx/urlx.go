// Package urlx normalizes redirect targets against a canonical public
// origin. The origin a server process observes on an inbound request is
// often a loopback or internal address the end user's browser cannot
// reach; redirect targets must always point at the address the browser
// uses.
package urlx

import (
	"net/url"
	"strings"
)

// Normalize rewrites target's scheme and host to those of the canonical
// public origin, preserving path, query and fragment. Relative targets
// are resolved against the origin. An unparsable target falls back to
// the origin root rather than failing: callers use this on redirect
// paths where an error page is worse than landing on home.
func Normalize(target, canonicalOrigin string) string {
	origin, err := url.Parse(canonicalOrigin)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		// Misconfigured origin: leave the target alone.
		return target
	}

	if target == "" {
		return origin.String()
	}

	u, err := url.Parse(target)
	if err != nil {
		return origin.String()
	}

	u.Scheme = origin.Scheme
	u.Host = origin.Host

	return u.String()
}

// SameOrigin reports whether the URL's scheme and host match the
// canonical origin.
func SameOrigin(rawURL, canonicalOrigin string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	o, err := url.Parse(canonicalOrigin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, o.Scheme) && strings.EqualFold(u.Host, o.Host)
}
