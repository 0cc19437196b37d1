package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTTL is the fallback TTL when the response carries no max-age
	DefaultTTL = 10 * time.Minute
)

// ResponseTTL derives how long a subgraph response may be cached from its
// Cache-Control header. no-store and no-cache yield 0 (do not cache);
// a missing or unparsable max-age yields fallback.
func ResponseTTL(headers http.Header, fallback time.Duration) time.Duration {
	cc := headers.Get("Cache-Control")
	if cc == "" {
		return fallback
	}

	for _, directive := range strings.Split(cc, ",") {
		directive = strings.ToLower(strings.TrimSpace(directive))

		switch {
		case directive == "no-store", directive == "no-cache":
			return 0
		case strings.HasPrefix(directive, "max-age="):
			seconds, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
			if err != nil || seconds < 0 {
				return fallback
			}
			return time.Duration(seconds) * time.Second
		}
	}

	return fallback
}
