// Package seeded derives deterministic pseudo-random values from a URL, so
// simulated analyses stay stable for the same input across process restarts.
package seeded

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// normalize strips the parts of a URL that should not change its seed:
// case, the http/https scheme, and a leading www.
func normalize(url string) string {
	s := strings.ToLower(strings.TrimSpace(url))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	return s
}

// Float returns a value in [0,1) determined entirely by the normalized URL
// and the index. Distinct indexes give independent streams for one URL.
func Float(url string, index int) float64 {
	h := fnv.New64a()
	h.Write([]byte(normalize(url)))
	h.Write([]byte{'#'})
	h.Write([]byte(strconv.Itoa(index)))
	// Top 53 bits map onto the float64 mantissa without bias.
	return float64(h.Sum64()>>11) / (1 << 53)
}

// Between returns a value in [lo,hi) for the URL and index.
func Between(url string, index int, lo, hi float64) float64 {
	return lo + Float(url, index)*(hi-lo)
}

// IntBetween returns an integer in [lo,hi] for the URL and index.
func IntBetween(url string, index, lo, hi int) int {
	return lo + int(Float(url, index)*float64(hi-lo+1))
}

// Chance reports whether the URL's value at index falls under probability p.
func Chance(url string, index int, p float64) bool {
	return Float(url, index) < p
}
