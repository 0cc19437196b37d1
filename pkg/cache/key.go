package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CacheKey identifies one query against one subgraph endpoint.
type CacheKey struct {
	// Endpoint is the subgraph URL.
	Endpoint string

	// Query is the GraphQL document.
	Query string
}

// String generates a deterministic cache key string.
// Format: subgraph:<endpoint>:<sha256 of the whitespace-normalised query>
//
// Example:
//
//	subgraph:https://api.thegraph.com/subgraphs/name/circlesubi/circles-ubi:3f1a...
func (k CacheKey) String() string {
	endpoint := strings.TrimRight(k.Endpoint, "/")

	// Queries differing only in layout are the same query
	normalized := strings.Join(strings.Fields(k.Query), " ")
	sum := sha256.Sum256([]byte(normalized))

	return "subgraph:" + endpoint + ":" + hex.EncodeToString(sum[:])
}
