// Package cache stores subgraph query responses in Redis.
//
// Paging through a large collection issues the same sequence of queries on
// every run. When a Redis client is configured the graph client consults this
// cache before going to the network, so re-running an analysis against an
// unchanged subgraph does not re-download every page.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.CacheKey{
//		Endpoint: "https://api.thegraph.com/subgraphs/name/circlesubi/circles-ubi",
//		Query:    `{ safes(first: 1000, orderBy: id, where: {id_gt: ""}) { id } }`,
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the subgraph, then
//		_ = manager.Set(ctx, key, cache.NewEntry(data, cache.ResponseTTL(resp.Header, cache.DefaultTTL)))
//	}
//
// # Expiry
//
// Entries live for the max-age announced by the subgraph's Cache-Control
// header, or DefaultTTL when none is present. Responses marked no-store are
// never cached.
//
// # Metrics
//
//   - subgraph_cache_hits_total
//   - subgraph_cache_misses_total
//   - subgraph_cache_size_bytes
//   - subgraph_cache_errors_total{operation}
package cache
