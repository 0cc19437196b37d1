// Package pagination drains paginated subgraph collections.
//
// Hosted subgraphs cap the skip argument (currently at 5000), so offset
// paging cannot reach the end of a large collection. The default strategy
// therefore pages by cursor: every request asks for the next page of records
// whose id sorts after the last id already seen, ordered by id. Offset paging
// remains available for sources without id ordering.
//
// Example usage:
//
//	fetcher, err := pagination.NewFetcher(graphClient, pagination.DefaultConfig())
//	transfers, err := pagination.FetchAll[subgraph.Transfer](ctx, fetcher, pagination.Request{
//		Entity: "transfers",
//		Fields: "id from to amount",
//	})
//
// The fetcher:
//   - Requests pages strictly one after another (each cursor depends on the previous page)
//   - Stops at the first empty page
//   - Numbers records 1..N in fetch order across all pages
//   - Logs one progress line per page
//   - Fails the whole fetch on the first failed page (no partial results, no retries)
//
// Callers that want to process pages as they arrive use Iterate and Next.
package pagination
