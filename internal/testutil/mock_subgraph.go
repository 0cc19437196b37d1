// Package testutil provides testing utilities for the subgraph client and fetcher.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// ZeroAddress is the sender of minted (UBI payout) transfers.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// DefaultMaxSkip mirrors the offset ceiling enforced by hosted subgraphs.
const DefaultMaxSkip = 5000

var (
	entityPattern = regexp.MustCompile(`^\{\s*(\w+)\s*\(`)
	firstPattern  = regexp.MustCompile(`first:\s*(\d+)`)
	skipPattern   = regexp.MustCompile(`skip:\s*(\d+)`)
	wherePattern  = regexp.MustCompile(`where:\s*\{([^}]*)\}`)
)

// Record is one entity as the mock serves it.
type Record map[string]any

// MockSubgraph is a configurable in-memory GraphQL subgraph for testing.
//
// It understands the two page query shapes issued by the fetcher:
// id_gt cursors with orderBy: id, and first/skip offsets. Equality filters in
// the where clause are applied to top-level record fields. Field selections
// are ignored; every stored field is returned.
type MockSubgraph struct {
	server *httptest.Server
	mu     sync.Mutex

	entities map[string][]Record

	maxSkip      int
	failAt       int
	cacheControl string

	requestCount int
	queries      []string
}

// NewMockSubgraph creates and starts a new mock subgraph.
func NewMockSubgraph() *MockSubgraph {
	mock := &MockSubgraph{
		entities: make(map[string][]Record),
		maxSkip:  DefaultMaxSkip,
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL.
func (m *MockSubgraph) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSubgraph) Close() {
	m.server.Close()
}

// SetEntity replaces the collection served for an entity name.
// Records are kept sorted by id, like a subgraph ordering by id.
func (m *MockSubgraph) SetEntity(name string, records []Record) {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return fmt.Sprint(sorted[i]["id"]) < fmt.Sprint(sorted[j]["id"])
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[name] = sorted
}

// SetMaxSkip sets the largest accepted skip value; larger values get a GraphQL error.
func (m *MockSubgraph) SetMaxSkip(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxSkip = n
}

// SetFailAt makes the Nth request (1-based) return 500. 0 disables.
func (m *MockSubgraph) SetFailAt(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAt = n
}

// SetCacheControl sets the Cache-Control header sent with successful responses.
func (m *MockSubgraph) SetCacheControl(v string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheControl = v
}

// RequestCount returns the number of queries received.
func (m *MockSubgraph) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// Queries returns every query document received, in order.
func (m *MockSubgraph) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}

// Reset clears tracking counters.
func (m *MockSubgraph) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.queries = nil
}

func (m *MockSubgraph) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.requestCount++
	m.queries = append(m.queries, req.Query)
	failing := m.failAt > 0 && m.requestCount == m.failAt
	cacheControl := m.cacheControl
	m.mu.Unlock()

	if failing {
		http.Error(w, `{"error": "Internal server error"}`, http.StatusInternalServerError)
		return
	}

	name, page, err := m.execute(req.Query)
	w.Header().Set("Content-Type", "application/json")
	if cacheControl != "" {
		w.Header().Set("Cache-Control", cacheControl)
	}
	if err != nil {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{{"message": err.Error()}},
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{name: page},
	})
}

func (m *MockSubgraph) execute(query string) (string, []Record, error) {
	match := entityPattern.FindStringSubmatch(strings.TrimSpace(query))
	if match == nil {
		return "", nil, fmt.Errorf("unsupported query: %s", query)
	}
	name := match[1]

	first := 100
	if f := firstPattern.FindStringSubmatch(query); f != nil {
		first, _ = strconv.Atoi(f[1])
	}

	skip := 0
	if s := skipPattern.FindStringSubmatch(query); s != nil {
		skip, _ = strconv.Atoi(s[1])
	}
	m.mu.Lock()
	maxSkip := m.maxSkip
	records := m.entities[name]
	m.mu.Unlock()

	if skip > maxSkip {
		return "", nil, fmt.Errorf("The `skip` argument must be between 0 and %d, but is %d", maxSkip, skip)
	}

	cursor := ""
	filters := map[string]string{}
	if wm := wherePattern.FindStringSubmatch(query); wm != nil {
		for _, part := range strings.Split(wm[1], ",") {
			kv := strings.SplitN(part, ":", 2)
			if len(kv) != 2 {
				continue
			}
			key := strings.TrimSpace(kv[0])
			value := strings.Trim(strings.TrimSpace(kv[1]), `"`)
			if key == "" {
				continue
			}
			if key == "id_gt" {
				cursor = value
				continue
			}
			filters[key] = value
		}
	}

	matched := make([]Record, 0, len(records))
	for _, rec := range records {
		if cursor != "" && fmt.Sprint(rec["id"]) <= cursor {
			continue
		}
		ok := true
		for k, v := range filters {
			if fmt.Sprint(rec[k]) != v {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, rec)
		}
	}

	if skip >= len(matched) {
		return name, []Record{}, nil
	}
	matched = matched[skip:]
	if first < len(matched) {
		matched = matched[:first]
	}
	return name, matched, nil
}

// ID returns a fixed-width hex id whose string order matches numeric order.
func ID(i int) string {
	return fmt.Sprintf("0x%064x", i)
}

// Address returns a deterministic 20-byte address for a participant number.
func Address(i int) string {
	return fmt.Sprintf("0x%040x", i)
}
