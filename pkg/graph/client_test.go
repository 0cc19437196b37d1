package graph

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/CirclesUBI/circles-analysis/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		errorMsg string
	}{
		{name: "valid https", endpoint: "https://api.thegraph.com/subgraphs/name/circlesubi/circles-ubi"},
		{name: "valid http", endpoint: "http://localhost:8000/subgraphs/name/circles"},
		{name: "empty", endpoint: "", errorMsg: "endpoint is required"},
		{name: "no scheme", endpoint: "api.thegraph.com", errorMsg: `endpoint must be an http(s) URL (got "api.thegraph.com")`},
		{name: "ws scheme", endpoint: "ws://localhost:8001", errorMsg: `endpoint must be an http(s) URL (got "ws://localhost:8001")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(DefaultConfig(tt.endpoint))

			if tt.errorMsg != "" {
				if err == nil {
					t.Fatalf("Expected error but got nil")
				}
				if err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if client.Endpoint() != tt.endpoint {
				t.Errorf("Endpoint() = %s, want %s", client.Endpoint(), tt.endpoint)
			}
			if client.cache != nil {
				t.Error("cache should be disabled without redis")
			}
		})
	}
}

func TestClient_Query(t *testing.T) {
	mock := testutil.NewMockSubgraph()
	defer mock.Close()
	mock.SetEntity("safes", []testutil.Record{
		{"id": "0x02"},
		{"id": "0x01"},
	})

	client, err := New(DefaultConfig(mock.URL()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	data, err := client.Query(context.Background(), `{
		safes(first: 10, orderBy: id, where: {id_gt: ""}) {
			id
		}
	}`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	var safes []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data["safes"], &safes); err != nil {
		t.Fatalf("decode safes: %v", err)
	}
	if len(safes) != 2 || safes[0].ID != "0x01" || safes[1].ID != "0x02" {
		t.Errorf("safes = %+v", safes)
	}

	// Whitespace is collapsed before sending
	if q := mock.Queries()[0]; strings.Contains(q, "\n") || strings.Contains(q, "  ") {
		t.Errorf("query sent with layout whitespace: %q", q)
	}
}

func TestClient_Query_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		class   ErrorClass
		status  int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			class:  ErrorClassServer,
			status: http.StatusInternalServerError,
		},
		{
			name: "client error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad", http.StatusBadRequest)
			},
			class:  ErrorClassClient,
			status: http.StatusBadRequest,
		},
		{
			name: "graphql errors",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"errors":[{"message":"Type Query has no field foo"},{"message":"second"}]}`))
			},
			class:  ErrorClassGraphQL,
			status: http.StatusOK,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>maintenance</html>`))
			},
			class:  ErrorClassDecode,
			status: http.StatusOK,
		},
		{
			name: "no data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			},
			class:  ErrorClassDecode,
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client, err := New(DefaultConfig(server.URL))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			before := promtest.ToFloat64(subgraphErrorsTotal.WithLabelValues(string(tt.class)))

			_, err = client.Query(context.Background(), "{ foo { id } }")
			if !errors.Is(err, ErrQueryExecution) {
				t.Fatalf("Query() error = %v, want ErrQueryExecution", err)
			}

			var qe *QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("error should be a *QueryError, got %T", err)
			}
			if qe.ErrorClass != tt.class {
				t.Errorf("ErrorClass = %s, want %s", qe.ErrorClass, tt.class)
			}
			if qe.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", qe.StatusCode, tt.status)
			}

			after := promtest.ToFloat64(subgraphErrorsTotal.WithLabelValues(string(tt.class)))
			if after-before != 1 {
				t.Errorf("subgraph_errors_total{class=%q} delta = %v, want 1", tt.class, after-before)
			}
		})
	}
}

func TestClient_Query_GraphQLMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"first"},{"message":"second"}]}`))
	}))
	defer server.Close()

	client, _ := New(DefaultConfig(server.URL))
	_, err := client.Query(context.Background(), "{ foo { id } }")

	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("error should be a *QueryError, got %v", err)
	}
	if qe.Message != "first; second" {
		t.Errorf("Message = %q, want %q", qe.Message, "first; second")
	}
}

func TestClient_Query_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	client, _ := New(DefaultConfig(endpoint))
	_, err := client.Query(context.Background(), "{ foo { id } }")

	var qe *QueryError
	if !errors.As(err, &qe) || qe.ErrorClass != ErrorClassNetwork {
		t.Fatalf("Query() error = %v, want network QueryError", err)
	}
}

func TestClient_Query_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	client, _ := New(DefaultConfig(server.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Query(ctx, "{ foo { id } }")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Query() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{"data":{"foo":[]}}`))
	}))
	defer server.Close()

	cfg := DefaultConfig(server.URL)
	cfg.UserAgent = "analysis-test/0.1"
	client, _ := New(cfg)

	if _, err := client.Query(context.Background(), "{ foo { id } }"); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if got.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", got.Get("Content-Type"))
	}
	if got.Get("User-Agent") != "analysis-test/0.1" {
		t.Errorf("User-Agent = %q", got.Get("User-Agent"))
	}
}

func TestClient_Query_Cache(t *testing.T) {
	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}
	redisClient.FlushDB(ctx)
	t.Cleanup(func() {
		redisClient.FlushDB(context.Background())
		redisClient.Close()
	})

	mock := testutil.NewMockSubgraph()
	defer mock.Close()
	mock.SetEntity("safes", []testutil.Record{{"id": "0x01"}})
	mock.SetCacheControl("max-age=60")

	cfg := DefaultConfig(mock.URL())
	cfg.Redis = redisClient
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	query := `{ safes(first: 10, orderBy: id, where: {id_gt: ""}) { id } }`
	for i := 0; i < 3; i++ {
		data, err := client.Query(ctx, query)
		if err != nil {
			t.Fatalf("Query() #%d error = %v", i, err)
		}
		if string(data["safes"]) != `[{"id":"0x01"}]` {
			t.Errorf("Query() #%d safes = %s", i, data["safes"])
		}
	}

	if mock.RequestCount() != 1 {
		t.Errorf("RequestCount() = %d, want 1 (rest served from cache)", mock.RequestCount())
	}
}

// redirectTransport sends every request to the mock subgraph and records the hosts asked for.
type redirectTransport struct {
	target string
	hosts  []string
}

func (rt *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.hosts = append(rt.hosts, req.URL.Host)
	req.URL.Scheme = "http"
	req.URL.Host = strings.TrimPrefix(rt.target, "http://")
	return http.DefaultTransport.RoundTrip(req)
}

func TestClient_SetHTTPClient(t *testing.T) {
	mock := testutil.NewMockSubgraph()
	defer mock.Close()
	mock.SetEntity("safes", []testutil.Record{{"id": "0x01"}})

	client, err := New(DefaultConfig("https://api.thegraph.com/subgraphs/name/circlesubi/circles-ubi"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	transport := &redirectTransport{target: mock.URL()}
	client.SetHTTPClient(&http.Client{Transport: transport, Timeout: 5 * time.Second})

	data, err := client.Query(context.Background(), `{ safes(first: 1, orderBy: id, where: {id_gt: ""}) { id } }`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if string(data["safes"]) == "" {
		t.Error("Expected safes in response")
	}

	if len(transport.hosts) != 1 || transport.hosts[0] != "api.thegraph.com" {
		t.Errorf("transport hosts = %v, want [api.thegraph.com]", transport.hosts)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("mock requests = %d, want 1", mock.RequestCount())
	}
}
