package mailchimp

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "0123456789abcdef-us1"

type recordedRequest struct {
	Method     string // effective verb, override-aware
	WireMethod string
	Path       string
	RawQuery   string
	Override   string
	Auth       string
	Body       map[string]any
}

type cannedResponse struct {
	status int
	body   any
}

// fakeAPI is a minimal Mailchimp stand-in keyed by "METHOD /path"
type fakeAPI struct {
	mu       sync.Mutex
	routes   map[string]cannedResponse
	requests []recordedRequest
}

func newFakeAPI() *fakeAPI {
	api := &fakeAPI{routes: make(map[string]cannedResponse)}
	api.on(http.MethodGet, "/", http.StatusOK, map[string]any{
		"account_id":   "acc1",
		"account_name": "Test Account",
	})
	return api
}

func (f *fakeAPI) on(method, path string, status int, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = cannedResponse{status: status, body: body}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{
		Method:     r.Method,
		WireMethod: r.Method,
		Path:       r.URL.Path,
		RawQuery:   r.URL.RawQuery,
		Override:   r.Header.Get("X-HTTP-Method-Override"),
		Auth:       r.Header.Get("Authorization"),
	}
	if rec.Override != "" {
		rec.Method = rec.Override
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	resp, ok := f.routes[rec.Method+" "+rec.Path]
	f.mu.Unlock()

	if !ok {
		resp = cannedResponse{
			status: http.StatusNotFound,
			body:   map[string]any{"status": 404, "detail": "The requested resource could not be found."},
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	if resp.body != nil {
		_ = json.NewEncoder(w).Encode(resp.body)
	}
}

// calls returns the recorded requests matching method and path
func (f *fakeAPI) calls(method, path string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []recordedRequest
	for _, r := range f.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestClient(t *testing.T, api *fakeAPI, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	opts = append([]Option{WithBaseURL(server.URL)}, opts...)
	client, err := NewClient(testAPIKey, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}
