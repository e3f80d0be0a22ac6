package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const testIndexDoc = `{"data":[
	{"type":"index","id":"idx1","attributes":{"label":"Index One"},"links":{"list":"{{base}}/idx1"}},
	{"type":"index","id":"idx2","attributes":{"label":"Index Two"},"links":{"list":{"href":"{{base}}/idx2"}}},
	{"type":"index","id":"idx3","attributes":{"label":"Unlinked"}}
]}`

const testItemDoc = `{"data":[
	{"type":"hei","id":"hei-ub","attributes":{"label":"Uni B","website":["https://ub.example"]}},
	{"type":"hei","id":"hei-ua","attributes":{"label":"Uni A","website":"https://ua.example","country":"AT","note":""}}
]}`

// testRemote serves JSON:API documents by path and counts requests.
type testRemote struct {
	srv  *httptest.Server
	mu   sync.Mutex
	docs map[string]string
	hits map[string]int
}

func newTestRemote(t *testing.T) *testRemote {
	t.Helper()
	r := &testRemote{
		docs: make(map[string]string),
		hits: make(map[string]int),
	}
	r.srv = httptest.NewServer(http.HandlerFunc(r.serve))
	t.Cleanup(r.srv.Close)
	return r
}

func (r *testRemote) serve(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.hits[req.URL.Path]++
	body, ok := r.docs[req.URL.Path]
	r.mu.Unlock()

	w.Header().Set("Content-Type", "application/vnd.api+json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"status":"404"}]}`))
		return
	}
	_, _ = w.Write([]byte(body))
}

// set serves body at path. "{{base}}" is replaced with the server URL.
func (r *testRemote) set(path, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[path] = strings.ReplaceAll(body, "{{base}}", r.srv.URL)
}

func (r *testRemote) count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits[path]
}

func (r *testRemote) url(path string) string {
	return r.srv.URL + path
}

// stubFetcher returns canned documents by endpoint and counts calls.
type stubFetcher struct {
	mu    sync.Mutex
	docs  map[string]string
	calls map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{docs: make(map[string]string), calls: make(map[string]int)}
}

func (f *stubFetcher) Get(_ context.Context, endpoint string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[endpoint]++
	return f.docs[endpoint]
}

func (f *stubFetcher) Fetch(ctx context.Context, endpoint string) (string, error) {
	return f.Get(ctx, endpoint), nil
}

func (f *stubFetcher) set(endpoint, doc string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[endpoint] = doc
}

func (f *stubFetcher) count(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}
