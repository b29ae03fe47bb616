package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dverbeek/patchwork/pkg/cache"
	"github.com/dverbeek/patchwork/pkg/graph"
	"github.com/dverbeek/patchwork/pkg/snapshot"
	"github.com/dverbeek/patchwork/pkg/store"
)

func testSnapshot(t *testing.T) snapshot.Snapshot {
	t.Helper()
	g := graph.New(nil, graph.IDSequential)
	a, _ := g.AddNode(graph.NodeSpec{Name: "a", Outputs: 1}, true)
	b, _ := g.AddNode(graph.NodeSpec{Name: "b", Inputs: 1}, true)
	g.AddConnection(a, b, 1, 1, true)
	return snapshot.FromGraph(g)
}

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	c := New(io.Discard, LogInfo)
	srv := httptest.NewServer(c.newRouter(st, cache.NewNullCache()))
	t.Cleanup(srv.Close)
	return srv, st
}

func do(t *testing.T, method, url string, body []byte) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServeHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeGraphLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	snap := testSnapshot(t)
	body, err := snapshot.Marshal(snap)
	require.NoError(t, err)

	// Empty store lists nothing.
	resp := do(t, http.MethodGet, srv.URL+"/api/v1/graphs/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing struct {
		Graphs []string `json:"graphs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	require.Empty(t, listing.Graphs)

	// Store, list, fetch.
	resp = do(t, http.MethodPut, srv.URL+"/api/v1/graphs/demo", body)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/graphs/", nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	require.Equal(t, []string{"demo"}, listing.Graphs)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/graphs/demo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched, err := snapshot.Read(resp.Body)
	require.NoError(t, err)
	_, err = snapshot.ToGraph(fetched, nil, graph.IDSequential)
	require.NoError(t, err)

	// Delete, then 404.
	resp = do(t, http.MethodDelete, srv.URL+"/api/v1/graphs/demo", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, http.MethodGet, srv.URL+"/api/v1/graphs/demo", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = do(t, http.MethodDelete, srv.URL+"/api/v1/graphs/demo", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeGraphSVGCachesArtifact(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	cacheDir := t.TempDir()
	ca, err := cache.NewFileCache(cacheDir)
	require.NoError(t, err)

	c := New(io.Discard, LogInfo)
	srv := httptest.NewServer(c.newRouter(st, ca))
	t.Cleanup(srv.Close)

	body, err := snapshot.Marshal(testSnapshot(t))
	require.NoError(t, err)
	resp := do(t, http.MethodPut, srv.URL+"/api/v1/graphs/demo", body)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/graphs/demo/svg", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	first, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(first), "<svg")

	// The second request is served from the cache and must be identical.
	resp = do(t, http.MethodGet, srv.URL+"/api/v1/graphs/demo/svg", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, first, second)

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/graphs/demo/svg?module=nope", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeRejectsCorruptSnapshot(t *testing.T) {
	srv, _ := newTestServer(t)

	snap := testSnapshot(t)
	m := snap.Modules[graph.DefaultModule]
	n := m.Nodes["2"]
	n.Inputs["input_1"] = snapshot.Port{Connections: []snapshot.Endpoint{}}
	m.Nodes["2"] = n
	body, err := snapshot.Marshal(snap)
	require.NoError(t, err)

	resp := do(t, http.MethodPut, srv.URL+"/api/v1/graphs/demo", body)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, http.MethodPut, srv.URL+"/api/v1/graphs/demo", []byte("not json"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
