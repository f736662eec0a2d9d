package sserver_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gordian-engine/gsegtree/sserver"
	"github.com/gordian-engine/gsegtree/svis"
	"github.com/neilotoole/slogt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg sserver.HTTPServerConfig) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(sserver.NewHandler(slogt.New(t), cfg))
	t.Cleanup(srv.Close)
	return srv
}

func createTree(t *testing.T, srv *httptest.Server, body string) sserver.CreateResponse {
	t.Helper()

	resp, err := http.Post(srv.URL+"/trees", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out sserver.CreateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestHTTP_roundTrip(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, sserver.HTTPServerConfig{})

	created := createTree(t, srv, `{"values":[2,5,1,4,9,3]}`)
	require.NotEmpty(t, created.ID)
	require.Equal(t, 6, created.Len)
	treeURL := srv.URL + "/trees/" + created.ID

	code, body := getBody(t, treeURL+"/query?lo=1&hi=4&kinds=min,max,sum")
	require.Equal(t, http.StatusOK, code, body)
	require.JSONEq(t, `{"min":1,"max":5,"sum":10}`, body)

	resp, err := http.Post(treeURL+"/update", "application/json", strings.NewReader(`{"position":2,"value":100}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	code, body = getBody(t, treeURL+"/query?lo=1&hi=4")
	require.Equal(t, http.StatusOK, code, body)
	require.JSONEq(t, `{"min":4,"max":100,"sum":109}`, body)

	code, body = getBody(t, treeURL+"/query?lo=0&hi=6&kinds=sum")
	require.Equal(t, http.StatusOK, code, body)
	require.JSONEq(t, `{"sum":123}`, body)

	code, body = getBody(t, treeURL)
	require.Equal(t, http.StatusOK, code)
	var snap svis.Snapshot
	require.NoError(t, json.Unmarshal([]byte(body), &snap))
	require.Equal(t, []int64{2, 5, 100, 4, 9, 3}, snap.Values)
	require.Len(t, snap.Nodes, 15)

	code, body = getBody(t, treeURL+"/render")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "D0: [0, 6) sum=123 min=1 max=100")

	code, body = getBody(t, treeURL+"/render?format=dot")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "digraph segtree")

	code, body = getBody(t, srv.URL+"/trees")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"ids":["`+created.ID+`"]}`, body)

	req, err := http.NewRequest(http.MethodDelete, treeURL, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	code, _ = getBody(t, treeURL)
	require.Equal(t, http.StatusNotFound, code)
}

func TestHTTP_errors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, sserver.HTTPServerConfig{MaxLen: 8})
	created := createTree(t, srv, `{"values":[2,5,1,4,9,3]}`)
	treeURL := srv.URL + "/trees/" + created.ID

	for name, tc := range map[string]struct {
		method, path, body string
		code               int
	}{
		"empty input":     {"POST", "/trees", `{"values":[]}`, http.StatusBadRequest},
		"too long":        {"POST", "/trees", `{"values":[1,2,3,4,5,6,7,8,9]}`, http.StatusBadRequest},
		"bad json":        {"POST", "/trees", `{`, http.StatusBadRequest},
		"negative lo":     {"GET", "/trees/" + created.ID + "/query?lo=-1&hi=3", "", http.StatusBadRequest},
		"hi past end":     {"GET", "/trees/" + created.ID + "/query?lo=0&hi=7", "", http.StatusBadRequest},
		"missing hi":      {"GET", "/trees/" + created.ID + "/query?lo=0", "", http.StatusBadRequest},
		"unknown kind":    {"GET", "/trees/" + created.ID + "/query?lo=0&hi=2&kinds=avg", "", http.StatusBadRequest},
		"update past end": {"POST", "/trees/" + created.ID + "/update", `{"position":6,"value":10}`, http.StatusBadRequest},
		"unknown tree":    {"GET", "/trees/no-such-tree/query?lo=0&hi=1", "", http.StatusNotFound},
		"unknown format":  {"GET", "/trees/" + created.ID + "/render?format=svg", "", http.StatusBadRequest},
	} {
		req, err := http.NewRequest(tc.method, srv.URL+tc.path, strings.NewReader(tc.body))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, tc.code, resp.StatusCode, name)
	}

	// Failed update did not modify the tree.
	code, body := getBody(t, treeURL+"/query?lo=0&hi=6&kinds=sum")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"sum":24}`, body)
}

func TestHTTP_metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	srv := newTestServer(t, sserver.HTTPServerConfig{Prometheus: reg})
	createTree(t, srv, `{"values":[1,2,3]}`)

	code, body := getBody(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `gsegtree_requests_total{code="201",op="create"} 1`)
	require.Contains(t, body, "gsegtree_trees 1")
}

func TestHTTP_metricsSharedRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	trees := sserver.NewRegistry()
	cfg := sserver.HTTPServerConfig{Trees: trees, Prometheus: reg}

	srv1 := newTestServer(t, cfg)
	srv2 := newTestServer(t, cfg)

	createTree(t, srv1, `{"values":[1,2,3]}`)
	createTree(t, srv2, `{"values":[4,5,6]}`)

	code, body := getBody(t, srv2.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `gsegtree_requests_total{code="201",op="create"} 2`)
	require.Contains(t, body, "gsegtree_trees 2")
}
