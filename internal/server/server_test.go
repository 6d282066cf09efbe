package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/dhcpopt/internal/auth"
	"github.com/danmuck/dhcpopt/internal/pipeline"
	"github.com/danmuck/dhcpopt/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, s *Server, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)
	var out map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	}
	return rr, out
}

func TestHealthAndCatalog(t *testing.T) {
	testlog.Start(t)
	s := New(":0", nil, pipeline.Options{})

	rr, body := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, Version, body["version"])

	rr, body = do(t, s, http.MethodGet, "/catalog", "")
	require.Equal(t, http.StatusOK, rr.Code)
	entries := body["options"].([]any)
	first := entries[0].(map[string]any)
	assert.Equal(t, "Pad", first["name"])
	assert.Equal(t, "sentinel", first["shape"])

	rr, body = do(t, s, http.MethodGet, "/catalog/relay", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, body["suboptions"], 12)
}

func TestDecodeEndpointHex(t *testing.T) {
	testlog.Start(t)
	s := New(":0", nil, pipeline.Options{})

	rr, body := do(t, s, http.MethodPost, "/decode?validate&report=true", "35 01 02 36 04 0a 00 00 01 fe 00 ff")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Len(t, body["options"], 3)
	assert.Contains(t, body["validation"], "IPAddressLeaseTime")
	assert.Len(t, body["sections"], 1)
}

func TestDecodeEndpointRawFrame(t *testing.T) {
	testlog.Start(t)
	s := New(":0", nil, pipeline.Options{Frame: true})

	rr, body := do(t, s, http.MethodPost, "/decode?format=raw", string(make([]byte, 300)))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, body["error"], "magic cookie")

	rr, _ = do(t, s, http.MethodPost, "/decode?format=raw&frame=false", string([]byte{53, 1, 1, 255}))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDecodeEndpointRejectsBadInput(t *testing.T) {
	testlog.Start(t)
	s := New(":0", nil, pipeline.Options{})

	rr, _ := do(t, s, http.MethodPost, "/decode?format=pcap", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = do(t, s, http.MethodPost, "/decode?format=hex", "3")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = do(t, s, http.MethodPost, "/decode", strings.Repeat("0", maxDecodeBody+1))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestStatsObserve(t *testing.T) {
	testlog.Start(t)
	s := New(":0", nil, pipeline.Options{})

	s.Stats.Observe(pipeline.Process("a", []byte{53, 1, 1, 255}, pipeline.Options{}))
	s.Stats.Observe(pipeline.Process("b", []byte{53, 1, 1, 12, 9}, pipeline.Options{}))
	s.Stats.Observe(pipeline.Process("c", []byte{1}, pipeline.Options{Frame: true}))

	rr, body := do(t, s, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 3.0, body["frames"])
	assert.Equal(t, 1.0, body["truncated"])
	assert.Equal(t, 1.0, body["errors"])
	assert.Equal(t, 0.0, body["invalid"])
	assert.Contains(t, body, "last_seen")
}

func TestServeStopsOnCancel(t *testing.T) {
	testlog.Start(t)
	s := New("127.0.0.1:0", []string{"http://example.test"}, pipeline.Options{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestDecodeEndpointRequiresToken(t *testing.T) {
	testlog.Start(t)
	s := New(":0", nil, pipeline.Options{})
	s.Auth = auth.StaticToken{Token: "s3cret"}

	rr, body := do(t, s, http.MethodPost, "/decode", "35 01 01 ff")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "unauthorized", body["error"])

	req := httptest.NewRequest(http.MethodPost, "/decode", strings.NewReader("35 01 01 ff"))
	req.Header.Set("Authorization", "Bearer s3cret")
	ok := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(ok, req)
	assert.Equal(t, http.StatusOK, ok.Code)

	rr, _ = do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}
