package janus

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTunnelRouter(upstream string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(upstream).Register(r)
	return r
}

func TestTunnelForwardsBodyAndPath(t *testing.T) {
	var gotPath, gotBody, gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		gotQuery = req.URL.RawQuery
		b, _ := io.ReadAll(req.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"janus":"success"}`))
	}))
	defer upstream.Close()

	r := newTunnelRouter(upstream.URL + "/janus")

	req := httptest.NewRequest(http.MethodPost, "/janus/123/456", strings.NewReader(`{"janus":"message"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/janus/123/456", gotPath)
	assert.Equal(t, `{"janus":"message"}`, gotBody)
	assert.Empty(t, gotQuery)
	assert.JSONEq(t, `{"janus":"success"}`, w.Body.String())
}

func TestTunnelPropagatesMaxev(t *testing.T) {
	var gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotQuery = req.URL.RawQuery
		w.Write([]byte(`{"janus":"keepalive"}`))
	}))
	defer upstream.Close()

	r := newTunnelRouter(upstream.URL + "/janus")

	req := httptest.NewRequest(http.MethodGet, "/janus/123?maxev=1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "maxev=1", gotQuery)
}

func TestTunnelPropagatesUpstreamStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"janus":"error"}`))
	}))
	defer upstream.Close()

	r := newTunnelRouter(upstream.URL + "/janus")

	req := httptest.NewRequest(http.MethodPost, "/janus", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"janus":"error"}`, w.Body.String())
}

func TestTunnelUnreachableUpstream(t *testing.T) {
	r := newTunnelRouter("http://127.0.0.1:1/janus")

	req := httptest.NewRequest(http.MethodPost, "/janus", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)
	var resp struct {
		Status string `json:"status"`
		Code   int    `json:"code"`
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.NotEmpty(t, resp.Reason)
}
