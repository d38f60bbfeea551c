package openclimate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclimate-tools/climateview/internal/cache"
	"github.com/openclimate-tools/climateview/internal/model"
)

func testClient(baseURL string, c cache.Cache) *Client {
	cfg := model.DefaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.HTTP.Timeout = 5 * time.Second
	return NewClient(cfg, c, nil)
}

func TestPledges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/actor/CA", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		fmt.Fprint(w, `{"data":{"targets":[
			{"baseline_year":2005,"target_value":"30","target_type":"absolute","target_year":2030},
			{"baseline_year":"1990","target_value":40}
		]}}`)
	}))
	defer server.Close()

	client := testClient(server.URL, cache.NopCache{})
	pledges, err := client.Pledges(context.Background(), "CA")
	require.NoError(t, err)
	require.Len(t, pledges, 2)

	assert.Equal(t, 2005, pledges[0].BaselineYear)
	assert.InDelta(t, 30, pledges[0].TargetValue, 1e-9)
	assert.Equal(t, "absolute", pledges[0].TargetType)
	assert.Equal(t, 2030, pledges[0].TargetYear)

	// string-typed year and numeric target both decode
	assert.Equal(t, 1990, pledges[1].BaselineYear)
	assert.InDelta(t, 40, pledges[1].TargetValue, 1e-9)
}

func TestPledges_EmptyTargets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"targets":[]}}`)
	}))
	defer server.Close()

	client := testClient(server.URL, cache.NopCache{})
	pledges, err := client.Pledges(context.Background(), "XX")
	require.NoError(t, err)
	assert.Empty(t, pledges)
}

func TestPledges_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient(server.URL, cache.NopCache{})
	_, err := client.Pledges(context.Background(), "CA")
	assert.Error(t, err)
}

func TestPledges_ReadThroughCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"data":{"targets":[{"baseline_year":2005,"target_value":30}]}}`)
	}))
	defer server.Close()

	client := testClient(server.URL, cache.NewMemoryCache(time.Minute, time.Minute))

	for i := 0; i < 3; i++ {
		pledges, err := client.Pledges(context.Background(), "CA")
		require.NoError(t, err)
		require.Len(t, pledges, 1)
	}

	assert.Equal(t, int32(1), hits.Load())
}

func TestPledges_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":`)
	}))
	defer server.Close()

	client := testClient(server.URL, cache.NopCache{})
	_, err := client.Pledges(context.Background(), "CA")
	assert.Error(t, err)
}
