package dataset

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclimate-tools/climateview/internal/model"
)

// testUpstream serves the master catalog, its datasets, and the pledge API
func testUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/master.yaml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `sources:
  unfccc:
    args:
      urlpath: %[1]s/unfccc.csv
  eccc_inventory:
    args:
      urlpath: %[1]s/eccc.csv
  country:
    args:
      urlpath: %[1]s/country.csv
`, server.URL)
	})
	mux.HandleFunc("/unfccc.csv", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "actor,year,total_emissions\nCA,2005,100\nCA,2010,90\n")
	})
	mux.HandleFunc("/eccc.csv", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "actor,year,total_emissions\nCA-ON,2010,40\nCA-QC,2010,30\n")
	})
	mux.HandleFunc("/country.csv", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "actor,name\nCA,Canada\n")
	})
	mux.HandleFunc("/api/v1/actor/CA", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"targets":[{"baseline_year":2005,"target_value":30}]}}`)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig(serverURL string) *model.Config {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Cache.Backend = "memory"
	cfg.API.BaseURL = serverURL
	cfg.Catalog.MasterURL = serverURL + "/master.yaml"
	cfg.Catalog.Sources = map[string]string{"CA": "eccc_inventory"}
	return cfg
}

func TestService_EndToEnd(t *testing.T) {
	server := testUpstream(t)
	svc, err := NewService(testConfig(server.URL), nil)
	require.NoError(t, err)

	ctx := context.Background()

	national, err := svc.NationalEmissions(ctx)
	require.NoError(t, err)
	assert.Len(t, national, 2)

	names, err := svc.ActorNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Canada", names["CA"])

	pledges, err := svc.Pledges(ctx, "CA")
	require.NoError(t, err)
	require.Len(t, pledges, 1)
	assert.Equal(t, 2005, pledges[0].BaselineYear)

	source, ok := svc.SubnationalSource("CA")
	require.True(t, ok)
	sub, err := svc.Emissions(ctx, source)
	require.NoError(t, err)
	assert.Len(t, sub, 2)

	_, ok = svc.SubnationalSource("DE")
	assert.False(t, ok)
}

func TestService_Warm(t *testing.T) {
	server := testUpstream(t)
	svc, err := NewService(testConfig(server.URL), nil)
	require.NoError(t, err)

	require.NoError(t, svc.Warm(context.Background()))

	// warmed datasets are served from cache even if upstream vanishes
	server.Close()
	national, err := svc.NationalEmissions(context.Background())
	require.NoError(t, err)
	assert.Len(t, national, 2)
}

func TestService_WarmReportsFailures(t *testing.T) {
	server := testUpstream(t)
	cfg := testConfig(server.URL)
	cfg.Catalog.Sources = map[string]string{"CA": "missing_inventory"}

	svc, err := NewService(cfg, nil)
	require.NoError(t, err)

	err = svc.Warm(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3")
}
