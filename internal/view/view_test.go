package view

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclimate-tools/climateview/internal/dataset"
	"github.com/openclimate-tools/climateview/internal/model"
	"github.com/openclimate-tools/climateview/internal/series"
)

// upstream fakes the catalog and pledge API. Canada has a pledge with a
// baseline year in its series, Germany has none, France's pledge points
// at a year with no data.
func upstream(t *testing.T) *httptest.Server {
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
		fmt.Fprint(w, "actor,year,total_emissions\n"+
			"CA,2005,100\nCA,2010,90\nCA,2011,95\n"+
			"DE,2005,80\nDE,2010,75\n"+
			"FR,2005,60\n")
	})
	mux.HandleFunc("/eccc.csv", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "actor,year,total_emissions\n"+
			"CA-ON,2010,40\nCA-QC,2010,30\nCA-ON,2011,42\n")
	})
	mux.HandleFunc("/country.csv", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "actor,name\nCA,Canada\nDE,Germany\nFR,France\n")
	})
	mux.HandleFunc("/api/v1/actor/CA", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"targets":[{"baseline_year":2005,"target_value":30}]}}`)
	})
	mux.HandleFunc("/api/v1/actor/DE", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"targets":[]}}`)
	})
	mux.HandleFunc("/api/v1/actor/FR", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"targets":[{"baseline_year":1990,"target_value":40}]}}`)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testBuilder(t *testing.T) *Builder {
	t.Helper()

	server := upstream(t)
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Cache.Backend = "memory"
	cfg.API.BaseURL = server.URL
	cfg.Catalog.MasterURL = server.URL + "/master.yaml"
	cfg.Catalog.Sources = map[string]string{"CA": "eccc_inventory"}

	svc, err := dataset.NewService(cfg, nil)
	require.NoError(t, err)
	return NewBuilder(svc, nil)
}

func TestTimeseries_WithTarget(t *testing.T) {
	b := testBuilder(t)

	actors, err := b.Timeseries(context.Background(), []string{"CA"})
	require.NoError(t, err)
	require.Len(t, actors, 1)

	assert.Equal(t, "Canada", actors[0].Label)
	assert.Equal(t, series.Series{2005: 100, 2010: 90, 2011: 95}, actors[0].Series)
	require.NotNil(t, actors[0].Target)
	assert.InDelta(t, 70, actors[0].Target.Level, 1e-9)
}

func TestTimeseries_SkipsTargetWithoutPledge(t *testing.T) {
	b := testBuilder(t)

	actors, err := b.Timeseries(context.Background(), []string{"DE"})
	require.NoError(t, err)
	require.Len(t, actors, 1)
	assert.Nil(t, actors[0].Target)
}

func TestTimeseries_SkipsTargetWithMissingBaseline(t *testing.T) {
	b := testBuilder(t)

	// France's pledge baselines on 1990, absent from the inventory
	actors, err := b.Timeseries(context.Background(), []string{"FR"})
	require.NoError(t, err)
	require.Len(t, actors, 1)
	assert.Nil(t, actors[0].Target)
}

func TestTimeseries_UnknownActor(t *testing.T) {
	b := testBuilder(t)

	_, err := b.Timeseries(context.Background(), []string{"XX"})
	assert.Error(t, err)
}

func TestReconcile(t *testing.T) {
	b := testBuilder(t)

	rec, err := b.Reconcile(context.Background(), "CA")
	require.NoError(t, err)

	assert.Equal(t, "Canada", rec.Label)
	assert.Equal(t, series.Series{2010: 70, 2011: 42}, rec.SubTotal)
	// difference only covers years on both sides
	assert.Equal(t, series.Series{2010: 20, 2011: 53}, rec.Difference)
	assert.NotContains(t, rec.Difference, 2005)

	require.Len(t, rec.Subnational, 2)
	assert.Equal(t, "CA-ON", rec.Subnational[0].ID)
	assert.Equal(t, "CA-QC", rec.Subnational[1].ID)
}

func TestReconcile_NoConfiguredSource(t *testing.T) {
	b := testBuilder(t)

	_, err := b.Reconcile(context.Background(), "DE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no subnational inventory")
}
