package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclimate-tools/climateview/internal/dataset"
	"github.com/openclimate-tools/climateview/internal/model"
)

// fakeUpstream serves the catalog, datasets, and pledge API the
// dashboard depends on.
func fakeUpstream(t *testing.T) *httptest.Server {
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
			"CA,2005,100e9\nCA,2010,90e9\nCA,2011,95e9\n"+
			"DE,2005,80e9\nDE,2010,75e9\n")
	})
	mux.HandleFunc("/eccc.csv", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "actor,year,total_emissions\n"+
			"CA-ON,2010,40e9\nCA-QC,2010,30e9\nCA-ON,2011,42e9\nCA-QC,2011,31e9\n")
	})
	mux.HandleFunc("/country.csv", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "actor,name\nCA,Canada\nDE,Germany\n")
	})
	mux.HandleFunc("/api/v1/actor/CA", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"targets":[{"baseline_year":2005,"target_value":30}]}}`)
	})
	mux.HandleFunc("/api/v1/actor/DE", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"targets":[]}}`)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	upstream := fakeUpstream(t)
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Cache.Backend = "memory"
	cfg.API.BaseURL = upstream.URL
	cfg.Catalog.MasterURL = upstream.URL + "/master.yaml"
	cfg.Catalog.Sources = map[string]string{"CA": "eccc_inventory"}

	svc, err := dataset.NewService(cfg, nil)
	require.NoError(t, err)

	server := httptest.NewServer(NewServer(cfg, svc, nil).Handler())
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealthz(t *testing.T) {
	server := testServer(t)
	resp, body := get(t, server.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestIndex(t *testing.T) {
	server := testServer(t)
	resp, body := get(t, server.URL+"/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	page := string(body)
	assert.Contains(t, page, "OpenClimate Data Viewer")
	assert.Contains(t, page, `<option value="CA">Canada</option>`)
	assert.Contains(t, page, `<option value="DE">Germany</option>`)
	// only Canada has a configured subnational source
	assert.Equal(t, 1, strings.Count(page, `<option value="DE">`))
}

func TestEmissionsChart(t *testing.T) {
	server := testServer(t)
	resp, body := get(t, server.URL+"/charts/emissions?actors=CA,DE")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, len(body) > 0 && body[0] == 0x89)
}

func TestEmissionsChart_SVGFormat(t *testing.T) {
	server := testServer(t)
	resp, body := get(t, server.URL+"/charts/emissions?actors=CA&format=svg")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "Canada target level")
}

func TestEmissionsChart_MissingParam(t *testing.T) {
	server := testServer(t)
	resp, _ := get(t, server.URL+"/charts/emissions")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEmissionsChart_UnknownActor(t *testing.T) {
	server := testServer(t)
	resp, _ := get(t, server.URL+"/charts/emissions?actors=XX")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestReconciliationChart(t *testing.T) {
	server := testServer(t)
	resp, _ := get(t, server.URL+"/charts/reconciliation?actor=CA")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestDifferenceChart(t *testing.T) {
	server := testServer(t)
	resp, body := get(t, server.URL+"/charts/difference?actor=CA&format=svg")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Difference")
}

func TestReconciliationChart_NoSource(t *testing.T) {
	server := testServer(t)
	resp, _ := get(t, server.URL+"/charts/reconciliation?actor=DE")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestActorsAPI(t *testing.T) {
	server := testServer(t)
	resp, body := get(t, server.URL+"/api/v1/actors")

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var actors []struct {
		Actor string `json:"actor"`
		Name  string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(body, &actors))
	require.Len(t, actors, 2)
	// sorted by display name
	assert.Equal(t, "CA", actors[0].Actor)
	assert.Equal(t, "DE", actors[1].Actor)
}

func TestReconciliationAPI(t *testing.T) {
	server := testServer(t)
	resp, body := get(t, server.URL+"/api/v1/reconciliation?actor=CA")

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Actor string `json:"actor"`
		Name  string `json:"name"`
		Years []struct {
			Year       int     `json:"year"`
			National   float64 `json:"national"`
			SubTotal   float64 `json:"subnational_total"`
			Difference float64 `json:"difference"`
		} `json:"years"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))

	assert.Equal(t, "Canada", payload.Name)
	require.Len(t, payload.Years, 2)
	assert.Equal(t, 2010, payload.Years[0].Year)
	assert.InDelta(t, 20e9, payload.Years[0].Difference, 1)
	assert.Equal(t, 2011, payload.Years[1].Year)
	assert.InDelta(t, 22e9, payload.Years[1].Difference, 1)
}

func TestReconciliationAPI_MissingActor(t *testing.T) {
	server := testServer(t)
	resp, _ := get(t, server.URL+"/api/v1/reconciliation")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
