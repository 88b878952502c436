package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/logging"
)

const csvPayload = "network_id,start_time,end_time\n7339641,2026-08-18 03:15:00,2026-08-18 03:45:00\n"

func newAPIServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	var server *httptest.Server

	mux.HandleFunc("/organizations/self/data_aggregation_jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-User-Token") != "test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"data":{"aggregation_jobs":[
			{"dataset":"network_outages","status":"pending","artifact_id":""},
			{"dataset":"network_outages","status":"completed","artifact_id":"artifact-42","scheduled_time":"2026-08-18T10:00:00Z"}
		]}}`)
	})

	mux.HandleFunc("/organizations/self/data_artifacts/artifact-42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":{"download_link":"%s/files/network_outages-2026-08-18.csv?sig=abc"}}`, server.URL)
	})

	mux.HandleFunc("/files/network_outages-2026-08-18.csv", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, csvPayload)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestLatestOutagesArtifact(t *testing.T) {
	server := newAPIServer(t)
	client := NewClient(server.URL, "test-token", logging.NewLogger())

	artifactID, err := client.LatestOutagesArtifact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "artifact-42", artifactID)
}

func TestThatNoCompletedJobIsReportedAsSuch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"aggregation_jobs":[{"dataset":"network_outages","status":"pending"}]}}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-token", logging.NewLogger())

	_, err := client.LatestOutagesArtifact(context.Background())
	assert.ErrorIs(t, err, ErrNoCompletedJob)
}

func TestThatAuthFailuresAreNotRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "wrong-token", logging.NewLogger())

	_, err := client.LatestOutagesArtifact(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, requests, "a 401 must not be retried")
}

func TestThatServerErrorsAreRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"data":{"aggregation_jobs":[{"dataset":"network_outages","status":"completed","artifact_id":"artifact-42"}]}}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-token", logging.NewLogger())

	artifactID, err := client.LatestOutagesArtifact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "artifact-42", artifactID)
	assert.Equal(t, 2, requests)
}

func TestNetworkOutagesHistory(t *testing.T) {
	var startParam string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/organizations/self/network_outages/networks/7339641", r.URL.Path)
		require.Equal(t, "test-token", r.Header.Get("X-User-Token"))
		startParam = r.URL.Query().Get("start")
		fmt.Fprint(w, `{"data":{"outages":[
			{"start":"2026-08-17T22:10:00Z","end":"2026-08-19T04:30:00Z","reason":"wan_down"},
			{"start":"2026-08-19T09:00:00Z","end":"","reason":"power_outage"},
			{"start":"not-a-time","end":"","reason":"wan_down"}
		]}}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-token", logging.NewLogger())

	start := time.Date(2026, 8, 17, 22, 10, 0, 0, time.UTC)
	outages, err := client.NetworkOutages(context.Background(), 7339641, start)
	require.NoError(t, err)

	assert.Equal(t, "2026-08-17T22:10:00.000Z", startParam)
	require.Len(t, outages, 2, "malformed records are skipped")

	assert.True(t, outages[0].Start.Equal(start))
	assert.True(t, outages[0].End.Equal(time.Date(2026, 8, 19, 4, 30, 0, 0, time.UTC)))
	assert.Equal(t, "wan_down", outages[0].Reason)

	assert.True(t, outages[1].End.IsZero(), "an open outage has no end time")
}

func TestDownload(t *testing.T) {
	server := newAPIServer(t)
	client := NewClient(server.URL, "test-token", logging.NewLogger())

	dir := t.TempDir()
	path, err := client.Download(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "network_outages-2026-08-18.csv"), path)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, csvPayload, string(contents))
}
