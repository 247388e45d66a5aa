package ncbi_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/seqpipe/pkg/domain/interfaces"
	"github.com/m-mizutani/seqpipe/pkg/domain/types"
	"github.com/m-mizutani/seqpipe/pkg/infra/ncbi"
)

// newFixtureServer serves testdata pages keyed by the acc or term parameter
func newFixtureServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()

	serve := func(key string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			name, ok := pages[r.URL.Query().Get(key)]
			if !ok {
				http.NotFound(w, r)
				return
			}
			data, err := os.ReadFile(filepath.Join("testdata", name))
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(data)
		}
	}

	router := chi.NewRouter()
	router.Get("/geo/query/acc.cgi", serve("acc"))
	router.Get("/sra", serve("term"))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(server *httptest.Server) interfaces.GEOClient {
	return ncbi.NewClient(
		ncbi.WithGEOURL(server.URL+"/geo/query/acc.cgi"),
		ncbi.WithSRAURL(server.URL+"/sra"),
	)
}

func TestClient_SeriesSamples(t *testing.T) {
	server := newFixtureServer(t, map[string]string{"GSE0000001": "series.html"})
	client := newTestClient(server)

	samples, err := client.SeriesSamples(context.Background(), "GSE0000001")
	gt.NoError(t, err)
	gt.Equal(t, samples, []string{"GSM0000001", "GSM0000002"})
}

func TestClient_Sample(t *testing.T) {
	server := newFixtureServer(t, map[string]string{"GSM0000001": "sample_accepted.html"})
	client := ncbi.NewClient(ncbi.WithGEOURL(server.URL + "/geo/query/acc.cgi"))

	rec, err := client.Sample(context.Background(), "GSM0000001")
	gt.NoError(t, err)
	gt.Equal(t, rec.Accession, "GSM0000001")
	gt.Equal(t, rec.RelationKey, "SRX0000001")
}

func TestClient_SearchRuns(t *testing.T) {
	server := newFixtureServer(t, map[string]string{"SRX0000001": "sra_search.html"})
	client := newTestClient(server)

	runs, err := client.SearchRuns(context.Background(), "SRX0000001")
	gt.NoError(t, err)
	gt.Equal(t, runs, []string{"SRR0000001", "SRR0000002"})
}

func TestClient_NonSuccessStatus(t *testing.T) {
	server := newFixtureServer(t, map[string]string{})
	client := newTestClient(server)

	_, err := client.SeriesSamples(context.Background(), "GSE9999999")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagNetwork))
	gt.String(t, err.Error()).Contains("unexpected status code")
}

func TestClient_SendsUserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><body></body></html>`))
	}))
	defer server.Close()

	client := ncbi.NewClient(ncbi.WithGEOURL(server.URL), ncbi.WithUserAgent("seqpipe-test"))
	_, err := client.SeriesSamples(context.Background(), "GSE0000001")
	gt.NoError(t, err)
	gt.Equal(t, got, "seqpipe-test")
}

func TestClient_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := ncbi.NewClient(ncbi.WithGEOURL(url))
	_, err := client.SeriesSamples(context.Background(), "GSE0000001")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagNetwork))
}

func TestClient_LogsRequests(t *testing.T) {
	server := newFixtureServer(t, map[string]string{"GSE0000001": "series.html"})
	client := newTestClient(server)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.With(context.Background(), logger)

	_, err := client.SeriesSamples(ctx, "GSE0000001")
	gt.NoError(t, err)
	gt.String(t, buf.String()).Contains(`"msg":"HTTP request"`)
	gt.String(t, buf.String()).Contains(`"status":200`)
	gt.String(t, buf.String()).Contains("acc=GSE0000001")
}

type countingTransport struct {
	calls atomic.Int32
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return http.DefaultTransport.RoundTrip(req)
}

func TestClient_TimeoutKeepsHTTPClient(t *testing.T) {
	server := newFixtureServer(t, map[string]string{"GSE0000001": "series.html"})
	transport := &countingTransport{}

	client := ncbi.NewClient(
		ncbi.WithGEOURL(server.URL+"/geo/query/acc.cgi"),
		ncbi.WithHTTPClient(&http.Client{Transport: transport}),
		ncbi.WithTimeout(5*time.Second),
	)

	_, err := client.SeriesSamples(context.Background(), "GSE0000001")
	gt.NoError(t, err)
	gt.Equal(t, transport.calls.Load(), int32(1))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := ncbi.NewClient(
		ncbi.WithGEOURL(server.URL),
		ncbi.WithHTTPClient(&http.Client{}),
		ncbi.WithTimeout(50*time.Millisecond),
	)

	_, err := client.SeriesSamples(context.Background(), "GSE0000001")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagNetwork))
}
