package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alex-user-go/treks/internal/catalog"
)

func newUpstream(t *testing.T, packages []catalog.Package) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/packages", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(packages)
	})
	mux.HandleFunc("GET /api/packages/{id}", func(w http.ResponseWriter, r *http.Request) {
		for _, pkg := range packages {
			if pkg.ID == r.PathValue("id") {
				_ = json.NewEncoder(w).Encode(pkg)
				return
			}
		}
		http.Error(w, "not found", http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestHTTPSource_Package(t *testing.T) {
	server := newUpstream(t, []catalog.Package{
		{ID: "ebc-14", Title: "Everest Base Camp Trek", Price: 1400, Duration: 14, Difficulty: "TOUGH"},
	})
	source := catalog.NewHTTPSource("test", server.URL, 2*time.Second)

	pkg, err := source.Package(context.Background(), "ebc-14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkg.Title != "Everest Base Camp Trek" {
		t.Errorf("unexpected title %q", pkg.Title)
	}
	if pkg.Price != 1400 {
		t.Errorf("expected price 1400, got %v", pkg.Price)
	}
}

func TestHTTPSource_Package_NotFound(t *testing.T) {
	server := newUpstream(t, nil)
	source := catalog.NewHTTPSource("test", server.URL, 2*time.Second)

	_, err := source.Package(context.Background(), "missing")
	if !errors.Is(err, catalog.ErrPackageNotFound) {
		t.Errorf("expected ErrPackageNotFound, got %v", err)
	}
}

func TestHTTPSource_Package_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	source := catalog.NewHTTPSource("test", server.URL, 2*time.Second)

	_, err := source.Package(context.Background(), "ebc-14")
	if !errors.Is(err, catalog.ErrCatalogUnavailable) {
		t.Errorf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestHTTPSource_Package_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // deliberately unreachable
	source := catalog.NewHTTPSource("test", server.URL, 500*time.Millisecond)

	_, err := source.Package(context.Background(), "ebc-14")
	if !errors.Is(err, catalog.ErrCatalogUnavailable) {
		t.Errorf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestHTTPSource_List(t *testing.T) {
	server := newUpstream(t, []catalog.Package{
		{ID: "ebc-14", Title: "Everest Base Camp Trek", Price: 1400},
		{ID: "ghor-5", Title: "Ghorepani Poon Hill Trek", Price: 450},
	})
	source := catalog.NewHTTPSource("test", server.URL, 2*time.Second)

	packages, err := source.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packages) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(packages))
	}
}
