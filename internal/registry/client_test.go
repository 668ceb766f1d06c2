package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/narvanalabs/grid-explorer/internal/models"
)

// pagedServer serves total node records in pages of the requested size.
// When withHeader is false the Pages header is omitted.
func pagedServer(t *testing.T, total int, withHeader bool, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		if r.URL.Path != "/nodes" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "no such endpoint"})
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))

		start := (page - 1) * size
		end := min(start+size, total)
		nodes := make([]models.NodeRecord, 0)
		for i := start; i < end; i++ {
			nodes = append(nodes, models.NodeRecord{NodeID: fmt.Sprintf("node-%d", i), FarmID: "1"})
		}

		if withHeader {
			pages := (total + size - 1) / size
			w.Header().Set(PagesHeader, strconv.Itoa(pages))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(nodes)
	}))
}

func TestListNodesFollowsPagesHeader(t *testing.T) {
	var requests atomic.Int32
	srv := pagedServer(t, 25, true, &requests)
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, 10)
	nodes, err := client.ListNodes(context.Background())
	if err != nil {
		t.Fatalf("ListNodes() error = %v", err)
	}
	if len(nodes) != 25 {
		t.Errorf("ListNodes() returned %d nodes, want 25", len(nodes))
	}
	if nodes[24].NodeID != "node-24" {
		t.Errorf("last node = %q", nodes[24].NodeID)
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("made %d requests, want 3", got)
	}
}

func TestListNodesStopsOnShortPage(t *testing.T) {
	var requests atomic.Int32
	srv := pagedServer(t, 20, false, &requests)
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second, 10)
	nodes, err := client.ListNodes(context.Background())
	if err != nil {
		t.Fatalf("ListNodes() error = %v", err)
	}
	if len(nodes) != 20 {
		t.Errorf("ListNodes() returned %d nodes, want 20", len(nodes))
	}
	// Two full pages, then an empty one.
	if got := requests.Load(); got != 3 {
		t.Errorf("made %d requests, want 3", got)
	}
}

func TestListNodesEmptyRegistry(t *testing.T) {
	srv := pagedServer(t, 0, true, nil)
	defer srv.Close()

	nodes, err := NewClient(srv.URL, time.Second, 10).ListNodes(context.Background())
	if err != nil {
		t.Fatalf("ListNodes() error = %v", err)
	}
	if nodes == nil || len(nodes) != 0 {
		t.Errorf("ListNodes() = %#v, want empty non-nil", nodes)
	}
}

func TestGetPageReportsPageCount(t *testing.T) {
	srv := pagedServer(t, 25, true, nil)
	defer srv.Close()

	var nodes []models.NodeRecord
	pages, err := NewClient(srv.URL, time.Second, 10).getPage(context.Background(), "/nodes", 3, &nodes)
	if err != nil {
		t.Fatalf("getPage() error = %v", err)
	}
	if len(nodes) != 5 || pages != 3 {
		t.Errorf("getPage(3) = %d nodes, %d pages; want 5, 3", len(nodes), pages)
	}
}

func TestErrorBodyIsDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "farm not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, 10).ListFarms(context.Background())
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("ListFarms() error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusNotFound || httpErr.Message != "farm not found" {
		t.Errorf("HTTPError = %+v", httpErr)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound() = false")
	}
}

func TestPlainErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, 10).ListNodes(context.Background())
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Message != "upstream exploded" {
		t.Fatalf("ListNodes() error = %v", err)
	}
	if IsNotFound(err) {
		t.Error("IsNotFound() = true for 502")
	}
}

func TestInvalidPagesHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(PagesHeader, "many")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, time.Second, 10).ListFarms(context.Background()); err == nil {
		t.Error("ListFarms() expected error for invalid Pages header")
	}
}

func TestFarmIDsDecodeFromNumbersAndStrings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(PagesHeader, "1")
		w.Write([]byte(`[{"id": 1, "name": "freefarm"}, {"id": "2", "name": "kristof"}]`))
	}))
	defer srv.Close()

	farms, err := NewClient(srv.URL, time.Second, 10).ListFarms(context.Background())
	if err != nil {
		t.Fatalf("ListFarms() error = %v", err)
	}
	if len(farms) != 2 || farms[0].ID != "1" || farms[1].ID != "2" {
		t.Errorf("ListFarms() = %+v", farms)
	}
}

func TestPing(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/farms" || r.URL.Query().Get("size") != "1" {
			t.Errorf("unexpected ping request %s", r.URL)
		}
		w.Write([]byte(`[]`))
	}))
	defer healthy.Close()

	if err := NewClient(healthy.URL, time.Second, 10).Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	if err := NewClient(broken.URL, time.Second, 10).Ping(context.Background()); err == nil {
		t.Error("Ping() expected error for 503")
	}
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(srv.URL, 0, 0).WithHTTPClient(srv.Client())
	if _, err := client.ListNodes(ctx); err == nil {
		t.Error("ListNodes() expected error after context deadline")
	}
}
