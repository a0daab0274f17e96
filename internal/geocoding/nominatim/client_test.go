package nominatim

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_Search_Success(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent := r.Header.Get("User-Agent")
		if userAgent != "mapgen/1.0 (test@example.com)" {
			t.Errorf("unexpected User-Agent: %s", userAgent)
		}
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		query := r.URL.Query()
		if query.Get("q") != "Paris, France" {
			t.Errorf("unexpected query: %s", query.Get("q"))
		}
		if query.Get("format") != "jsonv2" {
			t.Errorf("unexpected format: %s", query.Get("format"))
		}
		if query.Get("limit") != "1" {
			t.Errorf("unexpected limit: %s", query.Get("limit"))
		}
		if query.Get("countrycodes") != "fr" {
			t.Errorf("unexpected countrycodes: %s", query.Get("countrycodes"))
		}

		results := []SearchResult{
			{
				PlaceID:     88066702,
				Lat:         "48.8566",
				Lon:         "2.3522",
				DisplayName: "Paris, Île-de-France, France métropolitaine, France",
				Type:        "city",
				Category:    "boundary",
				Importance:  0.88,
				OSMID:       7444,
				OSMType:     "relation",
			},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(results)
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, "test@example.com", WithRateLimit(100))

	results, err := client.Search(context.Background(), "Paris, France", SearchOptions{
		CountryCodes: "fr",
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Lat != "48.8566" || results[0].Lon != "2.3522" {
		t.Errorf("unexpected coordinates: %s,%s", results[0].Lat, results[0].Lon)
	}
}

func TestClient_Search_EscapesQuery(t *testing.T) {
	var rawQuery string
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte("[]"))
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, "", WithRateLimit(100))
	if _, err := client.Search(context.Background(), "1 Rue de Rivoli & Co #2", SearchOptions{}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !strings.Contains(rawQuery, "q=1+Rue+de+Rivoli+%26+Co+%232") {
		t.Errorf("query not escaped: %s", rawQuery)
	}
}

func TestClient_Search_EmptyQuery(t *testing.T) {
	client := NewClient(DefaultBaseURL, "test@example.com")

	_, err := client.Search(context.Background(), "   ", SearchOptions{})
	if err == nil {
		t.Fatal("expected error for empty query, got nil")
	}
	if !strings.Contains(err.Error(), "cannot be empty") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestClient_Search_LimitClamped(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("expected limit clamped to 50, got %s", got)
		}
		if got := r.URL.Query().Get("bounded"); got != "1" {
			t.Errorf("expected bounded=1 with viewbox, got %q", got)
		}
		_, _ = w.Write([]byte("[]"))
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, "", WithRateLimit(100))
	_, err := client.Search(context.Background(), "Paris", SearchOptions{
		Limit:   500,
		Viewbox: &Viewbox{MinLat: 48, MinLon: 2, MaxLat: 49, MaxLon: 3},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
}

func TestClient_RateLimit(t *testing.T) {
	var requestCount int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]SearchResult{})
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, "test@example.com", WithRateLimit(10))

	ctx := context.Background()
	start := time.Now()

	for i := 0; i < 3; i++ {
		if _, err := client.Search(ctx, "test", SearchOptions{Limit: 1}); err != nil {
			t.Fatalf("Search failed: %v", err)
		}
	}

	duration := time.Since(start)

	if got := atomic.LoadInt32(&requestCount); got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}

	// With 10 req/s, 3 requests should take at least 200ms (due to rate limiting)
	minDuration := 200 * time.Millisecond
	if duration < minDuration {
		t.Errorf("rate limiting not working: expected at least %v, got %v", minDuration, duration)
	}
}

func TestClient_NoRetryByDefault(t *testing.T) {
	var attemptCount int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, "test@example.com", WithRateLimit(100))

	_, err := client.Search(context.Background(), "test", SearchOptions{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "server error (500)") {
		t.Errorf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&attemptCount); got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}
}

func TestClient_Retry_ServerError(t *testing.T) {
	var attemptCount int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attemptCount, 1) < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]SearchResult{})
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, "test@example.com",
		WithRateLimit(100),
		WithMaxRetries(2),
		WithRetryDelay(time.Millisecond))

	if _, err := client.Search(context.Background(), "test", SearchOptions{Limit: 1}); err != nil {
		t.Fatalf("Search failed after retry: %v", err)
	}
	if got := atomic.LoadInt32(&attemptCount); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestClient_Retry_MaxRetries(t *testing.T) {
	var attemptCount int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, "test@example.com",
		WithRateLimit(100),
		WithMaxRetries(2),
		WithRetryDelay(time.Millisecond))

	_, err := client.Search(context.Background(), "test", SearchOptions{Limit: 1})
	if err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	if !strings.Contains(err.Error(), "max retries exceeded") {
		t.Errorf("unexpected error: %v", err)
	}

	// initial + MaxRetries (2) = 3 total
	if got := atomic.LoadInt32(&attemptCount); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var attemptCount int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, "", WithRateLimit(100), WithMaxRetries(3), WithRetryDelay(time.Millisecond))

	_, err := client.Search(context.Background(), "test", SearchOptions{})
	if err == nil || !strings.Contains(err.Error(), "unexpected status code 400") {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&attemptCount); got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}
}

func TestClient_Timeout(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte("[]"))
	}))
	defer mockServer.Close()

	httpClient := &http.Client{Timeout: 50 * time.Millisecond}
	client := NewClient(mockServer.URL, "test@example.com",
		WithHTTPClient(httpClient),
		WithRateLimit(100))

	if _, err := client.Search(context.Background(), "test", SearchOptions{Limit: 1}); err == nil {
		t.Fatal("expected timeout error, got nil")
	}
}
