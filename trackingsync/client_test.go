package trackingsync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *trackingClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("TRACKING_RATE_LIMIT_PER_MIN", "60000")
	client, err := newTrackingClient(srv.URL, "test-key")
	if err != nil {
		t.Fatalf("newTrackingClient error: %v", err)
	}
	return client
}

func TestGetContainerParsesSnapshot(t *testing.T) {
	var gotPath, gotKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"container_number": "MSCU1234567",
			"eta": "2025-03-13",
			"port_of_arrival": "Felixstowe",
			"vessel_name": "MSC OSCAR"
		}`))
	})

	wire, err := client.getContainer(context.Background(), "MSCU1234567")
	if err != nil {
		t.Fatalf("getContainer error: %v", err)
	}
	if wire == nil {
		t.Fatal("expected a container payload, got nil")
	}
	if gotPath != "/v1/containers/MSCU1234567" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if wire.ContainerNumber != "MSCU1234567" || wire.Eta != "2025-03-13" || wire.VesselName != "MSC OSCAR" {
		t.Fatalf("unexpected payload: %+v", wire)
	}
}

func TestGetContainerNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	wire, err := client.getContainer(context.Background(), "ZZZZ0000000")
	if err != nil {
		t.Fatalf("expected nil error for 404, got %v", err)
	}
	if wire != nil {
		t.Fatalf("expected nil payload for 404, got %+v", wire)
	}
}

func TestGetContainerServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	wire, err := client.getContainer(context.Background(), "MSCU1234567")
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if wire != nil {
		t.Fatalf("expected nil payload on error, got %+v", wire)
	}
}

func TestNewTrackingClientRequiresConfig(t *testing.T) {
	t.Setenv("TRACKING_API_BASE_URL", "")
	t.Setenv("TRACKING_API_KEY", "")

	if _, err := newTrackingClient("", "key"); err == nil {
		t.Fatal("expected error when base url is empty")
	}
	if _, err := newTrackingClient("https://tracking.example.com", ""); err == nil {
		t.Fatal("expected error when api key is empty")
	}
}
