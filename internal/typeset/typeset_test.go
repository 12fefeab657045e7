package typeset

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tiletex/tiletex/pkg/raster"
)

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := raster.NewRGBA(w, h)
	for i := 3; i < len(img.Buf); i += 4 {
		img.Buf[i] = 255
	}
	data, err := raster.EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	return data
}

func TestServiceRasterize(t *testing.T) {
	fixture := pngFixture(t, 6, 4)

	var got Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected Content-Type application/json, got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(fixture)
	}))
	defer ts.Close()

	svc := NewService(ts.URL)
	img, err := svc.Rasterize(context.Background(), Request{
		Markup:   `\alpha`,
		Scale:    2,
		FontSize: 16,
		Color:    "#00ff00",
	})
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}

	if img.Width != 6 || img.Height != 4 || img.Depth != 4 {
		t.Errorf("Expected a 6x4x4 image, got %dx%dx%d", img.Width, img.Height, img.Depth)
	}

	if got.Markup != `\alpha` || got.Scale != 2 || got.FontSize != 16 || got.Color != "#00ff00" {
		t.Errorf("Request not forwarded verbatim: %+v", got)
	}
}

func TestServiceMarkupRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "undefined control sequence \\frok"})
	}))
	defer ts.Close()

	svc := NewService(ts.URL)
	_, err := svc.Rasterize(context.Background(), Request{Markup: `\frok{1}{2}`})

	var typesetErr *Error
	if !errors.As(err, &typesetErr) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if typesetErr.Message != "undefined control sequence \\frok" {
		t.Errorf("Expected the service diagnostic verbatim, got %q", typesetErr.Message)
	}
}

func TestServiceServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	svc := NewService(ts.URL)
	_, err := svc.Rasterize(context.Background(), Request{Markup: "x"})

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("Expected *UpstreamError, got %v", err)
	}
	if upstreamErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", upstreamErr.StatusCode)
	}
}

func TestServiceUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from here on

	svc := NewService(ts.URL)
	_, err := svc.Rasterize(context.Background(), Request{Markup: "x"})

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("Expected *UpstreamError, got %v", err)
	}
}

func TestServiceBadBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a raster"))
	}))
	defer ts.Close()

	svc := NewService(ts.URL)
	_, err := svc.Rasterize(context.Background(), Request{Markup: "x"})

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("Expected *UpstreamError for an undecodable body, got %v", err)
	}
}

func TestService4xxWithoutErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	svc := NewService(ts.URL)
	_, err := svc.Rasterize(context.Background(), Request{Markup: "x"})

	// Without a JSON diagnostic this is a service problem, not a markup one.
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("Expected *UpstreamError, got %v", err)
	}
	if upstreamErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", upstreamErr.StatusCode)
	}
}
