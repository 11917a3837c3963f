package geocoding_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nmoreno/fiestero/internal/adapters/geocoding"
	"github.com/nmoreno/fiestero/internal/core/domain"
)

func newGeocoder(serverURL string) *geocoding.NominatimGeocoder {
	return geocoding.NewNominatimGeocoder(serverURL, "Bilbao", "fiestero-test/1.0", 2*time.Second)
}

func TestGeocode_FirstCandidateWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("street"); got != "12 Calle Mayor" {
			t.Errorf("unexpected street param: %q", got)
		}
		if got := r.URL.Query().Get("city"); got != "Madrid" {
			t.Errorf("unexpected city param: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"lat": "40.4168", "lon": "-3.7038"},
			{"lat": "0", "lon": "0"}
		]`))
	}))
	defer srv.Close()

	point, err := newGeocoder(srv.URL).Geocode(context.Background(), "Calle Mayor", "12", "Madrid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if point.Lat != 40.4168 || point.Lon != -3.7038 {
		t.Errorf("expected first candidate coordinate, got %+v", point)
	}
}

func TestGeocode_DefaultCityWhenOmitted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("city"); got != "Bilbao" {
			t.Errorf("expected default city, got %q", got)
		}
		w.Write([]byte(`[{"lat": "43.263", "lon": "-2.935"}]`))
	}))
	defer srv.Close()

	if _, err := newGeocoder(srv.URL).Geocode(context.Background(), "Gran Vía", "1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGeocode_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := newGeocoder(srv.URL).Geocode(context.Background(), "Calle Inventada", "999", "")
	if !errors.Is(err, domain.ErrAddressNotFound) {
		t.Errorf("expected ErrAddressNotFound, got %v", err)
	}
}

func TestGeocode_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newGeocoder(srv.URL).Geocode(context.Background(), "Calle Mayor", "12", "")
	if !errors.Is(err, domain.ErrGeocoderUnavailable) {
		t.Errorf("expected ErrGeocoderUnavailable, got %v", err)
	}
}

func TestGeocode_UnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed before use: connection refused

	_, err := newGeocoder(srv.URL).Geocode(context.Background(), "Calle Mayor", "12", "")
	if !errors.Is(err, domain.ErrGeocoderUnavailable) {
		t.Errorf("expected ErrGeocoderUnavailable, got %v", err)
	}
}

func TestGeocode_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"}`))
	}))
	defer srv.Close()

	_, err := newGeocoder(srv.URL).Geocode(context.Background(), "Calle Mayor", "12", "")
	if !errors.Is(err, domain.ErrGeocoderUnavailable) {
		t.Errorf("expected ErrGeocoderUnavailable, got %v", err)
	}
}

func TestGeocode_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := newGeocoder(srv.URL).Geocode(ctx, "Calle Mayor", "12", "")
	if !errors.Is(err, domain.ErrGeocoderUnavailable) {
		t.Errorf("expected ErrGeocoderUnavailable, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in the chain, got %v", err)
	}
}

func TestGeocode_ContextDeadlineExceeded(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := newGeocoder(srv.URL).Geocode(ctx, "Calle Mayor", "12", "")
	if !errors.Is(err, domain.ErrGeocoderUnavailable) {
		t.Errorf("expected ErrGeocoderUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded in the chain, got %v", err)
	}
}
