package skills

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/user/copilot/internal/gateway"
)

// fastRetry keeps tests from sleeping through backoff.
func fastRetry() *gateway.RetryPolicy {
	return &gateway.RetryPolicy{
		MaxAttempts:  1,
		InitialDelay: time.Millisecond,
		Multiplier:   1.0,
		MaxDelay:     time.Millisecond,
	}
}

func testWeather(endpoints ...string) *Weather {
	w := NewWeather("Kaluga", endpoints)
	w.retry = fastRetry()
	return w
}

func TestWeatherClearConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "Kaluga") {
			t.Errorf("expected city in path, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("format") != "3" {
			t.Errorf("expected format=3, got %q", r.URL.Query().Get("format"))
		}
		w.Write([]byte("Kaluga: Sunny +20C"))
	}))
	defer srv.Close()

	report := testWeather(srv.URL).Report(context.Background(), "Kaluga")
	if !strings.Contains(report, "Kaluga: Sunny +20C") {
		t.Errorf("expected conditions line, got %q", report)
	}
	if !strings.Contains(report, "Conditions look fine") {
		t.Errorf("expected fine-conditions advice, got %q", report)
	}
}

func TestWeatherRainAdvice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Kaluga: Light rain +8C"))
	}))
	defer srv.Close()

	report := testWeather(srv.URL).Report(context.Background(), "Kaluga")
	if !strings.Contains(report, "wet") {
		t.Errorf("expected wet-road advice, got %q", report)
	}
}

func TestWeatherSnowAdvice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Kaluga: Snow -5C"))
	}))
	defer srv.Close()

	report := testWeather(srv.URL).Report(context.Background(), "Kaluga")
	if !strings.Contains(report, "slippery") {
		t.Errorf("expected slippery-road advice, got %q", report)
	}
}

func TestWeatherFallsBackToNextEndpoint(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Kaluga: Clear +15C"))
	}))
	defer good.Close()

	report := testWeather(bad.URL, good.URL).Report(context.Background(), "Kaluga")
	if !strings.Contains(report, "Clear +15C") {
		t.Errorf("expected second endpoint's conditions, got %q", report)
	}
}

func TestWeatherAllEndpointsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	srv.Close()

	report := testWeather(srv.URL).Report(context.Background(), "Kaluga")
	if !strings.Contains(report, "unreachable") {
		t.Errorf("expected caution fallback, got %q", report)
	}
	if !strings.Contains(report, "caution") {
		t.Errorf("expected caution advice, got %q", report)
	}
}

func TestWeatherExecuteDefaultsCity(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("Kaluga: Sunny"))
	}))
	defer srv.Close()

	result, err := testWeather(srv.URL).Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if result == "" {
		t.Error("expected non-empty result")
	}
	if !strings.Contains(gotPath, "Kaluga") {
		t.Errorf("expected default city in request, got %s", gotPath)
	}
}
