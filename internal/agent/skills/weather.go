// Package skills implements the fixed catalogue of capabilities the model
// can invoke: weather, part lookup, service-record mutations, reports, the
// daily briefing, and the roadside emergency script.
package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/user/copilot/internal/gateway"
)

// Weather fetches current conditions from a chain of wttr-style endpoints
// and turns them into road advice. It never fails: when every endpoint is
// down it falls back to generic caution.
type Weather struct {
	city      string
	endpoints []string
	client    *http.Client
	retry     *gateway.RetryPolicy
}

// NewWeather creates the weather skill with a default city and the endpoint
// chain to try in order.
func NewWeather(city string, endpoints []string) *Weather {
	return &Weather{
		city:      city,
		endpoints: endpoints,
		client:    &http.Client{Timeout: 10 * time.Second},
		retry:     gateway.DefaultRetryPolicy(),
	}
}

func (w *Weather) Name() string { return "get_weather" }
func (w *Weather) Description() string {
	return "Get the current weather and road conditions for a city"
}
func (w *Weather) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"city": {"type": "string", "description": "City to check; omit for the driver's home city"}
		}
	}`)
}

func (w *Weather) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		City string `json:"city"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return "", fmt.Errorf("parse args: %w", err)
		}
	}
	city := params.City
	if city == "" {
		city = w.city
	}
	return w.Report(ctx, city), nil
}

// Report fetches conditions for a city and appends road advice. Also used
// directly by the daily briefing.
func (w *Weather) Report(ctx context.Context, city string) string {
	for _, endpoint := range w.endpoints {
		var report string
		err := w.retry.Execute(func() error {
			var err error
			report, err = w.fetch(ctx, endpoint, city)
			return err
		})
		if err != nil {
			continue
		}
		return report + "\n" + roadAdvice(report)
	}
	return fmt.Sprintf("The weather service is unreachable, so I have no live conditions for %s. Check the sky before you leave and drive with extra caution.", city)
}

func (w *Weather) fetch(ctx context.Context, endpoint, city string) (string, error) {
	u := fmt.Sprintf("%s/%s?format=3", strings.TrimRight(endpoint, "/"), url.PathEscape(city))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather endpoint returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("read weather response: %w", err)
	}

	report := strings.TrimSpace(string(body))
	if report == "" {
		return "", fmt.Errorf("weather endpoint returned empty body")
	}
	return report, nil
}

// roadAdvice maps the conditions line to driving advice by keyword.
func roadAdvice(report string) string {
	lower := strings.ToLower(report)
	switch {
	case containsAny(lower, "rain", "drizzle", "shower"):
		return "The road is likely wet: keep extra distance and brake early."
	case containsAny(lower, "snow", "ice", "frost", "freez"):
		return "The road may be slippery: drive slowly and avoid sharp braking or steering."
	default:
		return "Conditions look fine for driving."
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
