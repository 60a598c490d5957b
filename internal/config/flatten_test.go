package config

import (
	"reflect"
	"testing"
)

func TestFlatten(t *testing.T) {
	nested := map[string]any{
		"log_level": "info",
		"llm": map[string]any{
			"provider": "openai",
			"model":    "deepseek-chat",
		},
		"vehicle": map[string]any{
			"oil_interval_km": float64(10000),
		},
	}

	flat := Flatten(nested)

	if flat["log_level"] != "info" {
		t.Errorf("expected log_level=info, got %v", flat["log_level"])
	}
	if flat["llm.provider"] != "openai" {
		t.Errorf("expected llm.provider=openai, got %v", flat["llm.provider"])
	}
	if flat["vehicle.oil_interval_km"] != float64(10000) {
		t.Errorf("expected vehicle.oil_interval_km=10000, got %v", flat["vehicle.oil_interval_km"])
	}
}

func TestUnflattenRoundTrip(t *testing.T) {
	nested := map[string]any{
		"log_level": "info",
		"llm": map[string]any{
			"provider": "openai",
			"model":    "deepseek-chat",
		},
	}

	got := Unflatten(Flatten(nested))
	if !reflect.DeepEqual(got, nested) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", got, nested)
	}
}

func TestMaskSecrets(t *testing.T) {
	flat := map[string]any{
		"llm.api_key":    "sk-abcdef1234",
		"telegram.token": "tok",
		"log_level":      "info",
	}

	masked := MaskSecrets(flat)

	if masked["llm.api_key"] != "***1234" {
		t.Errorf("expected ***1234, got %v", masked["llm.api_key"])
	}
	// Short secrets keep their full value behind the prefix.
	if masked["telegram.token"] != "***tok" {
		t.Errorf("expected ***tok, got %v", masked["telegram.token"])
	}
	if masked["log_level"] != "info" {
		t.Errorf("expected non-secret untouched, got %v", masked["log_level"])
	}
}

func TestIsSecretKey(t *testing.T) {
	if !IsSecretKey("llm.api_key") {
		t.Error("llm.api_key should be secret")
	}
	if !IsSecretKey("telegram.token") {
		t.Error("telegram.token should be secret")
	}
	if IsSecretKey("log_level") {
		t.Error("log_level should not be secret")
	}
}
