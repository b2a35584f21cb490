package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"ecovision/internal/repository"
	"ecovision/internal/weather"
)

func TestWeatherServiceUsesClientLanguage(t *testing.T) {
	ctx := context.Background()
	langs := newTestLanguageService(t, repository.NewPreferenceRepository(repository.NewMemoryStore()))
	svc := NewWeatherService(weather.NewMockProvider(0, 1), langs, nil, zap.NewNop())

	en, err := svc.ByLocation(ctx, "c1", "Nashik")
	if err != nil {
		t.Fatalf("weather: %v", err)
	}
	if en.Condition != "Partly Cloudy" {
		t.Fatalf("unexpected condition %q", en.Condition)
	}

	_, _ = langs.SetLanguage(ctx, "c1", "es")
	es, _ := svc.ByCoordinates(ctx, "c1", 19.99, 73.79)
	if es.Condition == en.Condition {
		t.Fatalf("expected translated condition, got %q", es.Condition)
	}
	if es.Location != "Lat: 19.99, Lon: 73.79" {
		t.Fatalf("unexpected label %q", es.Location)
	}
}

func TestWeatherServiceBusyAndValidation(t *testing.T) {
	langs := newTestLanguageService(t, nil)
	svc := NewWeatherService(weather.NewMockProvider(0, 1), langs, blockingGuard{}, zap.NewNop())
	if _, err := svc.ByLocation(context.Background(), "c1", "Nashik"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	svc = NewWeatherService(weather.NewMockProvider(0, 1), langs, nil, zap.NewNop())
	if _, err := svc.ByLocation(context.Background(), "c1", ""); !errors.Is(err, weather.ErrLocationRequired) {
		t.Fatalf("expected ErrLocationRequired, got %v", err)
	}
}
