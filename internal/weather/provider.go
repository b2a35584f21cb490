// Package weather expone condiciones, pronóstico y consejos agrícolas
// detrás de una interfaz de proveedor.
package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"ecovision/internal/domain"
)

var (
	ErrLocationRequired   = errors.New("location required")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Labeler traduce las etiquetas visibles (condiciones, días, consejos).
type Labeler interface {
	T(key string) string
}

// Provider obtiene un snapshot del clima por nombre o por coordenadas.
type Provider interface {
	ByLocation(ctx context.Context, name string, labels Labeler) (domain.WeatherSnapshot, error)
	ByCoordinates(ctx context.Context, lat, lon float64, labels Labeler) (domain.WeatherSnapshot, error)
}

// ranges define base y amplitud de cada magnitud aleatoria.
type ranges struct {
	temp, humidity, wind, visibility, uv [2]float64
}

var (
	locationRanges = ranges{
		temp: [2]float64{15, 20}, humidity: [2]float64{40, 50}, wind: [2]float64{3, 25},
		visibility: [2]float64{5, 10}, uv: [2]float64{2, 8},
	}
	coordinateRanges = ranges{
		temp: [2]float64{20, 15}, humidity: [2]float64{50, 40}, wind: [2]float64{5, 20},
		visibility: [2]float64{8, 7}, uv: [2]float64{3, 7},
	}
)

// MockProvider genera condiciones aleatorias plausibles después de un delay.
type MockProvider struct {
	delay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockProvider crea el proveedor simulado. Con seed 0 usa una semilla aleatoria.
func NewMockProvider(delay time.Duration, seed uint64) *MockProvider {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &MockProvider{
		delay: delay,
		rng:   rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

func (p *MockProvider) ByLocation(ctx context.Context, name string, labels Labeler) (domain.WeatherSnapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.WeatherSnapshot{}, ErrLocationRequired
	}
	if err := p.wait(ctx); err != nil {
		return domain.WeatherSnapshot{}, err
	}
	return p.snapshot(name, locationRanges, labels), nil
}

func (p *MockProvider) ByCoordinates(ctx context.Context, lat, lon float64, labels Labeler) (domain.WeatherSnapshot, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.WeatherSnapshot{}, ErrInvalidCoordinates
	}
	if err := p.wait(ctx); err != nil {
		return domain.WeatherSnapshot{}, err
	}
	label := fmt.Sprintf("Lat: %.2f, Lon: %.2f", lat, lon)
	return p.snapshot(label, coordinateRanges, labels), nil
}

func (p *MockProvider) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *MockProvider) snapshot(location string, r ranges, labels Labeler) domain.WeatherSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	sample := func(rg [2]float64) int {
		return int(math.Round(rg[0] + p.rng.Float64()*rg[1]))
	}
	return domain.WeatherSnapshot{
		Location:    location,
		Temperature: sample(r.temp),
		Condition:   label(labels, "partlyCloudy"),
		Humidity:    sample(r.humidity),
		WindSpeed:   sample(r.wind),
		Visibility:  sample(r.visibility),
		UVIndex:     sample(r.uv),
		Forecast:    Forecast(labels),
		Tips:        Tips(labels),
		Summary:     Summary(labels),
	}
}

func label(labels Labeler, key string) string {
	if labels == nil {
		return key
	}
	return labels.T(key)
}
