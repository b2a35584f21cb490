package service

import (
	"context"

	"go.uber.org/zap"

	"ecovision/internal/domain"
	"ecovision/internal/weather"
)

// WeatherService consulta al proveedor con las etiquetas en el idioma del cliente.
type WeatherService struct {
	provider  weather.Provider
	languages *LanguageService
	guard     BusyGuard
	logger    *zap.Logger
}

func NewWeatherService(provider weather.Provider, languages *LanguageService, guard BusyGuard, logger *zap.Logger) *WeatherService {
	if guard == nil {
		guard = NewMemoryBusyGuard()
	}
	return &WeatherService{
		provider:  provider,
		languages: languages,
		guard:     guard,
		logger:    logger,
	}
}

func (s *WeatherService) ByLocation(ctx context.Context, clientID, name string) (domain.WeatherSnapshot, error) {
	release, err := s.guard.Acquire(ctx, clientID, "weather")
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}
	defer release()
	return s.provider.ByLocation(ctx, name, s.languages.Translator(ctx, clientID))
}

func (s *WeatherService) ByCoordinates(ctx context.Context, clientID string, lat, lon float64) (domain.WeatherSnapshot, error) {
	release, err := s.guard.Acquire(ctx, clientID, "weather")
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}
	defer release()
	return s.provider.ByCoordinates(ctx, lat, lon, s.languages.Translator(ctx, clientID))
}
