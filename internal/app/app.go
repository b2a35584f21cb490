package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ecovision/internal/chat"
	"ecovision/internal/config"
	"ecovision/internal/db"
	"ecovision/internal/i18n"
	"ecovision/internal/inference"
	"ecovision/internal/repository"
	"ecovision/internal/service"
	"ecovision/internal/weather"
)

// Stores agrupa el almacén de historial elegido y el cliente Redis opcional.
type Stores struct {
	KV      repository.KeyValueStore
	Redis   *redis.Client
	closers []func()
}

// Close libera conexiones en orden inverso a la apertura.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// OpenStores abre el backend configurado. Redis se conecta si hay REDIS_ADDR
// aunque el historial viva en otro backend: lo usan el busy guard y el chat.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	s := &Stores{}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(ctxPing).Err()
		cancel()
		if err != nil {
			_ = client.Close()
			if cfg.HistoryBackend == config.HistoryBackendRedis {
				return nil, fmt.Errorf("redis ping: %w", err)
			}
			logger.Warn("redis ping failed, continuing without redis", zap.Error(err))
		} else {
			s.Redis = client
			s.closers = append(s.closers, func() { _ = client.Close() })
		}
	}

	switch cfg.HistoryBackend {
	case config.HistoryBackendRedis:
		s.KV = repository.NewRedisStore(s.Redis, 0)
	case config.HistoryBackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("db connect: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		store := repository.NewPgStore(pool)
		if err := store.Migrate(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("db migrate: %w", err)
		}
		s.KV = store
	case config.HistoryBackendSQLite:
		store, err := repository.OpenSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = store.Close() })
		s.KV = store
	default:
		s.KV = repository.NewMemoryStore()
	}

	logger.Info("history backend ready",
		zap.String("backend", cfg.HistoryBackend),
		zap.Bool("redis", s.Redis != nil),
	)
	return s, nil
}

// Services son los casos de uso compartidos por el servidor y la CLI.
type Services struct {
	Catalog    *i18n.Catalog
	Languages  *service.LanguageService
	History    *service.HistoryService
	Chat       *service.ChatService
	Analysis   *service.AnalysisService
	Weather    *service.WeatherService
	Dashboard  *service.DashboardService
	Treatments *service.TreatmentCatalog
}

// NewServices arma los servicios sobre los stores abiertos.
func NewServices(cfg *config.Config, stores *Stores, logger *zap.Logger) (*Services, error) {
	catalog, err := i18n.NewCatalog()
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}
	responder, err := chat.NewResponder(catalog)
	if err != nil {
		return nil, fmt.Errorf("load chat knowledge: %w", err)
	}
	treatments, err := service.NewTreatmentCatalog()
	if err != nil {
		return nil, fmt.Errorf("load treatments: %w", err)
	}
	if cfg.SolutionsCSV != "" {
		if err := loadSolutions(treatments, cfg.SolutionsCSV, logger); err != nil {
			return nil, err
		}
	}

	var guard service.BusyGuard
	if stores.Redis != nil {
		guard = service.NewRedisBusyGuard(stores.Redis, 30*time.Second)
	} else {
		guard = service.NewMemoryBusyGuard()
	}

	seed := uint64(time.Now().UnixNano())
	languages := service.NewLanguageService(catalog, repository.NewPreferenceRepository(stores.KV), cfg.DefaultLanguage, logger)
	history := service.NewHistoryService(repository.NewHistoryRepository(stores.KV), logger)

	return &Services{
		Catalog:    catalog,
		Languages:  languages,
		History:    history,
		Chat:       service.NewChatService(responder, languages, cfg.ChatReplyDelay, logger),
		Analysis:   service.NewAnalysisService(inference.NewMockClassifier(cfg.MockAnalysisDelay, seed), guard, logger),
		Weather:    service.NewWeatherService(weather.NewMockProvider(cfg.MockWeatherDelay, seed+1), languages, guard, logger),
		Dashboard:  service.NewDashboardService(history),
		Treatments: treatments,
	}, nil
}

func loadSolutions(catalog *service.TreatmentCatalog, path string, logger *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open solutions csv: %w", err)
	}
	defer f.Close()
	n, err := catalog.LoadSolutionsCSV(f)
	if err != nil {
		return fmt.Errorf("load solutions csv: %w", err)
	}
	logger.Info("treatment overrides loaded", zap.String("path", path), zap.Int("rows", n))
	return nil
}
