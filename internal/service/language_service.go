package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"ecovision/internal/domain"
	"ecovision/internal/i18n"
	"ecovision/internal/repository"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// LanguageService mantiene el idioma activo de cada cliente.
type LanguageService struct {
	catalog     *i18n.Catalog
	prefs       repository.PreferenceRepository
	defaultLang string
	logger      *zap.Logger
}

func NewLanguageService(catalog *i18n.Catalog, prefs repository.PreferenceRepository, defaultLang string, logger *zap.Logger) *LanguageService {
	defaultLang = i18n.Normalize(defaultLang)
	if !catalog.Supported(defaultLang) {
		defaultLang = i18n.DefaultLanguage
	}
	return &LanguageService{
		catalog:     catalog,
		prefs:       prefs,
		defaultLang: defaultLang,
		logger:      logger,
	}
}

// Current devuelve el idioma guardado o el idioma por defecto. Un fallo del
// store no impide renderizar.
func (s *LanguageService) Current(ctx context.Context, clientID string) string {
	if s.prefs == nil || clientID == "" {
		return s.defaultLang
	}
	code, err := s.prefs.GetLanguage(ctx, clientID)
	if err != nil {
		s.logger.Warn("load language preference failed", zap.String("client_id", clientID), zap.Error(err))
		return s.defaultLang
	}
	if code == "" || !s.catalog.Supported(code) {
		return s.defaultLang
	}
	return code
}

// SetLanguage cambia y persiste el idioma activo.
func (s *LanguageService) SetLanguage(ctx context.Context, clientID, code string) (domain.Language, error) {
	code = i18n.Normalize(code)
	if !s.catalog.Supported(code) {
		return domain.Language{}, ErrUnsupportedLanguage
	}
	if s.prefs != nil && clientID != "" {
		if err := s.prefs.SetLanguage(ctx, clientID, code); err != nil {
			return domain.Language{}, err
		}
	}
	return s.catalog.Language(code), nil
}

func (s *LanguageService) Translate(ctx context.Context, clientID, key string) string {
	return s.catalog.Translate(s.Current(ctx, clientID), key)
}

// Translator fija el idioma activo para renderizar una vista completa.
func (s *LanguageService) Translator(ctx context.Context, clientID string) i18n.Translator {
	return s.catalog.For(s.Current(ctx, clientID))
}

func (s *LanguageService) Languages() []domain.Language {
	return s.catalog.Languages()
}

func (s *LanguageService) Catalog() *i18n.Catalog {
	return s.catalog
}
