package repository

import (
	"context"
	"errors"
)

const languageKeyPrefix = "farming-language:"

// PreferenceRepository recuerda el idioma elegido por cada cliente.
type PreferenceRepository interface {
	GetLanguage(ctx context.Context, clientID string) (string, error)
	SetLanguage(ctx context.Context, clientID, code string) error
}

type StorePreferenceRepository struct {
	store KeyValueStore
}

func NewPreferenceRepository(store KeyValueStore) *StorePreferenceRepository {
	return &StorePreferenceRepository{store: store}
}

// GetLanguage devuelve "" si el cliente nunca eligió idioma.
func (r *StorePreferenceRepository) GetLanguage(ctx context.Context, clientID string) (string, error) {
	code, err := r.store.Get(ctx, languageKeyPrefix+clientID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return code, err
}

func (r *StorePreferenceRepository) SetLanguage(ctx context.Context, clientID, code string) error {
	return r.store.Set(ctx, languageKeyPrefix+clientID, code)
}
