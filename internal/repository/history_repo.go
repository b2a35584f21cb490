package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ecovision/internal/domain"
)

// ErrCorruptHistory indica que el valor guardado no se pudo decodificar.
var ErrCorruptHistory = errors.New("corrupt history")

const historyKeyPrefix = "farming-history:"

// HistoryRepository guarda la lista ordenada de diagnósticos de cada cliente.
type HistoryRepository interface {
	Load(ctx context.Context, clientID string) ([]domain.AnalysisResult, error)
	Save(ctx context.Context, clientID string, items []domain.AnalysisResult) error
	Clear(ctx context.Context, clientID string) error
}

// StoreHistoryRepository serializa el historial completo como JSON bajo una clave.
type StoreHistoryRepository struct {
	store KeyValueStore
}

func NewHistoryRepository(store KeyValueStore) *StoreHistoryRepository {
	return &StoreHistoryRepository{store: store}
}

func (r *StoreHistoryRepository) Load(ctx context.Context, clientID string) ([]domain.AnalysisResult, error) {
	raw, err := r.store.Get(ctx, historyKeyPrefix+clientID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []domain.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}
	return items, nil
}

func (r *StoreHistoryRepository) Save(ctx context.Context, clientID string, items []domain.AnalysisResult) error {
	if items == nil {
		items = []domain.AnalysisResult{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, historyKeyPrefix+clientID, string(raw))
}

func (r *StoreHistoryRepository) Clear(ctx context.Context, clientID string) error {
	return r.store.Delete(ctx, historyKeyPrefix+clientID)
}
