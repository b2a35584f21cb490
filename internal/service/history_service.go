package service

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ecovision/internal/domain"
	"ecovision/internal/repository"
)

// historyLockStripes acota los mutex por cliente a un conjunto fijo.
const historyLockStripes = 64

var (
	ErrHistoryNotFound = errors.New("history entry not found")
	ErrInvalidAnalysis = errors.New("invalid analysis result")
)

// HistoryService administra el historial de diagnósticos de cada cliente.
// Las entradas nuevas van primero.
type HistoryService struct {
	repo   repository.HistoryRepository
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	locks [historyLockStripes]sync.Mutex
}

func NewHistoryService(repo repository.HistoryRepository, logger *zap.Logger) *HistoryService {
	return &HistoryService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func (s *HistoryService) List(ctx context.Context, clientID string) ([]domain.AnalysisResult, error) {
	unlock := s.lock(clientID)
	defer unlock()
	return s.load(ctx, clientID)
}

// Add guarda el borrador con id y fecha nuevos al inicio de la lista.
func (s *HistoryService) Add(ctx context.Context, clientID string, draft domain.AnalysisDraft) (domain.AnalysisResult, error) {
	if strings.TrimSpace(draft.CropName) == "" || strings.TrimSpace(draft.Issue) == "" ||
		draft.Confidence < 0 || draft.Confidence > 100 {
		return domain.AnalysisResult{}, ErrInvalidAnalysis
	}

	unlock := s.lock(clientID)
	defer unlock()

	items, err := s.load(ctx, clientID)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	entry := domain.NewAnalysisResult(s.newID(), draft, s.now())
	items = append([]domain.AnalysisResult{entry}, items...)
	if err := s.repo.Save(ctx, clientID, items); err != nil {
		return domain.AnalysisResult{}, err
	}
	return entry, nil
}

// Remove borra una entrada conservando el orden del resto.
func (s *HistoryService) Remove(ctx context.Context, clientID, id string) error {
	unlock := s.lock(clientID)
	defer unlock()

	items, err := s.load(ctx, clientID)
	if err != nil {
		return err
	}
	kept := make([]domain.AnalysisResult, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return ErrHistoryNotFound
	}
	return s.repo.Save(ctx, clientID, kept)
}

func (s *HistoryService) Clear(ctx context.Context, clientID string) error {
	unlock := s.lock(clientID)
	defer unlock()
	return s.repo.Clear(ctx, clientID)
}

// load trata un valor corrupto como historial vacío.
func (s *HistoryService) load(ctx context.Context, clientID string) ([]domain.AnalysisResult, error) {
	items, err := s.repo.Load(ctx, clientID)
	if errors.Is(err, repository.ErrCorruptHistory) {
		s.logger.Warn("history parse failed, starting empty", zap.String("client_id", clientID), zap.Error(err))
		return nil, nil
	}
	return items, err
}

// lock serializa las operaciones de un cliente. Clientes distintos pueden
// compartir franja.
func (s *HistoryService) lock(clientID string) func() {
	m := &s.locks[lockStripe(clientID)]
	m.Lock()
	return m.Unlock
}

func lockStripe(clientID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(clientID))
	return int(h.Sum32() % historyLockStripes)
}
