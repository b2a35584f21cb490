package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ecovision/internal/domain"
	"ecovision/internal/inference"
)

// AnalysisService valida la imagen y la pasa al clasificador.
type AnalysisService struct {
	classifier inference.Classifier
	guard      BusyGuard
	logger     *zap.Logger
}

func NewAnalysisService(classifier inference.Classifier, guard BusyGuard, logger *zap.Logger) *AnalysisService {
	if guard == nil {
		guard = NewMemoryBusyGuard()
	}
	return &AnalysisService{
		classifier: classifier,
		guard:      guard,
		logger:     logger,
	}
}

// Analyze rechaza archivos que no son imagen sin invocar al clasificador.
func (s *AnalysisService) Analyze(ctx context.Context, clientID string, img inference.Image) (domain.AnalysisDraft, error) {
	mime, err := inference.ValidateImage(img)
	if err != nil {
		s.logger.Info("image rejected", zap.String("client_id", clientID), zap.String("mime", mime), zap.Error(err))
		return domain.AnalysisDraft{}, err
	}

	release, err := s.guard.Acquire(ctx, clientID, "analysis")
	if err != nil {
		return domain.AnalysisDraft{}, err
	}
	defer release()

	result, err := s.classifier.Classify(ctx, img)
	if err != nil {
		return domain.AnalysisDraft{}, fmt.Errorf("classify image: %w", err)
	}
	s.logger.Info("image analyzed",
		zap.String("client_id", clientID),
		zap.String("issue", result.Issue),
		zap.Int("confidence", result.Confidence),
	)
	return result, nil
}
