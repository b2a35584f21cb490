// Package inference define el contrato del clasificador de enfermedades y
// una implementación simulada.
package inference

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"ecovision/internal/domain"
)

// Classifier analiza una imagen de cultivo.
type Classifier interface {
	Classify(ctx context.Context, img Image) (domain.AnalysisDraft, error)
}

// MockClassifier espera delay y devuelve uno de los resultados de muestra al azar.
type MockClassifier struct {
	delay   time.Duration
	results []domain.AnalysisDraft

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockClassifier crea el clasificador simulado. Con seed 0 usa una semilla aleatoria.
func NewMockClassifier(delay time.Duration, seed uint64) *MockClassifier {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &MockClassifier{
		delay:   delay,
		results: SampleResults(),
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (m *MockClassifier) Classify(ctx context.Context, img Image) (domain.AnalysisDraft, error) {
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.AnalysisDraft{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return domain.AnalysisDraft{}, err
	}

	m.mu.Lock()
	idx := m.rng.IntN(len(m.results))
	m.mu.Unlock()

	out := m.results[idx]
	out.Pesticides = append([]string(nil), out.Pesticides...)
	out.ImageRef = img.Filename
	return out, nil
}

// StubClassifier permite tests sin esperas ni azar. Es seguro para uso
// concurrente.
type StubClassifier struct {
	Result domain.AnalysisDraft
	Err    error
	calls  atomic.Int64
}

func (s *StubClassifier) Classify(ctx context.Context, img Image) (domain.AnalysisDraft, error) {
	s.calls.Add(1)
	return s.Result, s.Err
}

// Calls devuelve cuántas veces se llamó a Classify.
func (s *StubClassifier) Calls() int {
	return int(s.calls.Load())
}
