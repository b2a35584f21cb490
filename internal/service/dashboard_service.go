package service

import (
	"context"
	"errors"

	"ecovision/internal/domain"
)

var ErrInvalidTimeRange = errors.New("invalid time range")

const defaultTimeRange = "30d"

var timeRanges = map[string]bool{"7d": true, "30d": true, "90d": true}

// DashboardService arma el panel con datos de muestra y el historial del cliente.
type DashboardService struct {
	history *HistoryService
}

func NewDashboardService(history *HistoryService) *DashboardService {
	return &DashboardService{history: history}
}

func (s *DashboardService) Report(ctx context.Context, clientID, timeRange string) (domain.DashboardReport, error) {
	if timeRange == "" {
		timeRange = defaultTimeRange
	}
	if !timeRanges[timeRange] {
		return domain.DashboardReport{}, ErrInvalidTimeRange
	}
	items, err := s.history.List(ctx, clientID)
	if err != nil {
		return domain.DashboardReport{}, err
	}
	return domain.DashboardReport{
		TimeRange:        timeRange,
		Stats:            sampleStats(),
		RecentDetections: sampleDetections(),
		CropHealth:       sampleCropHealth(),
		WeatherImpact:    sampleWeatherImpact(),
		Client:           summarize(items),
	}, nil
}

func summarize(items []domain.AnalysisResult) domain.ClientSummary {
	sum := domain.ClientSummary{TotalScans: len(items)}
	for _, it := range items {
		if it.Healthy() {
			sum.HealthyScans++
		}
	}
	sum.IssuesDetected = sum.TotalScans - sum.HealthyScans
	if sum.TotalScans > 0 {
		sum.HealthyPercentage = sum.HealthyScans * 100 / sum.TotalScans
	}
	latest := items
	if len(latest) > 5 {
		latest = latest[:5]
	}
	sum.Latest = append([]domain.AnalysisResult{}, latest...)
	return sum
}

func sampleStats() domain.DashboardStats {
	return domain.DashboardStats{
		TotalScans:       156,
		DiseasesDetected: 23,
		HealthyScans:     133,
		Accuracy:         94,
		Trends:           domain.Trend{Scans: "+15%", Diseases: "-8%", Health: "+12%"},
	}
}

func sampleDetections() []domain.Detection {
	return []domain.Detection{
		{ID: "1", Date: "2024-01-15", Crop: "Tomato", Disease: "Early Blight", Severity: "Moderate", Confidence: 92, Status: "treated"},
		{ID: "2", Date: "2024-01-14", Crop: "Corn", Disease: "Healthy", Severity: "None", Confidence: 96, Status: "healthy"},
		{ID: "3", Date: "2024-01-13", Crop: "Wheat", Disease: "Rust Disease", Severity: "High", Confidence: 89, Status: "monitoring"},
		{ID: "4", Date: "2024-01-12", Crop: "Potato", Disease: "Aphid Infestation", Severity: "Mild", Confidence: 87, Status: "treated"},
	}
}

func sampleCropHealth() []domain.CropHealth {
	return []domain.CropHealth{
		{Crop: "Tomatoes", HealthScore: 85, TotalScans: 45, HealthyScans: 38, DiseasedScans: 7},
		{Crop: "Corn", HealthScore: 92, TotalScans: 32, HealthyScans: 29, DiseasedScans: 3},
		{Crop: "Wheat", HealthScore: 78, TotalScans: 28, HealthyScans: 22, DiseasedScans: 6},
		{Crop: "Potatoes", HealthScore: 88, TotalScans: 51, HealthyScans: 45, DiseasedScans: 6},
	}
}

func sampleWeatherImpact() domain.WeatherImpact {
	return domain.WeatherImpact{
		Condition: "Favorable",
		Risk:      "Low",
		Recommendations: []string{
			"Continue regular monitoring",
			"Maintain current irrigation schedule",
			"Monitor for increased pest activity next week",
		},
	}
}
