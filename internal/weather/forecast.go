package weather

import "ecovision/internal/domain"

// Forecast devuelve el pronóstico fijo de cinco días.
func Forecast(labels Labeler) []domain.ForecastDay {
	day := func(dayKey string, high, low int, condKey, icon string, rain int) domain.ForecastDay {
		return domain.ForecastDay{
			Day:        label(labels, dayKey),
			High:       high,
			Low:        low,
			Condition:  label(labels, condKey),
			Icon:       icon,
			RainChance: rain,
		}
	}
	return []domain.ForecastDay{
		day("today", 26, 18, "partlyCloudy", "cloud-sun", 20),
		day("tomorrow", 28, 20, "sunny", "sun", 0),
		day("wednesday", 23, 16, "rainy", "cloud-rain", 80),
		day("thursday", 25, 17, "cloudy", "cloud", 30),
		day("friday", 27, 19, "sunny", "sun", 10),
	}
}

// Tips devuelve los consejos agrícolas derivados del pronóstico.
func Tips(labels Labeler) []domain.FarmingTip {
	return []domain.FarmingTip{
		{
			Type:     "irrigation",
			Title:    label(labels, "irrigationRecommendation"),
			Message:  "Rain expected Wednesday. Reduce watering schedule to prevent over-irrigation.",
			Priority: domain.PriorityMedium,
		},
		{
			Type:     "pest",
			Title:    label(labels, "pestAlert"),
			Message:  "High humidity levels may increase aphid activity. Monitor crops closely.",
			Priority: domain.PriorityHigh,
		},
		{
			Type:     "planting",
			Title:    label(labels, "plantingWindow"),
			Message:  "Ideal conditions for planting tomatoes this weekend with stable temperatures.",
			Priority: domain.PriorityLow,
		},
	}
}

func Summary(labels Labeler) domain.WeatherSummary {
	return domain.WeatherSummary{
		BestPlantingDay:  label(labels, "friday"),
		RainExpected:     label(labels, "wednesday"),
		IrrigationNeeded: label(labels, "reduced"),
		PestRisk:         label(labels, "high"),
	}
}
