package chat

import "ecovision/internal/domain"

// WelcomeSuggestions acompaña al mensaje de bienvenida.
func WelcomeSuggestions() []string {
	return []string{
		"My tomato leaves are yellow",
		"Organic fertilizer recommendations",
		"How to set up drip irrigation?",
		"Soil pH is low. What to do?",
	}
}

// ReplySuggestions acompaña a cada respuesta del asistente.
func ReplySuggestions() []string {
	return []string{
		"Tell me more",
		"Other crops?",
		"Any preventive steps?",
		"Organic alternatives?",
	}
}

func QuickQuestions() []domain.QuickQuestion {
	return []domain.QuickQuestion{
		{Text: "Pest identification help", Category: "pest"},
		{Text: "Disease diagnosis", Category: "disease"},
		{Text: "Irrigation advice", Category: "water"},
		{Text: "Seasonal planting guide", Category: "planting"},
		{Text: "Harvest timing", Category: "harvest"},
	}
}
