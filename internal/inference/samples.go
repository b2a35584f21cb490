package inference

import "ecovision/internal/domain"

// SampleResults son los diagnósticos que devuelve el clasificador simulado.
func SampleResults() []domain.AnalysisDraft {
	return []domain.AnalysisDraft{
		{
			CropName:   "Tomato",
			Issue:      "Early Blight",
			Confidence: 89,
			Severity:   "Moderate",
			Diagnosis:  "Early Blight detected with 89% confidence. Recommend organic copper fungicide spray every 7-10 days. Ensure good air circulation and avoid overhead watering.",
			Treatment:  "Organic copper fungicide spray every 7-10 days",
			Pesticides: []string{"Copper sulfate", "Bordeaux mixture", "Neem oil", "Bacillus subtilis"},
		},
		{
			CropName:   "Healthy Plant",
			Issue:      domain.IssueHealthy,
			Confidence: 95,
			Severity:   "None",
			Diagnosis:  "Healthy crop detected with 95% confidence. Continue current care routine. Consider preventive neem oil application during humid weather.",
			Treatment:  "Continue current care routine",
			Pesticides: []string{"Preventive neem oil (optional)"},
		},
		{
			CropName:   "Various Crops",
			Issue:      "Aphid Infestation",
			Confidence: 82,
			Severity:   "Mild",
			Diagnosis:  "Aphid infestation detected with 82% confidence. Use insecticidal soap or introduce ladybugs as biological control. Spray with neem oil solution.",
			Treatment:  "Insecticidal soap or biological control",
			Pesticides: []string{"Insecticidal soap", "Neem oil", "Pyrethrin", "Ladybugs (biological)"},
		},
		{
			CropName:   "General Crop",
			Issue:      "Nitrogen Deficiency",
			Confidence: 91,
			Severity:   "Moderate",
			Diagnosis:  "Nitrogen deficiency detected with 91% confidence. Apply organic nitrogen fertilizer (fish emulsion or compost). Yellowing should improve within 1-2 weeks.",
			Treatment:  "Organic nitrogen fertilizer application",
			Pesticides: []string{"Fish emulsion", "Compost", "Blood meal", "Urea (synthetic option)"},
		},
	}
}
