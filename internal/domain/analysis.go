package domain

import "time"

// AnalysisDraft es el resultado de un diagnóstico antes de guardarse en historial.
type AnalysisDraft struct {
	CropName   string   `json:"crop_name"`
	Issue      string   `json:"issue"`
	Confidence int      `json:"confidence"`
	Severity   string   `json:"severity,omitempty"`
	Diagnosis  string   `json:"diagnosis"`
	Treatment  string   `json:"treatment"`
	Pesticides []string `json:"pesticides,omitempty"`
	ImageRef   string   `json:"image_ref,omitempty"`
}

// AnalysisResult es una entrada del historial de diagnósticos.
type AnalysisResult struct {
	ID         string    `json:"id"`
	CropName   string    `json:"crop_name"`
	Issue      string    `json:"issue"`
	Confidence int       `json:"confidence"`
	Severity   string    `json:"severity,omitempty"`
	Diagnosis  string    `json:"diagnosis"`
	Treatment  string    `json:"treatment"`
	Pesticides []string  `json:"pesticides,omitempty"`
	ImageRef   string    `json:"image_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAnalysisResult materializa un borrador con id y fecha.
func NewAnalysisResult(id string, draft AnalysisDraft, createdAt time.Time) AnalysisResult {
	return AnalysisResult{
		ID:         id,
		CropName:   draft.CropName,
		Issue:      draft.Issue,
		Confidence: draft.Confidence,
		Severity:   draft.Severity,
		Diagnosis:  draft.Diagnosis,
		Treatment:  draft.Treatment,
		Pesticides: append([]string(nil), draft.Pesticides...),
		ImageRef:   draft.ImageRef,
		CreatedAt:  createdAt,
	}
}

// Healthy indica si el diagnóstico no encontró problemas.
func (r AnalysisResult) Healthy() bool {
	return r.Issue == IssueHealthy
}

// IssueHealthy marca un cultivo sin enfermedad detectada.
const IssueHealthy = "Healthy"
