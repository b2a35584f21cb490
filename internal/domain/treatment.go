package domain

// PesticideRate es una dosis de referencia para un producto.
type PesticideRate struct {
	Name             string `json:"name" yaml:"name"`
	ActiveIngredient string `json:"active_ingredient" yaml:"active_ingredient"`
	Dose             string `json:"dose" yaml:"dose"`
	PHI              string `json:"phi" yaml:"phi"`
	Image            string `json:"image,omitempty" yaml:"image"`
}

// TreatmentInfo describe el remedio sugerido para una etiqueta del clasificador.
type TreatmentInfo struct {
	Label      string          `json:"label"`
	Crop       string          `json:"crop"`
	Condition  string          `json:"condition"`
	Solution   string          `json:"solution"`
	Pesticides []PesticideRate `json:"pesticides"`
}
