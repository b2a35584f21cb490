package domain

// Language describe un idioma seleccionable por el usuario.
type Language struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	NativeName   string `json:"native_name"`
	SpeechLocale string `json:"speech_locale"`
}
