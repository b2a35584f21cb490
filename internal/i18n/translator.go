package i18n

// Translator traduce claves en un idioma fijo. Una vista completa se
// renderiza con un único Translator para no mezclar idiomas.
type Translator struct {
	catalog *Catalog
	lang    string
}

// T traduce key.
func (t Translator) T(key string) string {
	if t.catalog == nil {
		return key
	}
	return t.catalog.Translate(t.lang, key)
}

// Language devuelve el código de idioma activo.
func (t Translator) Language() string {
	return t.lang
}

// SpeechLocale devuelve el locale de voz del idioma activo.
func (t Translator) SpeechLocale() string {
	return SpeechLocale(t.lang)
}
