// Package i18n carga las tablas de traducción embebidas y resuelve claves
// con fallback al idioma por defecto.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"ecovision/internal/domain"
)

// DefaultLanguage es el idioma base de todas las tablas.
const DefaultLanguage = "en"

//go:embed locales/*.yaml
var localeFS embed.FS

var languages = []domain.Language{
	{Code: "en", Name: "English", NativeName: "English", SpeechLocale: "en-US"},
	{Code: "es", Name: "Spanish", NativeName: "Español", SpeechLocale: "es-ES"},
	{Code: "hi", Name: "Hindi", NativeName: "हिंदी", SpeechLocale: "hi-IN"},
	{Code: "bn", Name: "Bengali", NativeName: "বাংলা", SpeechLocale: "bn-IN"},
	{Code: "te", Name: "Telugu", NativeName: "తెలుగు", SpeechLocale: "te-IN"},
	{Code: "mr", Name: "Marathi", NativeName: "मराठी", SpeechLocale: "mr-IN"},
	{Code: "ta", Name: "Tamil", NativeName: "தமிழ்", SpeechLocale: "ta-IN"},
	{Code: "gu", Name: "Gujarati", NativeName: "ગુજરાતી", SpeechLocale: "gu-IN"},
	{Code: "kn", Name: "Kannada", NativeName: "ಕನ್ನಡ", SpeechLocale: "kn-IN"},
	{Code: "ml", Name: "Malayalam", NativeName: "മലയാളം", SpeechLocale: "ml-IN"},
	{Code: "pa", Name: "Punjabi", NativeName: "ਪੰਜਾਬੀ", SpeechLocale: "pa-IN"},
}

// Catalog guarda una tabla clave->texto por idioma. Es de solo lectura
// después de construirse.
type Catalog struct {
	tables   map[string]map[string]string
	fallback string
}

// NewCatalog carga las tablas embebidas en el binario.
func NewCatalog() (*Catalog, error) {
	return LoadCatalog(localeFS, "locales")
}

// LoadCatalog lee cada <idioma>.yaml dentro de dir.
func LoadCatalog(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	c := &Catalog{
		tables:   make(map[string]map[string]string, len(entries)),
		fallback: DefaultLanguage,
	}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		code := strings.TrimSuffix(e.Name(), ".yaml")
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", code, err)
		}
		table := make(map[string]string)
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", code, err)
		}
		c.tables[code] = table
	}
	if _, ok := c.tables[c.fallback]; !ok {
		return nil, fmt.Errorf("missing %s locale table", c.fallback)
	}
	return c, nil
}

// Translate resuelve key en lang, luego en el idioma por defecto y por
// último devuelve la propia clave.
func (c *Catalog) Translate(lang, key string) string {
	if v := c.tables[Normalize(lang)][key]; v != "" {
		return v
	}
	if v := c.tables[c.fallback][key]; v != "" {
		return v
	}
	return key
}

// For devuelve un Translator fijo a un idioma.
func (c *Catalog) For(lang string) Translator {
	lang = Normalize(lang)
	if !c.Supported(lang) {
		lang = c.fallback
	}
	return Translator{catalog: c, lang: lang}
}

// Keys lista todas las claves conocidas, ordenadas.
func (c *Catalog) Keys() []string {
	seen := make(map[string]struct{})
	for _, table := range c.tables {
		for k := range table {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Table devuelve la tabla efectiva de lang (idioma activo sobre el por defecto).
func (c *Catalog) Table(lang string) map[string]string {
	out := make(map[string]string)
	for _, k := range c.Keys() {
		out[k] = c.Translate(lang, k)
	}
	return out
}

// Languages devuelve los idiomas seleccionables en orden de presentación.
func (c *Catalog) Languages() []domain.Language {
	return append([]domain.Language(nil), languages...)
}

// Supported indica si code es un idioma seleccionable.
func (c *Catalog) Supported(code string) bool {
	_, ok := lookupLanguage(Normalize(code))
	return ok
}

// Language devuelve la metadata del idioma o la del idioma por defecto.
func (c *Catalog) Language(code string) domain.Language {
	if l, ok := lookupLanguage(Normalize(code)); ok {
		return l
	}
	l, _ := lookupLanguage(c.fallback)
	return l
}

// SpeechLocale traduce un código corto al locale de voz; desconocido -> en-US.
func SpeechLocale(code string) string {
	if l, ok := lookupLanguage(Normalize(code)); ok {
		return l.SpeechLocale
	}
	return "en-US"
}

// Normalize reduce "hi-IN" o " HI " a "hi".
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}

func lookupLanguage(code string) (domain.Language, bool) {
	for _, l := range languages {
		if l.Code == code {
			return l, true
		}
	}
	return domain.Language{}, false
}
