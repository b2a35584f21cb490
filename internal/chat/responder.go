// Package chat implementa el asistente de reglas: una lista ordenada de
// coincidencias por palabra clave sobre una base de conocimiento por idioma.
package chat

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Topic identifica una entrada de la base de conocimiento.
type Topic string

const (
	TopicCropDiseases Topic = "crop diseases"
	TopicPestControl  Topic = "pest control"
	TopicIrrigation   Topic = "irrigation methods"
	TopicFertilizer   Topic = "fertilizer use"
	TopicSoilHealth   Topic = "soil health"
	TopicCropRotation Topic = "crop rotation"
)

const defaultLanguage = "en"

//go:embed knowledge.yaml
var knowledgeYAML []byte

// Localizer resuelve textos de interfaz (bienvenida y respuesta por defecto).
type Localizer interface {
	Translate(lang, key string) string
}

type rule struct {
	topic Topic
	match func(q string) bool
}

func containsAll(words ...string) func(string) bool {
	return func(q string) bool {
		for _, w := range words {
			if !strings.Contains(q, w) {
				return false
			}
		}
		return true
	}
}

func containsAny(words ...string) func(string) bool {
	return func(q string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}
}

// rules se evalúa en orden; gana la primera coincidencia.
var rules = []rule{
	{topic: TopicCropDiseases, match: containsAll("tomato", "yellow")},
	{topic: TopicPestControl, match: containsAny("pest")},
	{topic: TopicIrrigation, match: containsAny("irrigation", "water")},
	{topic: TopicFertilizer, match: containsAny("fertilizer", "npk")},
	{topic: TopicSoilHealth, match: containsAny("soil", "ph")},
	{topic: TopicCropRotation, match: containsAny("rotation")},
}

// Responder genera respuestas deterministas para un texto y un idioma.
type Responder struct {
	knowledge map[Topic]map[string]string
	texts     Localizer
}

// NewResponder carga la base de conocimiento embebida.
func NewResponder(texts Localizer) (*Responder, error) {
	return NewResponderFromYAML(knowledgeYAML, texts)
}

// NewResponderFromYAML permite inyectar otra base de conocimiento.
func NewResponderFromYAML(raw []byte, texts Localizer) (*Responder, error) {
	kb := make(map[Topic]map[string]string)
	if err := yaml.Unmarshal(raw, &kb); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	for _, r := range rules {
		if kb[r.topic][defaultLanguage] == "" {
			return nil, fmt.Errorf("knowledge base missing %q answer for %q", defaultLanguage, r.topic)
		}
	}
	return &Responder{knowledge: kb, texts: texts}, nil
}

// Match devuelve el tema que corresponde al texto, si alguno.
func (r *Responder) Match(userText string) (Topic, bool) {
	q := strings.ToLower(userText)
	for _, rl := range rules {
		if rl.match(q) {
			return rl.topic, true
		}
	}
	return "", false
}

// Respond devuelve la respuesta en lang, con fallback al inglés; si ninguna
// regla aplica devuelve el texto de ayuda localizado.
func (r *Responder) Respond(userText, lang string) string {
	topic, ok := r.Match(userText)
	if !ok {
		return r.text(lang, "chatFallback")
	}
	answers := r.knowledge[topic]
	if a := answers[lang]; a != "" {
		return a
	}
	return answers[defaultLanguage]
}

// Welcome devuelve el saludo inicial localizado.
func (r *Responder) Welcome(lang string) string {
	return r.text(lang, "chatWelcome")
}

func (r *Responder) text(lang, key string) string {
	if r.texts == nil {
		return key
	}
	return r.texts.Translate(lang, key)
}
