package service

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"ecovision/internal/domain"
)

// ErrTreatmentNotFound indica una etiqueta que el clasificador no conoce.
var ErrTreatmentNotFound = errors.New("treatment not found")

const noRemedy = "No remedy available."

//go:embed treatments.yaml
var treatmentsYAML []byte

type treatmentFile struct {
	Labels []struct {
		Label      string                 `yaml:"label"`
		Solution   string                 `yaml:"solution"`
		Pesticides []domain.PesticideRate `yaml:"pesticides"`
	} `yaml:"labels"`
	DefaultPesticides []domain.PesticideRate `yaml:"default_pesticides"`
}

// TreatmentCatalog es la tabla estática etiqueta -> remedio y dosis de referencia.
type TreatmentCatalog struct {
	order    []string
	entries  map[string]domain.TreatmentInfo
	defaults []domain.PesticideRate
}

func NewTreatmentCatalog() (*TreatmentCatalog, error) {
	var file treatmentFile
	if err := yaml.Unmarshal(treatmentsYAML, &file); err != nil {
		return nil, fmt.Errorf("parse treatments: %w", err)
	}
	c := &TreatmentCatalog{
		entries:  make(map[string]domain.TreatmentInfo, len(file.Labels)),
		defaults: file.DefaultPesticides,
	}
	for _, l := range file.Labels {
		crop, condition := splitLabel(l.Label)
		solution := l.Solution
		if solution == "" {
			solution = noRemedy
		}
		pesticides := l.Pesticides
		if len(pesticides) == 0 {
			pesticides = c.defaults
		}
		c.order = append(c.order, l.Label)
		c.entries[l.Label] = domain.TreatmentInfo{
			Label:      l.Label,
			Crop:       crop,
			Condition:  condition,
			Solution:   solution,
			Pesticides: pesticides,
		}
	}
	return c, nil
}

// LoadSolutionsCSV reemplaza las soluciones con un CSV de columnas
// disease,solution. Etiquetas ausentes conservan el texto por defecto y
// filas con etiquetas desconocidas se ignoran.
func (c *TreatmentCatalog) LoadSolutionsCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read solutions header: %w", err)
	}
	diseaseCol, solutionCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "disease":
			diseaseCol = i
		case "solution":
			solutionCol = i
		}
	}
	if diseaseCol < 0 || solutionCol < 0 {
		return 0, errors.New("solutions csv needs disease and solution columns")
	}

	updated := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return updated, fmt.Errorf("read solutions row: %w", err)
		}
		if diseaseCol >= len(row) || solutionCol >= len(row) {
			continue
		}
		label := strings.TrimSpace(row[diseaseCol])
		entry, ok := c.entries[label]
		if !ok {
			continue
		}
		if s := strings.TrimSpace(row[solutionCol]); s != "" {
			entry.Solution = s
			c.entries[label] = entry
			updated++
		}
	}
	return updated, nil
}

// Lookup acepta la etiqueta exacta o sin distinguir mayúsculas.
func (c *TreatmentCatalog) Lookup(label string) (domain.TreatmentInfo, error) {
	if e, ok := c.entries[label]; ok {
		return e, nil
	}
	for _, l := range c.order {
		if strings.EqualFold(l, strings.TrimSpace(label)) {
			return c.entries[l], nil
		}
	}
	return domain.TreatmentInfo{}, ErrTreatmentNotFound
}

func (c *TreatmentCatalog) All() []domain.TreatmentInfo {
	out := make([]domain.TreatmentInfo, 0, len(c.order))
	for _, l := range c.order {
		out = append(out, c.entries[l])
	}
	return out
}

// splitLabel separa "Corn_(maize)___Common_rust_" en "Corn (maize)" y "Common rust".
func splitLabel(label string) (string, string) {
	crop, condition, _ := strings.Cut(label, "___")
	clean := func(s string) string {
		return strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
	}
	return clean(crop), clean(condition)
}
