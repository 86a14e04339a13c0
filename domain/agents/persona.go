package agents

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed personas.yaml
var personaYAML []byte

// Persona is an agent's name and system prompt.
type Persona struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Instructions string `yaml:"instructions"`
}

type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// LoadPersonas parses the embedded persona file keyed by agent name.
func LoadPersonas() (map[string]Persona, error) {
	return parsePersonas(personaYAML)
}

func parsePersonas(data []byte) (map[string]Persona, error) {
	var f personaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing personas: %w", err)
	}

	out := make(map[string]Persona, len(f.Personas))
	for _, p := range f.Personas {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("persona without a name")
		}
		if strings.TrimSpace(p.Instructions) == "" {
			return nil, fmt.Errorf("persona %s has no instructions", p.Name)
		}
		if _, dup := out[p.Name]; dup {
			return nil, fmt.Errorf("duplicate persona %s", p.Name)
		}
		out[p.Name] = p
	}
	return out, nil
}
