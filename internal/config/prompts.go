package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Prompts holds the text templates handed to the curator. Empty fields
// mean the built-in templates are used.
type Prompts struct {
	Recommendations string
	Description     string
}

const (
	recommendationsPromptFile = "recommendations_prompt.md"
	descriptionPromptFile     = "description_prompt.md"
)

// LoadPrompts reads template overrides from dir. An empty dir or missing
// files are fine; any other read error is not.
func LoadPrompts(dir string) (Prompts, error) {
	var p Prompts
	if dir == "" {
		return p, nil
	}
	files := []struct {
		name string
		dst  *string
	}{
		{recommendationsPromptFile, &p.Recommendations},
		{descriptionPromptFile, &p.Description},
	}
	for _, f := range files {
		raw, err := os.ReadFile(filepath.Join(dir, f.name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Prompts{}, fmt.Errorf("config: read prompt %s: %w", f.name, err)
		}
		*f.dst = strings.TrimSpace(string(raw))
	}
	return p, nil
}
