package config

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// PromptSet is one instructional prompt: the ordered system messages sent
// ahead of the user input.
type PromptSet struct {
	System []string `yaml:"system"`
}

// Prompts holds the fixed instructional prompts for the AI calls.
type Prompts struct {
	Summarize PromptSet `yaml:"summarize"`
	Compose   PromptSet `yaml:"compose"`
	Chat      PromptSet `yaml:"chat"`
}

// LoadPrompts parses the embedded prompt templates.
func LoadPrompts() (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(promptsYAML, &p); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	return &p, nil
}
