package prompts

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into the binary at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// PromptProvider is implemented by PromptManager and by test fakes.
type PromptProvider interface {
	BuildPrompt(mode, variant string, data interface{}) (string, error)
	GetTemplates() map[string]map[string]*template.Template
}

type PromptManager struct {
	templates map[string]map[string]*template.Template // mode -> variant -> parsed template
}

// loaded prompt template file
type promptFile struct {
	BasePrompt string            `yaml:"base_prompt"`
	Variants   map[string]string `yaml:"variants"`
}

// creates a new prompt manager and loads templates
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		templates: make(map[string]map[string]*template.Template),
	}

	if err := pm.loadTemplates(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	return pm, nil
}

// BuildPrompt renders the template for the given mode and variant.
func (pm *PromptManager) BuildPrompt(mode, variant string, data interface{}) (string, error) {
	modeTemplates, exists := pm.templates[mode]
	if !exists {
		return "", fmt.Errorf("template not found for mode: %s", mode)
	}

	tmpl, exists := modeTemplates[variant]
	if !exists {
		return "", fmt.Errorf("variant '%s' not found for mode '%s'", variant, mode)
	}

	var builder strings.Builder
	if err := tmpl.Execute(&builder, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s/%s: %w", mode, variant, err)
	}

	return builder.String(), nil
}

func (pm *PromptManager) GetTemplates() map[string]map[string]*template.Template {
	return pm.templates
}

// loadTemplates loads all YAML prompt files from the embedded filesystem.
// The file name (without extension) becomes the mode.
func (pm *PromptManager) loadTemplates() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var file promptFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		mode := strings.TrimSuffix(entry.Name(), ".yaml")
		pm.templates[mode] = make(map[string]*template.Template)

		for variant, variantPrompt := range file.Variants {
			full := variantPrompt
			if file.BasePrompt != "" {
				full = file.BasePrompt + "\n\n" + variantPrompt
			}

			tmpl, err := template.New(mode + "/" + variant).Parse(full)
			if err != nil {
				return fmt.Errorf("failed to compile template %s/%s: %w", mode, variant, err)
			}
			pm.templates[mode][variant] = tmpl
		}
	}

	return nil
}
