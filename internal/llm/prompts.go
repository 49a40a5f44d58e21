package llm

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptTemplates holds the per-language instructions prepended to the
// shared review prompt. Keys are submission languages.
type PromptTemplates struct {
	System    string            `yaml:"system"`
	Languages map[string]string `yaml:"languages"`
}

// defaultTemplates are used when no prompts file is configured
var defaultTemplates = PromptTemplates{
	System: strings.TrimSpace(`
You are a strict senior code reviewer. Analyze the submitted code and respond
with ONLY a JSON object of the form:
{"score": <0-100>, "summary": "<one paragraph>", "issues": [{"severity": "info|warning|error", "category": "bug|style|security|performance", "line": <line number or null>, "message": "<finding>"}]}
Do not wrap the JSON in markdown fences.`),
	Languages: map[string]string{
		"python":     "Pay attention to exception handling, mutable default arguments, and PEP 8 style.",
		"javascript": "Pay attention to async error handling, equality pitfalls, and prototype misuse.",
		"cpp":        "Pay attention to memory safety, ownership, and undefined behavior.",
		"java":       "Pay attention to null handling, resource closing, and concurrency misuse.",
		"sql":        "Pay attention to injection risk, missing indexes, and implicit conversions.",
	},
}

// LoadPromptTemplates reads prompt templates from a YAML file, falling back
// to the built-in defaults for any omitted field
func LoadPromptTemplates(path string) (*PromptTemplates, error) {
	// Copy the defaults including the language map; overrides must not
	// write into the package-level map
	templates := PromptTemplates{
		System:    defaultTemplates.System,
		Languages: make(map[string]string, len(defaultTemplates.Languages)),
	}
	for language, hint := range defaultTemplates.Languages {
		templates.Languages[language] = hint
	}
	if path == "" {
		return &templates, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	var loaded PromptTemplates
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse prompts file: %w", err)
	}

	if loaded.System != "" {
		templates.System = loaded.System
	}
	for language, hint := range loaded.Languages {
		templates.Languages[language] = hint
	}
	return &templates, nil
}

// BuildUserPrompt renders the review request for a submission
func (t *PromptTemplates) BuildUserPrompt(language, code string) string {
	var b strings.Builder
	if hint, ok := t.Languages[language]; ok {
		b.WriteString(hint)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Review the following %s code:\n\n%s", language, code)
	return b.String()
}
