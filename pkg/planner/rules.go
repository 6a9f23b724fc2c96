// Package planner decomposes task descriptions into capability-tagged plans.
package planner

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TypeRule classifies a task by keyword. Rules are evaluated in order;
// the first match wins.
type TypeRule struct {
	Keyword  string `yaml:"keyword"`
	TaskType string `yaml:"task_type"`
}

// CapabilityRule detects one required capability by keyword. Rules are
// evaluated in order; a capability already detected by an earlier rule
// keeps its earlier position.
type CapabilityRule struct {
	Keyword    string `yaml:"keyword"`
	Capability string `yaml:"capability"`

	// RequiresApproval is set for capabilities performing an
	// irreversible, human-facing external effect. Read-only and
	// compute-only capabilities never require approval.
	RequiresApproval bool `yaml:"requires_approval"`
}

// Rules is the full ordered rule set the generator evaluates.
type Rules struct {
	Types        []TypeRule       `yaml:"types"`
	Capabilities []CapabilityRule `yaml:"capabilities"`
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		Types: []TypeRule{
			{Keyword: "invoice", TaskType: "email:invoice"},
			{Keyword: "email", TaskType: "email"},
			{Keyword: "send", TaskType: "email"},
			{Keyword: "post", TaskType: "social_post"},
			{Keyword: "publish", TaskType: "social_post"},
			{Keyword: "note", TaskType: "note"},
			{Keyword: "summarize", TaskType: "note"},
			{Keyword: "remind", TaskType: "schedule"},
		},
		Capabilities: []CapabilityRule{
			{Keyword: "invoice", Capability: "email", RequiresApproval: true},
			{Keyword: "email", Capability: "email", RequiresApproval: true},
			{Keyword: "send", Capability: "email", RequiresApproval: true},
			{Keyword: "post", Capability: "social_post", RequiresApproval: true},
			{Keyword: "publish", Capability: "social_post", RequiresApproval: true},
			{Keyword: "announce", Capability: "social_post", RequiresApproval: true},
			{Keyword: "note", Capability: "note", RequiresApproval: false},
			{Keyword: "summarize", Capability: "note", RequiresApproval: false},
			{Keyword: "draft", Capability: "note", RequiresApproval: false},
		},
	}
}

// LoadRules reads a rule set from a YAML file.
func LoadRules(path string) (Rules, error) {
	body, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	var rules Rules

	err = yaml.Unmarshal(body, &rules)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	if len(rules.Types) == 0 || len(rules.Capabilities) == 0 {
		return Rules{}, fmt.Errorf("rules file %s must define types and capabilities", path)
	}

	return rules, nil
}
