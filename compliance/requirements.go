// compliance/requirements.go
package compliance

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RequiredDocument is one entry in a role's onboarding checklist.
type RequiredDocument struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Category    string `yaml:"category" json:"category"` // LICENSE, HEALTH, SECURITY, LEGAL, INSURANCE, TRAINING
	Required    bool   `yaml:"required" json:"required"`
}

// defaultRequirements mirrors the checklist the onboarding team maintains.
var defaultRequirements = map[string][]RequiredDocument{
	"DRIVER": {
		{ID: "drivers_license", Title: "Driver's License", Description: "Valid driver's license", Category: "LICENSE", Required: true},
		{ID: "medical_certificate", Title: "Medical Certificate", Description: "Medical fitness certificate", Category: "HEALTH", Required: true},
		{ID: "background_check", Title: "Background Check", Description: "Criminal background check", Category: "SECURITY", Required: true},
		{ID: "employment_contract", Title: "Employment Contract", Description: "Signed employment agreement", Category: "LEGAL", Required: true},
		{ID: "insurance_document", Title: "Insurance Document", Description: "Vehicle insurance documentation", Category: "INSURANCE", Required: true},
		{ID: "training_certificate", Title: "Training Certificate", Description: "Safety training completion certificate", Category: "TRAINING", Required: false},
	},
	"INSPECTOR": {
		{ID: "inspection_license", Title: "Inspection License", Description: "Valid inspection license", Category: "LICENSE", Required: true},
		{ID: "medical_certificate", Title: "Medical Certificate", Description: "Medical fitness certificate", Category: "HEALTH", Required: true},
		{ID: "background_check", Title: "Background Check", Description: "Criminal background check", Category: "SECURITY", Required: true},
		{ID: "employment_contract", Title: "Employment Contract", Description: "Signed employment agreement", Category: "LEGAL", Required: true},
	},
	"ADMIN": {
		{ID: "employment_contract", Title: "Employment Contract", Description: "Signed employment agreement", Category: "LEGAL", Required: true},
		{ID: "background_check", Title: "Background Check", Description: "Criminal background check", Category: "SECURITY", Required: true},
	},
}

// Rules resolves which documents a role must provide.
type Rules struct {
	byRole map[string][]RequiredDocument
}

// DefaultRules returns the built-in checklist.
func DefaultRules() *Rules {
	return &Rules{byRole: defaultRequirements}
}

// LoadRules reads a role→documents table from a YAML file, falling back to
// the defaults for roles the file does not mention.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compliance rules: %w", err)
	}

	var fromFile map[string][]RequiredDocument
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("parse compliance rules: %w", err)
	}

	merged := make(map[string][]RequiredDocument, len(defaultRequirements))
	for role, docs := range defaultRequirements {
		merged[role] = docs
	}
	for role, docs := range fromFile {
		merged[strings.ToUpper(role)] = docs
	}
	return &Rules{byRole: merged}, nil
}

// RequiredForRole returns the checklist for a role, empty for unknown roles.
func (r *Rules) RequiredForRole(role string) []RequiredDocument {
	docs := r.byRole[strings.ToUpper(role)]
	out := make([]RequiredDocument, len(docs))
	copy(out, docs)
	return out
}
