package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"StressWatch/internal/domain/models"
)

// DefinitionSet holds the validated indicator and composite definitions the
// engine runs with. A definition that fails validation is dropped and
// reported in Rejected; the rest of the set still loads. The set is built
// once and never mutated afterwards.
type DefinitionSet struct {
	Indicators []models.IndicatorDefinition
	Composites []models.CompositeDefinition
	Rejected   []error
}

type indicatorsFile struct {
	Indicators []models.IndicatorDefinition `yaml:"indicators"`
}

type compositesFile struct {
	Composites []models.CompositeDefinition `yaml:"composites"`
}

// LoadDefinitions reads and validates both definition files. compositesPath
// may be empty. The returned error covers unreadable or unparsable files;
// per-definition failures land in Rejected instead.
func LoadDefinitions(indicatorsPath, compositesPath string) (*DefinitionSet, error) {
	v := validator.New()
	set := &DefinitionSet{}

	b, err := os.ReadFile(indicatorsPath)
	if err != nil {
		return nil, fmt.Errorf("read indicators: %w", err)
	}
	var inds indicatorsFile
	if err := yaml.Unmarshal(b, &inds); err != nil {
		return nil, fmt.Errorf("parse indicators: %w", err)
	}

	seen := make(map[string]bool)
	for i := range inds.Indicators {
		def := inds.Indicators[i]
		if err := def.Validate(v); err != nil {
			set.Rejected = append(set.Rejected, err)
			continue
		}
		if seen[def.Code] {
			set.Rejected = append(set.Rejected, &models.ConfigValidationError{Code: def.Code, Reason: "duplicate code"})
			continue
		}
		seen[def.Code] = true
		set.Indicators = append(set.Indicators, def)
	}

	if compositesPath == "" {
		return set, nil
	}
	b, err = os.ReadFile(compositesPath)
	if err != nil {
		return nil, fmt.Errorf("read composites: %w", err)
	}
	var comps compositesFile
	if err := yaml.Unmarshal(b, &comps); err != nil {
		return nil, fmt.Errorf("parse composites: %w", err)
	}

	for i := range comps.Composites {
		def := comps.Composites[i]
		if err := def.Validate(v); err != nil {
			set.Rejected = append(set.Rejected, err)
			continue
		}
		if seen[def.Code] {
			set.Rejected = append(set.Rejected, &models.ConfigValidationError{Code: def.Code, Reason: "duplicate code"})
			continue
		}
		seen[def.Code] = true
		set.Composites = append(set.Composites, def)
	}

	return set, nil
}
