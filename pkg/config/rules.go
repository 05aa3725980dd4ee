package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mpapenbr/yutrace/pkg/model"
)

// LoadRules reads a yaml rules file. Keys missing in the file keep the
// default values. An empty path returns the defaults.
func LoadRules(path string) (*model.Rules, error) {
	rules := model.DefaultRules()
	if path == "" {
		return rules, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (*model.Rules, error) {
	rules := model.DefaultRules()
	var overlay model.Rules
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("%w: rules: %w", model.ErrInvalidArgument, err)
	}
	// yaml.v3 merges maps into existing ones, so maps are decoded separately
	// and replace the defaults as a whole.
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("%w: rules: %w", model.ErrInvalidArgument, err)
	}
	if overlay.DifficultyPoints != nil {
		rules.DifficultyPoints = overlay.DifficultyPoints
	}
	if overlay.ThrowWeights != nil {
		rules.ThrowWeights = overlay.ThrowWeights
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}
