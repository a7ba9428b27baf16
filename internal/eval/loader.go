package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// instructionsFile is the on-disk envelope around the instruction list.
type instructionsFile struct {
	Instructions []*Instruction `json:"instructions" yaml:"instructions"`
}

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// LoadInstructions reads an ordered instruction set from a JSON or YAML
// file, selected by extension. Instruction IDs must be unique.
func LoadInstructions(path string) ([]*Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read instructions file: %w", err)
	}

	var file instructionsFile
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse instructions YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse instructions JSON: %w", err)
		}
	}

	if len(file.Instructions) == 0 {
		return nil, fmt.Errorf("no instructions found in %s", path)
	}

	seen := make(map[string]bool, len(file.Instructions))
	for i, ins := range file.Instructions {
		if ins.ID == "" {
			return nil, fmt.Errorf("instruction %d has no id", i)
		}
		if seen[ins.ID] {
			return nil, fmt.Errorf("duplicate instruction id: %s", ins.ID)
		}
		seen[ins.ID] = true

		if ins.Prompt == "" {
			return nil, fmt.Errorf("instruction %s has no prompt", ins.ID)
		}
		if !validDifficulties[ins.Difficulty] {
			return nil, fmt.Errorf("instruction %s has invalid difficulty %q", ins.ID, ins.Difficulty)
		}
	}

	return file.Instructions, nil
}
