/* catalog.go
 * Contains the loading and validation of exercise catalog seed files. The catalog is fixed reference data:
 * it is seeded from a YAML file once and never mutated by end users
 */

package catalog

import (
	"fmt"
	"os"

	"hyrox-tracker/engine/shared"
	"hyrox-tracker/engine/store"

	"gopkg.in/yaml.v3"
)

// File is the top level shape of a catalog seed file.
type File struct {
	Exercises []Entry `yaml:"exercises"`
}

// Entry is one exercise definition in a seed file.
type Entry struct {
	Name   string  `yaml:"name"`
	Target float64 `yaml:"target"`
	Unit   string  `yaml:"unit"`
}

// Load reads and validates a catalog seed file
// Preconditions: Receives the path to a YAML seed file
// Postconditions: Returns slice of Exercise ready for seeding, or an error if the file cannot be read,
// parsed, or contains an entry with an empty name or non-positive target
func Load(path string) ([]store.Exercise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	if len(file.Exercises) == 0 {
		return nil, fmt.Errorf("%w: catalog file %s contains no exercises", shared.ErrInvalidInput, path)
	}

	exercises := make([]store.Exercise, 0, len(file.Exercises))
	for i, entry := range file.Exercises {
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: catalog entry %d has no name", shared.ErrInvalidInput, i)
		}
		if entry.Target <= 0 {
			return nil, fmt.Errorf("%w: catalog entry %q has non-positive target %v", shared.ErrInvalidInput, entry.Name, entry.Target)
		}
		exercises = append(exercises, store.Exercise{
			Name:         entry.Name,
			TargetAmount: entry.Target,
			Unit:         entry.Unit,
		})
	}
	return exercises, nil
}
