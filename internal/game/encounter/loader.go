package encounter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlBestiary is the YAML representation of an enemy content file.
type yamlBestiary struct {
	Enemies []yamlEnemy `yaml:"enemies"`
}

type yamlEnemy struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
	Maps []int  `yaml:"maps"`
	Tier int    `yaml:"tier"`
}

// LoadEnemiesFromBytes parses and validates a bestiary from YAML bytes.
//
// Postcondition: Returns the validated enemies or a non-nil error naming
// the first invalid entry.
func LoadEnemiesFromBytes(data []byte) ([]*Enemy, error) {
	var yb yamlBestiary
	if err := yaml.Unmarshal(data, &yb); err != nil {
		return nil, fmt.Errorf("parsing bestiary YAML: %w", err)
	}
	seen := make(map[int]string, len(yb.Enemies))
	enemies := make([]*Enemy, 0, len(yb.Enemies))
	for _, ye := range yb.Enemies {
		e := &Enemy{ID: ye.ID, Name: ye.Name, MapIDs: ye.Maps, Tier: ye.Tier}
		if err := validateEnemy(e); err != nil {
			return nil, err
		}
		if prev, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("enemy %q: id %d already used by %q", e.Name, e.ID, prev)
		}
		seen[e.ID] = e.Name
		enemies = append(enemies, e)
	}
	return enemies, nil
}

func validateEnemy(e *Enemy) error {
	if e.ID < 0 {
		return fmt.Errorf("enemy %q: id must be >= 0, got %d", e.Name, e.ID)
	}
	if e.Name == "" {
		return fmt.Errorf("enemy %d: name must not be empty", e.ID)
	}
	if e.Tier < 1 {
		return fmt.Errorf("enemy %q: tier must be >= 1, got %d", e.Name, e.Tier)
	}
	if len(e.MapIDs) == 0 {
		return fmt.Errorf("enemy %q: must appear on at least one map", e.Name)
	}
	return nil
}

// LoadEnemiesFromFile loads and validates a bestiary file.
func LoadEnemiesFromFile(path string) ([]*Enemy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bestiary %s: %w", path, err)
	}
	return LoadEnemiesFromBytes(data)
}
