package atlas

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// yamlNode is the YAML representation of a single map node file.
type yamlNode struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Density     int    `yaml:"density"`
	Description string `yaml:"description"`
	Safe        bool   `yaml:"safe"`
	Hidden      bool   `yaml:"hidden"`
	Nearby      []int  `yaml:"nearby"`
}

// LoadNodeFromBytes parses and validates a node from YAML bytes.
//
// Postcondition: Returns a validated Node or a non-nil error.
func LoadNodeFromBytes(data []byte) (*Node, error) {
	var yn yamlNode
	if err := yaml.Unmarshal(data, &yn); err != nil {
		return nil, fmt.Errorf("parsing node YAML: %w", err)
	}
	node := &Node{
		ID:          yn.ID,
		Name:        yn.Name,
		Density:     yn.Density,
		Description: strings.TrimSpace(yn.Description),
		Safe:        yn.Safe,
		Hidden:      yn.Hidden,
		Nearby:      yn.Nearby,
	}
	if err := validateNode(node); err != nil {
		return nil, err
	}
	return node, nil
}

func validateNode(n *Node) error {
	if n.ID < 0 {
		return fmt.Errorf("node %q: id must be >= 0, got %d", n.Name, n.ID)
	}
	if n.Name == "" {
		return fmt.Errorf("node %d: name must not be empty", n.ID)
	}
	if n.Density < 1 {
		return fmt.Errorf("node %q: density must be >= 1, got %d", n.Name, n.Density)
	}
	for _, nb := range n.Nearby {
		if nb == n.ID {
			return fmt.Errorf("node %q: lists itself as nearby", n.Name)
		}
	}
	return nil
}

// LoadNodesFromDir loads all YAML files in dir as map nodes. A malformed file
// is logged and skipped rather than failing the boot; a duplicate ID is
// logged and the later file is skipped.
//
// Precondition: dir must be a readable directory; logger must be non-nil.
// Postcondition: Returns the valid nodes sorted by ID, or an error if the
// directory is unreadable or yields no valid nodes at all.
func LoadNodesFromDir(dir string, logger *zap.Logger) ([]*Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading map directory %s: %w", dir, err)
	}

	seen := make(map[int]string)
	var nodes []*Node
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("unreadable map file, skipping",
				zap.String("file", name), zap.Error(err))
			continue
		}
		node, err := LoadNodeFromBytes(data)
		if err != nil {
			logger.Warn("malformed map file, skipping",
				zap.String("file", name), zap.Error(err))
			continue
		}
		if prev, dup := seen[node.ID]; dup {
			logger.Error("duplicate map id, skipping",
				zap.Int("id", node.ID),
				zap.String("file", name),
				zap.String("first_defined_in", prev))
			continue
		}
		seen[node.ID] = name
		nodes = append(nodes, node)
	}

	if len(nodes) == 0 {
		return nil, fmt.Errorf("no valid map files found in %s", dir)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes, nil
}
