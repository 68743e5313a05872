package reconcile

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// FieldPrecedence defines the provider order consulted for fields matching a
// pattern. Patterns support a trailing * wildcard and filepath.Match syntax,
// e.g. "armament.*" or "systems.*".
type FieldPrecedence struct {
	Pattern string                `json:"pattern" yaml:"pattern"`
	Order   []vehicles.ProviderID `json:"order" yaml:"order"`
}

// PrecedenceConfig is the per-field provider precedence table. It is a
// configuration artifact, not a hardcoded constant, so precedence can be
// tuned per deployment without code changes.
type PrecedenceConfig struct {
	// Default is the provider order for fields with no matching rule.
	Default []vehicles.ProviderID `json:"default" yaml:"default"`

	// Fields are pattern-specific overrides, most specific pattern wins.
	Fields []FieldPrecedence `json:"fields" yaml:"fields"`
}

// DefaultPrecedence returns the standard precedence table: the game-data
// dump is authoritative for armament and system component trees, the
// storefront catalog for everything else.
func DefaultPrecedence() *PrecedenceConfig {
	return &PrecedenceConfig{
		Default: []vehicles.ProviderID{vehicles.ProviderShipyard, vehicles.ProviderGamedata},
		Fields: []FieldPrecedence{
			{Pattern: "armament*", Order: []vehicles.ProviderID{vehicles.ProviderGamedata, vehicles.ProviderShipyard}},
			{Pattern: "systems*", Order: []vehicles.ProviderID{vehicles.ProviderGamedata, vehicles.ProviderShipyard}},
		},
	}
}

// LoadPrecedence reads a precedence table from a YAML file.
func LoadPrecedence(path string) (*PrecedenceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapStore("read", path, err)
	}

	var cfg PrecedenceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	if len(cfg.Default) == 0 {
		cfg.Default = DefaultPrecedence().Default
	}
	return &cfg, nil
}

// Order returns the provider order for a field. The most specific matching
// pattern wins; fields with no matching rule use the default order.
func (c *PrecedenceConfig) Order(field string) []vehicles.ProviderID {
	var best *FieldPrecedence
	bestLen := -1

	for i := range c.Fields {
		rule := &c.Fields[i]
		if matchesPattern(field, rule.Pattern) && len(rule.Pattern) > bestLen {
			best = rule
			bestLen = len(rule.Pattern)
		}
	}

	if best != nil {
		return best.Order
	}
	return c.Default
}

// matchesPattern checks if a field name matches a pattern (supports a
// trailing * wildcard and filepath.Match syntax).
func matchesPattern(field, pattern string) bool {
	if field == pattern {
		return true
	}

	if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(field) >= len(prefix) && field[:len(prefix)] == prefix
	}

	matched, err := filepath.Match(pattern, field)
	if err != nil {
		return false
	}
	return matched
}
