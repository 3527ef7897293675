package realm

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"
)

// Config holds the realm's tunable limits (§9 "Engine/runtime limits
// are configuration, not spec behavior"). The jsonschema struct tags
// carry the descriptions that DescribeConfigSchema emits.
type Config struct {
	// MaxCallStackDepth bounds the evaluator's CallStack before a
	// RangeError is thrown for "Maximum call stack size exceeded".
	MaxCallStackDepth int `yaml:"maxCallStackDepth" jsonschema:"minimum=1,description=maximum evaluator call depth before a RangeError is thrown"`

	// StrictRegexFallback is loaded from YAML and listed in the schema,
	// but no code reads it: regex.Compile always falls back to the RE2
	// engine when regexp2 rejects a pattern.
	StrictRegexFallback bool `yaml:"strictRegexFallback" jsonschema:"description=not read by the engine: the RE2 fallback for regular expressions stays enabled"`
}

// DefaultConfig returns the realm defaults used when no configuration
// file is supplied.
func DefaultConfig() Config {
	return Config{
		MaxCallStackDepth: 2048,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxCallStackDepth <= 0 {
		c.MaxCallStackDepth = DefaultConfig().MaxCallStackDepth
	}
	return c
}

// LoadConfigYAML parses a YAML-encoded Config, applying defaults for
// zero-valued fields (§6 "a Config the host may load from YAML").
func LoadConfigYAML(data []byte) (Config, error) {
	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("realm: parse config: %w", err)
	}
	return cfg.withDefaults(), nil
}

// DescribeConfigSchema generates the JSON Schema for Config, so a host
// embedding this realm can validate a configuration file before
// loading it.
func DescribeConfigSchema() (string, error) {
	r := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	schema := r.Reflect(&Config{})
	raw, err := schema.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("realm: marshal config schema: %w", err)
	}
	return string(raw), nil
}
