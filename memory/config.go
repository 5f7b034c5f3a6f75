package memory

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zerorone/xtool-memory/model"
)

// Config carries the tunable knobs: scoring constants and per-layer
// retention policies. The decay constants are empirical, not derived, so
// hosts may override them; zero values fall back to the defaults.
type Config struct {
	Score    model.ScoreParams               `yaml:"score"`
	Policies map[model.Layer]RetentionPolicy `yaml:"policies"`
	Logger   *slog.Logger                    `yaml:"-"`
}

// DefaultConfig returns the stock scoring constants and retention table.
func DefaultConfig() Config {
	return Config{
		Score:    model.DefaultScoreParams(),
		Policies: DefaultPolicies(),
	}
}

// LoadConfig reads a YAML config file over the defaults. Score knobs
// override individually; a policy entry replaces that layer's whole policy,
// and layers absent from the file keep the stock one.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("memory: read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("memory: parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults backfills any zero-valued knobs so a sparse config (or the
// zero Config) still behaves.
func (c *Config) applyDefaults() {
	def := model.DefaultScoreParams()
	if c.Score.DecayWindowDays <= 0 {
		c.Score.DecayWindowDays = def.DecayWindowDays
	}
	if c.Score.TimeDecayFloor <= 0 {
		c.Score.TimeDecayFloor = def.TimeDecayFloor
	}
	if c.Score.AccessDivisor <= 0 {
		c.Score.AccessDivisor = def.AccessDivisor
	}
	if c.Score.AccessBoostCap <= 0 {
		c.Score.AccessBoostCap = def.AccessBoostCap
	}
	if c.Score.RecencyWindowDays <= 0 {
		c.Score.RecencyWindowDays = def.RecencyWindowDays
	}
	if c.Score.RecencyFloor <= 0 {
		c.Score.RecencyFloor = def.RecencyFloor
	}
	if c.Score.ScoreCap <= 0 {
		c.Score.ScoreCap = def.ScoreCap
	}
	if c.Score.DefaultDecayFactor <= 0 {
		c.Score.DefaultDecayFactor = def.DefaultDecayFactor
	}
	if c.Score.ImportanceWeights == nil {
		c.Score.ImportanceWeights = def.ImportanceWeights
	}
	if c.Policies == nil {
		c.Policies = DefaultPolicies()
	} else {
		stock := DefaultPolicies()
		for _, name := range model.Layers {
			if _, ok := c.Policies[name]; !ok {
				c.Policies[name] = stock[name]
			}
		}
	}
}
