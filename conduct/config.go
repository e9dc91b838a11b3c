// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conduct

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"code.hybscloud.com/compose/lower"
)

// Config is the conductor's process-facing configuration, loadable from
// YAML the way itsneelabh-gomind and yungbote-neurobridge-backend load
// their service configs with gopkg.in/yaml.v3.
type Config struct {
	// Lower selects the lowering target (§4.2) applied before
	// compilation: true/"" -> All, false -> None, a version string ->
	// Version(v), a list of type names -> List(...).
	Lower any `yaml:"lower"`
	// MaxSteps bounds the conductor's per-invocation trampoline before
	// it rejects a composition as runaway (ErrRunawayComposition). Zero
	// means unbounded.
	MaxSteps int `yaml:"max_steps"`
	// LogMode selects NewLogger's zap config ("prod"/"production" or
	// development).
	LogMode string `yaml:"log_mode"`
}

// DefaultConfig returns a Config with maximal lowering, no step bound,
// and development logging.
func DefaultConfig() *Config {
	return &Config{Lower: true, LogMode: "development"}
}

// LoadConfig parses data as YAML into a Config.
func LoadConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("conduct: load config: %w", err)
	}
	return cfg, nil
}

// LowerTarget translates Lower's dynamic JSON/YAML-decoded shape into a
// lower.Target, mirroring §4.2's "selecting the target set from a list
// / true/""/false / a version string".
func (c *Config) LowerTarget() lower.Target {
	switch v := c.Lower.(type) {
	case nil:
		return lower.All()
	case bool:
		if v {
			return lower.All()
		}
		return lower.None()
	case string:
		if v == "" {
			return lower.All()
		}
		return lower.Version(v)
	case []string:
		return lower.List(v...)
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
		return lower.List(names...)
	default:
		return lower.All()
	}
}
