package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// MergeFile overlays the keys present in a YAML settings file onto c.
// Durations are written the Go way, e.g. "PAGE_CACHE_TTL: 20s".
func (c *Config) MergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read settings file %s", path)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return errors.Wrapf(err, "parse settings file %s", path)
	}
	return nil
}
