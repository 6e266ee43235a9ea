// Package assetseed loads an initial asset registry from a static YAML
// file at startup, so a relayer can be bootstrapped non-interactively
// instead of requiring an add_asset admin call per token. Admin calls
// still take precedence for any mutation after startup.
package assetseed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is the on-disk representation of one seeded asset. Status is a
// free-form string here ("active", "deprecated", "disabled") so this
// package stays independent of the pipeline's AssetStatus enum; callers
// validate and convert it.
type Entry struct {
	TokenID    string `yaml:"token_id"`
	EVMAddress string `yaml:"evm_address"`
	Status     string `yaml:"status"`
	FeeBps     uint16 `yaml:"fee_bps"`
}

type file struct {
	Assets []Entry `yaml:"assets"`
}

// Load parses path as a YAML asset registry seed. A missing file is not
// an error — it simply yields no seeded assets — since ASSETS_FILE is
// optional configuration.
func Load(path string) ([]Entry, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("assetseed: reading %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("assetseed: parsing %s: %w", path, err)
	}
	for i, e := range f.Assets {
		if e.TokenID == "" {
			return nil, fmt.Errorf("assetseed: entry %d missing token_id", i)
		}
		if e.EVMAddress == "" {
			return nil, fmt.Errorf("assetseed: entry %d (%s) missing evm_address", i, e.TokenID)
		}
	}
	return f.Assets, nil
}
