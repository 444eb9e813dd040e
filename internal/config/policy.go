package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadPolicy reads a standalone cascade policy file. The YAML has a
// top-level "cascade" key so policy files can live next to unrelated
// tooling config.
func LoadPolicy(path string) (CascadeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CascadeConfig{}, eris.Wrapf(err, "config: read policy %s", path)
	}

	var wrapper struct {
		Cascade CascadeConfig `yaml:"cascade"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return CascadeConfig{}, eris.Wrap(err, "config: parse policy")
	}

	cfg := wrapper.Cascade
	def := DefaultCascade()
	if cfg.OCRTriggerThreshold == 0 {
		cfg.OCRTriggerThreshold = def.OCRTriggerThreshold
	}
	if cfg.MaxFlyerImages == 0 {
		cfg.MaxFlyerImages = def.MaxFlyerImages
	}
	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	if cfg.LayerTimeoutMs == 0 {
		cfg.LayerTimeoutMs = def.LayerTimeoutMs
	}
	if cfg.OCRTimeoutMs == 0 {
		cfg.OCRTimeoutMs = def.OCRTimeoutMs
	}
	if cfg.OCRLayerTimeoutMs == 0 {
		cfg.OCRLayerTimeoutMs = def.OCRLayerTimeoutMs
	}
	if cfg.FallbackCategory == "" {
		cfg.FallbackCategory = def.FallbackCategory
	}

	return cfg, nil
}

// WritePolicy writes a cascade policy file with the given settings.
func WritePolicy(path string, cfg CascadeConfig) error {
	wrapper := struct {
		Cascade CascadeConfig `yaml:"cascade"`
	}{Cascade: cfg}

	data, err := yaml.Marshal(wrapper)
	if err != nil {
		return eris.Wrap(err, "config: marshal policy")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "config: write policy %s", path)
	}
	return nil
}
