// Package config loads YAML presets: a correction state plus the options of
// the components the CLI runs.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"reefview/internal/export"
	"reefview/internal/models"
	"reefview/internal/preview"
	"reefview/internal/processing/chain"
	"reefview/internal/processing/motion"
	"reefview/internal/processing/tonecurve"
)

type Preset struct {
	Name       string                 `yaml:"name"`
	LogLevel   string                 `yaml:"log_level"`
	Correction models.CorrectionState `yaml:"correction"`
	// Enabled switches effects on or off by name, e.g. "dehaze: true".
	Enabled map[string]bool `yaml:"enabled"`
	// ToneCurve, when present, becomes the state's tone LUT.
	ToneCurve *tonecurve.Curve  `yaml:"tone_curve"`
	Auto      chain.AutoOptions `yaml:"auto"`
	Preview   preview.Options   `yaml:"preview"`
	Export    export.Options    `yaml:"export"`
	Motion    motion.Options    `yaml:"motion"`
}

func Default() Preset {
	return Preset{
		Name:       "default",
		LogLevel:   "info",
		Correction: models.DefaultCorrectionState(),
		Auto:       chain.DefaultAutoOptions(),
		Preview:    preview.Options{MaxWidth: 960},
		Motion:     motion.DefaultOptions(),
	}
}

// Parse decodes data over Default. Unknown keys are rejected.
func Parse(data []byte) (Preset, error) {
	p := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Preset{}, fmt.Errorf("failed to parse preset: %w", err)
	}
	if _, err := p.State(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

func Load(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("failed to read preset: %w", err)
	}
	return Parse(data)
}

// State resolves the preset into a clamped, validated CorrectionState.
func (p Preset) State() (models.CorrectionState, error) {
	s := p.Correction.Clone()
	for name, on := range p.Enabled {
		e, err := models.ParseEffect(name)
		if err != nil {
			return models.CorrectionState{}, err
		}
		s.SetEnabled(e, on)
	}
	if p.ToneCurve != nil {
		s.ToneLUT = p.ToneCurve.Normalize().LUT()
	}

	s = s.Clamp()
	if err := s.Validate(); err != nil {
		return models.CorrectionState{}, err
	}
	return s, nil
}

// Save writes p as YAML.
func Save(path string, p Preset) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preset: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
