package models

import (
	"fmt"
	"math"

	"reefview/internal/processing/dehaze"
	"reefview/internal/processing/filters"
)

// ParameterRange is the valid interval of a scalar correction.
type ParameterRange struct {
	Min     float64
	Max     float64
	Neutral float64
	Step    float64
}

func (r ParameterRange) clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Neutral
	}
	return math.Max(r.Min, math.Min(r.Max, v))
}

var Ranges = map[string]ParameterRange{
	"contrast":    {Min: -100, Max: 100, Neutral: 0, Step: 1},
	"brightness":  {Min: -100, Max: 100, Neutral: 0, Step: 1},
	"saturation":  {Min: -100, Max: 100, Neutral: 0, Step: 1},
	"hue":         {Min: -90, Max: 90, Neutral: 0, Step: 1},
	"temperature": {Min: -100, Max: 100, Neutral: 0, Step: 1},
	"sharpness":   {Min: 0, Max: 100, Neutral: 0, Step: 1},
	"gamma":       {Min: 0.01, Max: 5, Neutral: 1, Step: 0.01},
	"denoise":     {Min: 0, Max: 50, Neutral: 0, Step: 1},
}

// CorrectionState is the full parameter set the pipeline applies to a frame.
// The zero Enabled map means every effect uses its default (on, except
// dehaze). A zero Gamma means unset and is treated as the neutral 1;
// DefaultCorrectionState is the canonical neutral value.
type CorrectionState struct {
	Contrast    float64 `yaml:"contrast"`
	Brightness  float64 `yaml:"brightness"`
	Saturation  float64 `yaml:"saturation"`
	Hue         float64 `yaml:"hue"`
	Temperature float64 `yaml:"temperature"`
	Sharpness   float64 `yaml:"sharpness"`
	Gamma       float64 `yaml:"gamma"`
	Denoise     float64 `yaml:"denoise"`

	DenoiseMethod string         `yaml:"denoise_method"`
	Dehaze        dehaze.Options `yaml:"dehaze"`

	// ToneLUT is a 256-entry table applied last; nil disables it.
	ToneLUT []uint8         `yaml:"-"`
	Enabled map[Effect]bool `yaml:"-"`
}

func DefaultCorrectionState() CorrectionState {
	return CorrectionState{
		Gamma:         1,
		DenoiseMethod: filters.MethodNLMeans,
		Dehaze:        dehaze.DefaultOptions(),
	}
}

// IsEnabled reports whether e is switched on, falling back to the default.
func (s *CorrectionState) IsEnabled(e Effect) bool {
	if on, ok := s.Enabled[e]; ok {
		return on
	}
	return e != EffectDehaze
}

func (s *CorrectionState) SetEnabled(e Effect, on bool) {
	if s.Enabled == nil {
		s.Enabled = make(map[Effect]bool)
	}
	s.Enabled[e] = on
}

// Clamp returns a copy with every scalar forced into its range. NaN and an
// unset Gamma become the neutral value.
func (s CorrectionState) Clamp() CorrectionState {
	out := s.Clone()
	out.Contrast = Ranges["contrast"].clamp(s.Contrast)
	out.Brightness = Ranges["brightness"].clamp(s.Brightness)
	out.Saturation = Ranges["saturation"].clamp(s.Saturation)
	out.Hue = Ranges["hue"].clamp(s.Hue)
	out.Temperature = Ranges["temperature"].clamp(s.Temperature)
	out.Sharpness = Ranges["sharpness"].clamp(s.Sharpness)
	if s.Gamma == 0 {
		out.Gamma = Ranges["gamma"].Neutral
	} else {
		out.Gamma = Ranges["gamma"].clamp(s.Gamma)
	}
	out.Denoise = Ranges["denoise"].clamp(s.Denoise)
	if out.DenoiseMethod == "" {
		out.DenoiseMethod = filters.MethodNLMeans
	}
	return out
}

// Clone copies the state so that later edits of the map or LUT do not leak
// into a request already handed to a worker.
func (s CorrectionState) Clone() CorrectionState {
	out := s
	if s.ToneLUT != nil {
		out.ToneLUT = append([]uint8(nil), s.ToneLUT...)
	}
	if s.Enabled != nil {
		out.Enabled = make(map[Effect]bool, len(s.Enabled))
		for k, v := range s.Enabled {
			out.Enabled[k] = v
		}
	}
	return out
}

// Validate checks the fields Clamp cannot repair.
func (s *CorrectionState) Validate() error {
	if err := filters.ValidateDenoiseMethod(s.DenoiseMethod); err != nil {
		return WrapValidationError("denoise_method", s.DenoiseMethod, err)
	}
	if s.ToneLUT != nil && len(s.ToneLUT) != filters.LUTSize {
		return WrapValidationError("tone_lut", len(s.ToneLUT),
			fmt.Errorf("%w: got %d entries, want %d", filters.ErrInvalidLUT, len(s.ToneLUT), filters.LUTSize))
	}
	return nil
}
