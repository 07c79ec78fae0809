package models

import "strings"

// Effect names one adjustment of the correction pipeline.
type Effect int

// Effects are declared in pipeline order.
const (
	EffectDehaze Effect = iota
	EffectDenoise
	EffectContrastBrightness
	EffectSaturation
	EffectHue
	EffectTemperature
	EffectSharpen
	EffectGamma
	EffectToneLUT
)

var effectNames = [...]string{
	EffectDehaze:             "dehaze",
	EffectDenoise:            "denoise",
	EffectContrastBrightness: "contrast_brightness",
	EffectSaturation:         "saturation",
	EffectHue:                "hue",
	EffectTemperature:        "temperature",
	EffectSharpen:            "sharpen",
	EffectGamma:              "gamma",
	EffectToneLUT:            "tone_lut",
}

// Effects returns every effect in pipeline order.
func Effects() []Effect {
	out := make([]Effect, len(effectNames))
	for i := range effectNames {
		out[i] = Effect(i)
	}
	return out
}

func (e Effect) String() string {
	if e < 0 || int(e) >= len(effectNames) {
		return "unknown"
	}
	return effectNames[e]
}

// ParseEffect accepts the names returned by String, case-insensitively.
func ParseEffect(s string) (Effect, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range effectNames {
		if n == name {
			return Effect(i), nil
		}
	}
	return 0, NewValidationError("effect", s, "unknown effect")
}
