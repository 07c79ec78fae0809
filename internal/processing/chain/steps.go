package chain

import (
	"context"

	"reefview/internal/frame"
	"reefview/internal/models"
	"reefview/internal/processing/dehaze"
	"reefview/internal/processing/filters"
)

// effectStep adapts a filter to Step. active reports whether the state asks
// for a non-neutral adjustment.
type effectStep struct {
	effect models.Effect
	active func(s *models.CorrectionState) bool
	apply  func(ctx context.Context, f *frame.Frame, s *models.CorrectionState) (*frame.Frame, error)
}

func (e effectStep) Name() string {
	return e.effect.String()
}

func (e effectStep) ShouldExecute(s *models.CorrectionState) bool {
	return s.IsEnabled(e.effect) && e.active(s)
}

func (e effectStep) Apply(ctx context.Context, f *frame.Frame, s *models.CorrectionState) (*frame.Frame, error) {
	return e.apply(ctx, f, s)
}

func always(*models.CorrectionState) bool { return true }

func defaultSteps(engine *dehaze.Engine) []Step {
	return []Step{
		effectStep{
			effect: models.EffectDehaze,
			active: always,
			apply: func(ctx context.Context, f *frame.Frame, s *models.CorrectionState) (*frame.Frame, error) {
				return engine.Dehaze(ctx, f, nil, s.Dehaze)
			},
		},
		effectStep{
			effect: models.EffectDenoise,
			active: func(s *models.CorrectionState) bool { return s.Denoise > 0 },
			apply: func(_ context.Context, f *frame.Frame, s *models.CorrectionState) (*frame.Frame, error) {
				return filters.Denoise(f, s.Denoise, filters.DenoiseOptions{Method: s.DenoiseMethod})
			},
		},
		effectStep{
			effect: models.EffectContrastBrightness,
			active: func(s *models.CorrectionState) bool { return s.Contrast != 0 || s.Brightness != 0 },
			apply: func(_ context.Context, f *frame.Frame, s *models.CorrectionState) (*frame.Frame, error) {
				return filters.ContrastBrightness(f, s.Contrast, s.Brightness)
			},
		},
		effectStep{
			effect: models.EffectSaturation,
			active: func(s *models.CorrectionState) bool { return s.Saturation != 0 },
			apply: func(_ context.Context, f *frame.Frame, s *models.CorrectionState) (*frame.Frame, error) {
				return filters.Saturation(f, s.Saturation)
			},
		},
		effectStep{
			effect: models.EffectHue,
			active: func(s *models.CorrectionState) bool { return s.Hue != 0 },
			apply: func(_ context.Context, f *frame.Frame, s *models.CorrectionState) (*frame.Frame, error) {
				return filters.Hue(f, s.Hue)
			},
		},
		effectStep{
			effect: models.EffectTemperature,
			active: func(s *models.CorrectionState) bool { return s.Temperature != 0 },
			apply: func(_ context.Context, f *frame.Frame, s *models.CorrectionState) (*frame.Frame, error) {
				return filters.Temperature(f, s.Temperature)
			},
		},
		effectStep{
			effect: models.EffectSharpen,
			active: func(s *models.CorrectionState) bool { return s.Sharpness > 0 },
			apply: func(_ context.Context, f *frame.Frame, s *models.CorrectionState) (*frame.Frame, error) {
				return filters.SharpenAmount(f, s.Sharpness)
			},
		},
		effectStep{
			effect: models.EffectGamma,
			active: func(s *models.CorrectionState) bool { return s.Gamma != 1 },
			apply: func(_ context.Context, f *frame.Frame, s *models.CorrectionState) (*frame.Frame, error) {
				return filters.Gamma(f, s.Gamma)
			},
		},
		effectStep{
			effect: models.EffectToneLUT,
			active: func(s *models.CorrectionState) bool { return s.ToneLUT != nil },
			apply: func(_ context.Context, f *frame.Frame, s *models.CorrectionState) (*frame.Frame, error) {
				return filters.ApplyLUT(f, s.ToneLUT)
			},
		},
	}
}
