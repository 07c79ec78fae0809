package dehaze

// Options tunes the dark-channel-prior dehaze.
type Options struct {
	// Window is the dark channel patch size; even values round up.
	Window int `yaml:"window"`
	// Omega controls how much haze is removed, in (0,1].
	Omega float64 `yaml:"omega"`
	// GuidedRadius is the guided filter box radius.
	GuidedRadius int     `yaml:"guided_radius"`
	GuidedEps    float64 `yaml:"guided_eps"`
	// Tx floors the transmission during recovery.
	Tx float64 `yaml:"tx"`
	// Water restricts the dark channel to green and blue, since red is
	// absorbed first underwater.
	Water bool `yaml:"water"`
	// ReuseAtmosphere keeps the first estimated atmospheric light for later
	// frames of the session until Engine.Reset.
	ReuseAtmosphere bool `yaml:"reuse_atmosphere"`
}

func DefaultOptions() Options {
	return Options{
		Window:       15,
		Omega:        0.6,
		GuidedRadius: 60,
		GuidedEps:    1e-4,
		Tx:           0.1,
	}
}

// WithDefaults fills zero fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Window <= 0 {
		o.Window = d.Window
	}
	if o.Omega <= 0 {
		o.Omega = d.Omega
	}
	if o.GuidedRadius <= 0 {
		o.GuidedRadius = d.GuidedRadius
	}
	if o.GuidedEps <= 0 {
		o.GuidedEps = d.GuidedEps
	}
	if o.Tx <= 0 {
		o.Tx = d.Tx
	}
	return o
}
