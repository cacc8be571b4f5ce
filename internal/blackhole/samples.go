package blackhole

// Sample is a reference hole used by demos and presets.
type Sample struct {
	Class string  `json:"class" yaml:"class"`
	Mass  float64 `json:"mass" yaml:"mass"`
}

// Samples spans primordial to supermassive holes.
func (b Calc) Samples() []Sample {
	ms := b.K.SolarMass
	return []Sample{
		{"PBH", 1e12},
		{"PBH", 1e15},
		{"PBH", 1e18},
		{"stellar", 5 * ms},
		{"stellar", 10 * ms},
		{"stellar", 30 * ms},
		{"intermediate", 1e3 * ms},
		{"intermediate", 1e4 * ms},
		{"supermassive", 1e6 * ms},
		{"supermassive", 1e9 * ms},
	}
}

// Representatives picks one light, one stellar and one supermassive sample.
func (b Calc) Representatives() []Sample {
	all := b.Samples()
	return []Sample{all[0], all[4], all[9]}
}
