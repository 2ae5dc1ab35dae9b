package config

import "sort"

// Presets are named parameter sets layered over DefaultParams.
var Presets = map[string]func(*Params){
	// Full-size run as used for the published results.
	"paper": func(p *Params) {
		p.N = 512
		p.NtMax = 100000
	},
	"quick": func(p *Params) {
		p.N = 64
		p.NtMax = 2000
	},
	// Small deterministic run on the portable LCG stream.
	"lcg-check": func(p *Params) {
		p.N = 8
		p.NtMax = 5
		p.Generator = "lcg"
		p.FullSim = true
	},
	"adaptive": func(p *Params) {
		p.N = 128
		p.NtMax = 20000
		p.AdaptiveTime = true
		p.DeltMax = 1e-9
	},
}

func GetPreset(name string) *Params {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	p := DefaultParams()
	apply(p)
	return p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
