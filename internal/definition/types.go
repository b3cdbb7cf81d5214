package definition

import (
	"maps"
	"slices"
)

// Definition is the whole composition request.
type Definition struct {
	Name string `json:"name,omitempty" jsonschema:"name used for output files; defaults to the definition file stem"`
	// BPM is the original tempo of the source clips.
	BPM float64 `json:"bpm" jsonschema:"original tempo of the clips in beats per minute"`
	// Bars is the default part length for parts that omit one.
	Bars    float64           `json:"bars,omitempty" jsonschema:"default part length in bars"`
	Tempo   *float64          `json:"tempo,omitempty" jsonschema:"global output tempo ratio"`
	Pitch   *float64          `json:"pitch,omitempty" jsonschema:"global output pitch ratio"`
	Clips   map[string]string `json:"clips,omitempty" jsonschema:"clip name to audio file"`
	Filters map[string]Filter `json:"filters,omitempty" jsonschema:"filter alias catalog"`
	Parts   map[string]Part   `json:"parts" jsonschema:"named parts"`
	Mixes   map[string]Mix    `json:"mixes" jsonschema:"named mixes"`

	// Dir is the directory relative clip paths were resolved against.
	Dir string `json:"-"`
}

// Part is a fixed-length arrangement of clips.
type Part struct {
	Bars  float64     `json:"bars,omitempty" jsonschema:"target length in bars"`
	Clips []ClipUsage `json:"clips,omitempty"`
}

// ClipUsage places one clip inside a part.
type ClipUsage struct {
	Name string `json:"name" jsonschema:"referenced clip name"`
	// Loop overrides the derived repetition count.
	Loop *int `json:"loop,omitempty" jsonschema:"explicit additional repetitions"`
	// Bars overrides the clip's measured bar length.
	Bars    *float64 `json:"bars,omitempty" jsonschema:"explicit original bar length of the clip"`
	Offset  int      `json:"offset,omitempty" jsonschema:"bars of leading silence"`
	Weight  *float64 `json:"weight,omitempty" jsonschema:"mix weight, default 1"`
	Filters []Filter `json:"filters,omitempty"`
}

// Filter is either an inline operation (Name set) or an alias reference
// (Alias set) into the definition's filter catalog. Time fields are in bars.
type Filter struct {
	Alias     string   `json:"filter,omitempty" jsonschema:"alias into the filter catalog"`
	Name      string   `json:"name,omitempty" jsonschema:"fixed operation: fade, lowpass, highpass, bandpass, volume, pitch"`
	Type      string   `json:"type,omitempty" jsonschema:"fade direction: in or out"`
	Curve     string   `json:"curve,omitempty" jsonschema:"fade curve"`
	StartTime *float64 `json:"start_time,omitempty" jsonschema:"fade start in bars"`
	Duration  *float64 `json:"duration,omitempty" jsonschema:"fade length in bars"`
	Frequency *float64 `json:"frequency,omitempty" jsonschema:"filter frequency in Hz"`
	Width     *float64 `json:"width,omitempty" jsonschema:"bandpass width in Hz"`
	Volume    *float64 `json:"volume,omitempty" jsonschema:"volume ratio"`
	Pitch     *float64 `json:"pitch,omitempty" jsonschema:"pitch ratio"`
	From      *float64 `json:"from,omitempty" jsonschema:"enable window start in bars"`
	To        *float64 `json:"to,omitempty" jsonschema:"enable window end in bars"`
}

// IsAlias reports whether f references the catalog.
func (f Filter) IsAlias() bool { return f.Alias != "" }

// HasWindow reports whether f sets its own enable window.
func (f Filter) HasWindow() bool { return f.From != nil || f.To != nil }

// Mix is a named output composed of ordered segments.
type Mix struct {
	Tempo    *float64  `json:"tempo,omitempty" jsonschema:"output tempo ratio, overrides the global ratio"`
	Pitch    *float64  `json:"pitch,omitempty" jsonschema:"output pitch ratio, overrides the global ratio"`
	Segments []Segment `json:"segments"`
}

// Segment is one track of a mix: a weighted mix of parts.
type Segment struct {
	Parts []PartRef `json:"parts"`
}

// PartRef references a part with a mix weight.
type PartRef struct {
	Name   string   `json:"name"`
	Weight *float64 `json:"weight,omitempty"`
}

// EffectiveWeight returns the usage weight, defaulting to 1.
func (u ClipUsage) EffectiveWeight() float64 {
	return weightOrDefault(u.Weight)
}

// EffectiveWeight returns the reference weight, defaulting to 1.
func (r PartRef) EffectiveWeight() float64 {
	return weightOrDefault(r.Weight)
}

func weightOrDefault(w *float64) float64 {
	if w == nil {
		return 1
	}
	return *w
}

// PartBars returns the target length of the named part, falling back to the
// definition default.
func (d *Definition) PartBars(name string) float64 {
	if part, ok := d.Parts[name]; ok && part.Bars > 0 {
		return part.Bars
	}
	return d.Bars
}

// Ratios returns the tempo and pitch ratios for the named mix. Ratios set on
// the mix win over the definition's global ratios.
func (d *Definition) Ratios(mix string) (tempo, pitch float64) {
	tempo, pitch = 1, 1
	if d.Tempo != nil {
		tempo = *d.Tempo
	}
	if d.Pitch != nil {
		pitch = *d.Pitch
	}
	if m, ok := d.Mixes[mix]; ok {
		if m.Tempo != nil {
			tempo = *m.Tempo
		}
		if m.Pitch != nil {
			pitch = *m.Pitch
		}
	}
	return tempo, pitch
}

// PartNames returns part names in sorted order.
func (d *Definition) PartNames() []string {
	return sortedKeys(d.Parts)
}

// MixNames returns mix names in sorted order.
func (d *Definition) MixNames() []string {
	return sortedKeys(d.Mixes)
}

// ReferencedParts returns the sorted set of parts used by any mix.
func (d *Definition) ReferencedParts() []string {
	seen := make(map[string]struct{})
	for _, mix := range d.Mixes {
		for _, seg := range mix.Segments {
			for _, ref := range seg.Parts {
				seen[ref.Name] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// AddClips merges clips into the definition. Entries in clips replace
// definition clips of the same name.
func (d *Definition) AddClips(clips map[string]string) {
	if len(clips) == 0 {
		return
	}
	if d.Clips == nil {
		d.Clips = make(map[string]string, len(clips))
	}
	for name, location := range clips {
		d.Clips[name] = location
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
