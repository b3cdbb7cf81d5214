package definition

import (
	"errors"
	"fmt"
	"strings"

	"automix/internal/services"
)

// Validate performs semantic checks the schema cannot express.
func (d *Definition) Validate() error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if d.BPM <= 0 {
		add("bpm must be positive, got %v", d.BPM)
	}
	if d.Bars < 0 {
		add("bars must not be negative, got %v", d.Bars)
	}
	checkRatio := func(label string, value *float64) {
		if value != nil && *value <= 0 {
			add("%s must be positive, got %v", label, *value)
		}
	}
	checkRatio("tempo", d.Tempo)
	checkRatio("pitch", d.Pitch)

	for name, location := range d.Clips {
		if strings.TrimSpace(location) == "" {
			add("clip %q has no path", name)
		}
	}
	for alias, filter := range d.Filters {
		if err := validateFilter(filter); err != nil {
			add("filter %q: %v", alias, err)
		}
	}

	for _, name := range d.PartNames() {
		part := d.Parts[name]
		if part.Bars < 0 || d.PartBars(name) <= 0 {
			add("part %q needs a positive bar length", name)
		}
		for i, usage := range part.Clips {
			where := fmt.Sprintf("part %q clip %d (%s)", name, i, usage.Name)
			if strings.TrimSpace(usage.Name) == "" {
				add("part %q clip %d has no name", name, i)
			}
			if usage.Loop != nil && *usage.Loop < 0 {
				add("%s: loop must not be negative", where)
			}
			if usage.Bars != nil && *usage.Bars <= 0 {
				add("%s: bars must be positive", where)
			}
			if usage.Offset < 0 {
				add("%s: offset must not be negative", where)
			}
			if usage.EffectiveWeight() < 0 {
				add("%s: weight must not be negative", where)
			}
			for j, filter := range usage.Filters {
				if err := validateFilter(filter); err != nil {
					add("%s filter %d: %v", where, j, err)
				}
			}
		}
	}

	if len(d.Mixes) == 0 {
		add("at least one mix is required")
	}
	for _, name := range d.MixNames() {
		mix := d.Mixes[name]
		checkRatio(fmt.Sprintf("mix %q tempo", name), mix.Tempo)
		checkRatio(fmt.Sprintf("mix %q pitch", name), mix.Pitch)
		if len(mix.Segments) == 0 {
			add("mix %q has no segments", name)
		}
		for i, seg := range mix.Segments {
			if len(seg.Parts) == 0 {
				add("mix %q segment %d has no parts", name, i)
			}
			for _, ref := range seg.Parts {
				if _, ok := d.Parts[ref.Name]; !ok {
					add("mix %q segment %d references unknown part %q", name, i, ref.Name)
				}
				if ref.EffectiveWeight() < 0 {
					add("mix %q segment %d part %q: weight must not be negative", name, i, ref.Name)
				}
			}
		}
	}

	if len(problems) > 0 {
		return services.Wrap(services.ErrDefinition, "definition", "validate", "", errors.Join(problems...))
	}
	return nil
}

func validateFilter(f Filter) error {
	switch {
	case f.Alias == "" && f.Name == "":
		return errors.New("set either name or filter")
	case f.Alias != "" && f.Name != "":
		return errors.New("name and filter are mutually exclusive")
	}
	if f.From != nil && f.To != nil && *f.To < *f.From {
		return fmt.Errorf("to (%v) precedes from (%v)", *f.To, *f.From)
	}
	if f.To != nil && f.From == nil {
		return errors.New("to requires from")
	}
	return nil
}
