package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"automix/internal/definition"
	"automix/internal/services"
	"automix/internal/textutil"
)

// OutputName returns the file name of a mix master: "<name> (<mix>).<format>".
func OutputName(definitionName, mix, format string) string {
	return fmt.Sprintf("%s (%s).%s", textutil.SanitizeFileName(definitionName), textutil.SanitizeFileName(mix), format)
}

// ResolveOutputs maps every mix of def to an output location. When explicit
// names an existing directory, masters are placed there; otherwise explicit
// is the output file of a single-mix definition. An empty explicit places
// masters in dir.
func ResolveOutputs(def *definition.Definition, dir, explicit, format string) (map[string]string, error) {
	mixes := def.MixNames()
	outputs := make(map[string]string, len(mixes))

	explicit = strings.TrimSpace(explicit)
	if explicit != "" {
		absolute, err := filepath.Abs(explicit)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "render", "output", explicit, err)
		}
		if info, err := os.Stat(absolute); err == nil && info.IsDir() {
			dir = absolute
		} else {
			if len(mixes) != 1 {
				return nil, services.Wrap(services.ErrConfiguration, "render", "output",
					fmt.Sprintf("%s is not a directory but the definition has %d mixes", explicit, len(mixes)), nil)
			}
			outputs[mixes[0]] = absolute
			return outputs, nil
		}
	}

	for _, mix := range mixes {
		outputs[mix] = filepath.Join(dir, OutputName(def.Name, mix, format))
	}
	return outputs, nil
}
