package filters

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"automix/internal/definition"
	"automix/internal/services"
)

// Catalog is an immutable table of pre-resolved filter aliases.
type Catalog struct {
	entries map[string]entry
}

type entry struct {
	// terminal is the inline definition the chain ends at.
	terminal definition.Filter
	// window is the nearest reference in the chain that sets from/to.
	window *definition.Filter
	chain  []string
}

// NewCatalog resolves every alias in aliases. A chain that revisits an alias
// fails with services.ErrFilterCycle; a chain naming an unknown alias fails
// with services.ErrFilterNotFound.
func NewCatalog(aliases map[string]definition.Filter) (*Catalog, error) {
	c := &Catalog{entries: make(map[string]entry, len(aliases))}
	for _, name := range slices.Sorted(maps.Keys(aliases)) {
		e, err := follow(aliases, name)
		if err != nil {
			return nil, err
		}
		c.entries[name] = e
	}
	return c, nil
}

func follow(aliases map[string]definition.Filter, start string) (entry, error) {
	var e entry
	visited := make(map[string]struct{})
	name := start
	for {
		if _, seen := visited[name]; seen {
			chain := append(e.chain, name)
			return entry{}, services.Wrap(services.ErrFilterCycle, "filters", "resolve", strings.Join(chain, " -> "), nil)
		}
		visited[name] = struct{}{}
		e.chain = append(e.chain, name)

		f, ok := aliases[name]
		if !ok {
			return entry{}, notFound(name, e.chain)
		}
		if e.window == nil && f.HasWindow() {
			windowed := f
			e.window = &windowed
		}
		if !f.IsAlias() {
			e.terminal = f
			return e, nil
		}
		name = f.Alias
	}
}

func notFound(name string, chain []string) error {
	msg := fmt.Sprintf("alias %q", name)
	if len(chain) > 1 {
		msg += " (via " + strings.Join(chain[:len(chain)-1], " -> ") + ")"
	}
	return services.Wrap(services.ErrFilterNotFound, "filters", "resolve", msg, nil)
}

// Aliases returns the catalog's alias names in sorted order.
func (c *Catalog) Aliases() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.entries))
}

// Chain returns the aliases visited when resolving name, starting with name.
func (c *Catalog) Chain(name string) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.entries[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(e.chain), true
}

// Resolve converts ref into a concrete operation. barTime is the length of
// one bar in seconds.
func (c *Catalog) Resolve(ref definition.Filter, barTime float64) (Resolved, error) {
	terminal, window := ref, ref
	if ref.IsAlias() {
		var e entry
		ok := false
		if c != nil {
			e, ok = c.entries[ref.Alias]
		}
		if !ok {
			return Resolved{}, notFound(ref.Alias, nil)
		}
		terminal = e.terminal
		switch {
		case ref.HasWindow():
			window = ref
		case e.window != nil:
			window = *e.window
		default:
			window = definition.Filter{}
		}
	}
	return build(terminal, window, barTime)
}

// ResolveAll resolves refs in order.
func (c *Catalog) ResolveAll(refs []definition.Filter, barTime float64) ([]Resolved, error) {
	out := make([]Resolved, 0, len(refs))
	for _, ref := range refs {
		r, err := c.Resolve(ref, barTime)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
