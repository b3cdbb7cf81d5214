package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is one operation in a media graph.
type Node interface {
	// Children returns the input streams of the operation in order.
	Children() []Node
	describe() string
}

// Input reads an audio file.
type Input struct {
	Location string
}

// Silence generates Duration seconds of silence.
type Silence struct {
	Duration   float64
	SampleRate int
}

// Trim keeps the [Start, End) seconds of its input and resets timestamps.
type Trim struct {
	In         Node
	Start, End float64
}

// Fit makes its input exactly Duration seconds long: silence fills in past
// the end of the input and anything later is cut.
type Fit struct {
	In       Node
	Duration float64
}

// Pad prepends Duration seconds of silence to its input.
type Pad struct {
	In       Node
	Duration float64
}

// Loop plays its input Count additional times. Size is the loop unit in
// samples.
type Loop struct {
	In    Node
	Count int
	Size  int64
}

// Filter applies a named audio filter.
type Filter struct {
	In     Node
	Name   string
	Args   []Arg
	Enable Enable
}

// WeightedMix sums its inputs using per-input weights without normalization.
type WeightedMix struct {
	Inputs  []Node
	Weights []float64
}

// Concat places its inputs one after another.
type Concat struct {
	Inputs []Node
}

// TempoPitch changes tempo and pitch independently.
type TempoPitch struct {
	In           Node
	Tempo, Pitch float64
}

func (Input) Children() []Node { return nil }
func (Silence) Children() []Node { return nil }
func (n Trim) Children() []Node { return []Node{n.In} }
func (n Fit) Children() []Node { return []Node{n.In} }
func (n Pad) Children() []Node { return []Node{n.In} }
func (n Loop) Children() []Node { return []Node{n.In} }
func (n Filter) Children() []Node { return []Node{n.In} }
func (n WeightedMix) Children() []Node { return n.Inputs }
func (n Concat) Children() []Node { return n.Inputs }
func (n TempoPitch) Children() []Node { return []Node{n.In} }

func (n Input) describe() string { return fmt.Sprintf("input(%s)", n.Location) }
func (n Silence) describe() string { return fmt.Sprintf("silence(%ss)", FormatFloat(n.Duration)) }
func (n Trim) describe() string {
	return fmt.Sprintf("trim(%s,%s)", FormatFloat(n.Start), FormatFloat(n.End))
}
func (n Fit) describe() string { return fmt.Sprintf("fit(%ss)", FormatFloat(n.Duration)) }
func (n Pad) describe() string { return fmt.Sprintf("pad(%ss)", FormatFloat(n.Duration)) }
func (n Loop) describe() string { return fmt.Sprintf("loop(%d,%d)", n.Count, n.Size) }
func (n Filter) describe() string {
	var b strings.Builder
	b.WriteString(n.Name)
	b.WriteByte('(')
	for i, arg := range n.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(arg.Key)
		b.WriteByte('=')
		b.WriteString(arg.Value)
	}
	if expr := n.Enable.String(); expr != "" {
		if len(n.Args) > 0 {
			b.WriteByte(',')
		}
		b.WriteString("enable=")
		b.WriteString(expr)
	}
	b.WriteByte(')')
	return b.String()
}
func (n WeightedMix) describe() string { return fmt.Sprintf("mix(%s)", JoinWeights(n.Weights)) }
func (n Concat) describe() string { return fmt.Sprintf("concat(%d)", len(n.Inputs)) }
func (n TempoPitch) describe() string {
	return fmt.Sprintf("tempo_pitch(%s,%s)", FormatFloat(n.Tempo), FormatFloat(n.Pitch))
}

// Arg is one filter parameter. Order is preserved when compiled.
type Arg struct {
	Key   string
	Value string
}

// FloatArg builds a numeric Arg.
func FloatArg(key string, value float64) Arg {
	return Arg{Key: key, Value: FormatFloat(value)}
}

// EnableKind selects when a filter is active.
type EnableKind int

const (
	// Always keeps the filter active for the whole stream.
	Always EnableKind = iota
	// After activates the filter from From to the end of the stream.
	After
	// Between activates the filter within [From, To].
	Between
)

// Enable is a filter activation predicate in absolute seconds.
type Enable struct {
	Kind     EnableKind
	From, To float64
}

// String renders the predicate as an ffmpeg timeline expression. Always
// renders as the empty string.
func (e Enable) String() string {
	switch e.Kind {
	case After:
		return fmt.Sprintf("gte(t,%s)", FormatFloat(e.From))
	case Between:
		return fmt.Sprintf("between(t,%s,%s)", FormatFloat(e.From), FormatFloat(e.To))
	default:
		return ""
	}
}

// FormatFloat renders v without trailing zeros.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// JoinWeights renders mix weights space separated.
func JoinWeights(weights []float64) string {
	parts := make([]string, len(weights))
	for i, w := range weights {
		parts[i] = FormatFloat(w)
	}
	return strings.Join(parts, " ")
}

// Inputs returns every Input location reachable from root in depth-first
// order. A location appears once per occurrence.
func Inputs(root Node) []string {
	var out []string
	Walk(root, func(n Node) {
		if in, ok := n.(Input); ok {
			out = append(out, in.Location)
		}
	})
	return out
}

// Walk visits root and its descendants depth-first, parents before children.
func Walk(root Node, visit func(Node)) {
	if root == nil {
		return
	}
	visit(root)
	for _, child := range root.Children() {
		Walk(child, visit)
	}
}

// Describe renders the tree as a compact nested expression for logs.
func Describe(root Node) string {
	if root == nil {
		return ""
	}
	children := root.Children()
	if len(children) == 0 {
		return root.describe()
	}
	parts := make([]string, len(children))
	for i, child := range children {
		parts[i] = Describe(child)
	}
	return root.describe() + " <- [" + strings.Join(parts, "; ") + "]"
}

// Probe holds the measured properties of an audio source.
type Probe struct {
	DurationSeconds float64
	SampleRate      int
}
