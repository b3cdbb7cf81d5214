package ffmpeg

import (
	"errors"
	"fmt"
	"strings"

	"automix/internal/media/graph"
)

// defaultSampleRate applies to generated silence that does not name a rate.
const defaultSampleRate = 44100

// Invocation is a compiled ffmpeg command line, without the binary.
type Invocation struct {
	Inputs []string
	Filter string
	Output string
	Args   []string
}

// Compile renders root as ffmpeg arguments writing to output. overwrite maps
// to -y, otherwise -n makes ffmpeg refuse to replace an existing file.
func Compile(root graph.Node, output string, overwrite bool) (Invocation, error) {
	if root == nil {
		return Invocation{}, errors.New("compile: empty graph")
	}
	if strings.TrimSpace(output) == "" {
		return Invocation{}, errors.New("compile: empty output")
	}

	c := &compiler{}
	label, err := c.node(root)
	if err != nil {
		return Invocation{}, err
	}
	if c.isInputLabel(label) {
		out := c.label()
		c.chains = append(c.chains, label+"anull"+out)
		label = out
	}

	inv := Invocation{
		Inputs: c.inputs,
		Filter: strings.Join(c.chains, ";"),
		Output: output,
	}
	args := []string{"-hide_banner", "-nostdin", "-loglevel", "error"}
	if overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}
	for _, in := range c.inputs {
		args = append(args, "-i", in)
	}
	args = append(args, "-filter_complex", inv.Filter, "-map", label, output)
	inv.Args = args
	return inv, nil
}

type compiler struct {
	inputs []string
	chains []string
	next   int
}

func (c *compiler) label() string {
	l := fmt.Sprintf("[s%d]", c.next)
	c.next++
	return l
}

func (c *compiler) isInputLabel(label string) bool {
	return strings.HasSuffix(label, ":a:0]")
}

// unary appends "[in]filter[out]" and returns the new label.
func (c *compiler) unary(in graph.Node, filter string) (string, error) {
	src, err := c.node(in)
	if err != nil {
		return "", err
	}
	out := c.label()
	c.chains = append(c.chains, src+filter+out)
	return out, nil
}

func (c *compiler) many(inputs []graph.Node, filter string) (string, error) {
	if len(inputs) == 0 {
		return "", fmt.Errorf("compile: %s without inputs", filter)
	}
	var b strings.Builder
	for _, in := range inputs {
		src, err := c.node(in)
		if err != nil {
			return "", err
		}
		b.WriteString(src)
	}
	out := c.label()
	c.chains = append(c.chains, b.String()+filter+out)
	return out, nil
}

func (c *compiler) node(n graph.Node) (string, error) {
	switch n := n.(type) {
	case graph.Input:
		if strings.TrimSpace(n.Location) == "" {
			return "", errors.New("compile: input without location")
		}
		idx := len(c.inputs)
		c.inputs = append(c.inputs, n.Location)
		return fmt.Sprintf("[%d:a:0]", idx), nil
	case graph.Silence:
		rate := n.SampleRate
		if rate <= 0 {
			rate = defaultSampleRate
		}
		out := c.label()
		c.chains = append(c.chains, fmt.Sprintf("anullsrc=r=%d:cl=stereo,atrim=end=%s%s", rate, graph.FormatFloat(n.Duration), out))
		return out, nil
	case graph.Trim:
		return c.unary(n.In, fmt.Sprintf("atrim=start=%s:end=%s,asetpts=PTS-STARTPTS", graph.FormatFloat(n.Start), graph.FormatFloat(n.End)))
	case graph.Fit:
		d := graph.FormatFloat(n.Duration)
		return c.unary(n.In, fmt.Sprintf("apad=whole_dur=%s,atrim=end=%s,asetpts=PTS-STARTPTS", d, d))
	case graph.Pad:
		ms := graph.FormatFloat(n.Duration * 1000)
		return c.unary(n.In, fmt.Sprintf("adelay=delays=%s:all=1", ms))
	case graph.Loop:
		return c.unary(n.In, fmt.Sprintf("aloop=loop=%d:size=%d", n.Count, n.Size))
	case graph.Filter:
		if strings.TrimSpace(n.Name) == "" {
			return "", errors.New("compile: filter without name")
		}
		return c.unary(n.In, filterExpr(n))
	case graph.WeightedMix:
		if len(n.Weights) != len(n.Inputs) {
			return "", fmt.Errorf("compile: mix has %d inputs and %d weights", len(n.Inputs), len(n.Weights))
		}
		return c.many(n.Inputs, fmt.Sprintf("amix=inputs=%d:weights='%s':normalize=0", len(n.Inputs), graph.JoinWeights(n.Weights)))
	case graph.Concat:
		return c.many(n.Inputs, fmt.Sprintf("concat=n=%d:v=0:a=1", len(n.Inputs)))
	case graph.TempoPitch:
		return c.unary(n.In, fmt.Sprintf("rubberband=tempo=%s:pitch=%s", graph.FormatFloat(n.Tempo), graph.FormatFloat(n.Pitch)))
	case nil:
		return "", errors.New("compile: nil node")
	default:
		return "", fmt.Errorf("compile: unsupported node %T", n)
	}
}

func filterExpr(f graph.Filter) string {
	opts := make([]string, 0, len(f.Args)+1)
	for _, arg := range f.Args {
		opts = append(opts, arg.Key+"="+arg.Value)
	}
	if expr := f.Enable.String(); expr != "" {
		opts = append(opts, "enable='"+expr+"'")
	}
	if len(opts) == 0 {
		return f.Name
	}
	return f.Name + "=" + strings.Join(opts, ":")
}
