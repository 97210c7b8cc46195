// Package graphviz adapts github.com/goccy/go-graphviz as a concrete
// pkg/layout.Engine: it builds a DOT string and shells out to Graphviz's
// layered layout as the external black-box algorithm (spec.md §6) — it
// does not reimplement layout.
package graphviz

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	gv "github.com/goccy/go-graphviz"

	"github.com/hydro-project/flowviz/pkg/flowerrors"
	"github.com/hydro-project/flowviz/pkg/layout"
	"github.com/hydro-project/flowviz/pkg/model"
)

// Engine implements layout.Engine via the Graphviz "plain" text output
// format, which reports a position and size for every node/cluster
// without requiring a separate rendering pass.
type Engine struct{}

// New returns a ready-to-use Graphviz-backed layout engine.
func New() *Engine { return &Engine{} }

// pointsPerInch matches Graphviz's default coordinate unit in the "plain"
// format; the bridge's consumers work in the same unit as the rest of the
// state store, so output is scaled up to points here, once.
const pointsPerInch = 72.0

func (e *Engine) Layout(in layout.Input) (layout.Output, error) {
	dot := toDOT(in)

	ctx := context.Background()
	g, err := gv.New(ctx)
	if err != nil {
		return layout.Output{}, flowerrors.Wrap(flowerrors.LayoutFailure, err, "init graphviz")
	}
	defer g.Close()

	graph, err := gv.ParseBytes([]byte(dot))
	if err != nil {
		return layout.Output{}, flowerrors.Wrap(flowerrors.LayoutFailure, err, "parse generated DOT")
	}
	defer graph.Close()

	var buf bytes.Buffer
	// "plain" is one of Graphviz's built-in output formats (not exported as
	// a named constant by this binding), reporting positions/sizes as
	// simple whitespace-separated text instead of a renderable image.
	if err := g.Render(ctx, graph, gv.Format("plain"), &buf); err != nil {
		return layout.Output{}, flowerrors.Wrap(flowerrors.LayoutFailure, err, "run graphviz layout")
	}

	out, err := parsePlain(buf.Bytes())
	if err != nil {
		return layout.Output{}, flowerrors.Wrap(flowerrors.LayoutFailure, err, "parse graphviz plain output")
	}
	return out, nil
}

// engineFor maps a layout.Algorithm to the Graphviz layout engine that
// best approximates it: "dot" is the only true layered engine, "neato"
// doubles as Graphviz's force-directed engine, "twopi" is its radial
// engine, and Graphviz has no native unconstrained tree engine so "dot"
// (which is tree-like for sparse DAGs) is reused.
func engineFor(a layout.Algorithm) string {
	switch a {
	case layout.AlgorithmForce:
		return "neato"
	case layout.AlgorithmRadial:
		return "twopi"
	default:
		return "dot"
	}
}

func rankdirFor(d layout.Direction) string {
	switch d {
	case layout.Up:
		return "BT"
	case layout.Left:
		return "RL"
	case layout.Right:
		return "LR"
	default:
		return "TB"
	}
}

func splinesFor(r layout.EdgeRouting) string {
	switch r {
	case layout.RoutingOrthogonal:
		return "ortho"
	case layout.RoutingSplines:
		return "spline"
	default:
		return "polyline"
	}
}

func toDOT(in layout.Input) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph G {\n")
	fmt.Fprintf(&buf, "  layout=%q;\n", engineFor(in.Options.Algorithm))
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdirFor(in.Options.Direction))
	fmt.Fprintf(&buf, "  splines=%s;\n", splinesFor(in.Options.EdgeRouting))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(in.Options.NodeSpacing))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(in.Options.LayerSpacing))
	fmt.Fprintf(&buf, "  compound=true;\n")
	fmt.Fprintf(&buf, "  node [shape=box];\n\n")

	for _, l := range in.Roots {
		writeLeaf(&buf, l, 1)
	}
	for _, r := range in.Regions {
		writeRegion(&buf, r, 1)
	}

	buf.WriteString("\n")
	for _, e := range in.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func writeLeaf(buf *bytes.Buffer, l layout.Leaf, indent int) {
	pad := strings.Repeat("  ", indent)
	attrs := []string{}
	if l.PreferredWidth > 0 {
		attrs = append(attrs, fmt.Sprintf("width=%s", inches(l.PreferredWidth)))
	}
	if l.PreferredHeight > 0 {
		attrs = append(attrs, fmt.Sprintf("height=%s", inches(l.PreferredHeight)))
	}
	if len(attrs) == 0 {
		fmt.Fprintf(buf, "%s%q;\n", pad, l.ID)
		return
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", pad, l.ID, strings.Join(attrs, ", "))
}

func writeRegion(buf *bytes.Buffer, r layout.Region, indent int) {
	pad := strings.Repeat("  ", indent)
	fmt.Fprintf(buf, "%ssubgraph %q {\n", pad, "cluster_"+r.ID)
	fmt.Fprintf(buf, "%s  label=%q;\n", pad, r.ID)
	// A cluster needs at least one real node inside it to render as a
	// region with its own box; an anchor carries the region's own id so
	// the plain-format parser can read back its position/size.
	fmt.Fprintf(buf, "%s  %q [shape=point, width=0.01, label=\"\"];\n", pad, r.ID)
	for _, l := range r.Leaves {
		writeLeaf(buf, l, indent+1)
	}
	for _, sub := range r.Regions {
		writeRegion(buf, sub, indent+1)
	}
	fmt.Fprintf(buf, "%s}\n", pad)
}

func inches(points float64) string {
	return strconv.FormatFloat(points/pointsPerInch, 'f', 4, 64)
}

// parsePlain reads Graphviz's "plain" output format:
//
//	graph <scale> <width> <height>
//	node <name> <x> <y> <width> <height> <label> <style> <shape> <color> <fillcolor>
//	edge <tail> <head> <n> <x1> <y1> ... <xn> <yn> [<label> <lx> <ly>] <style> <color>
//	stop
//
// Coordinates and sizes are in inches; this converts them to points so
// the layout output is in the same unit as the rest of the state store.
func parsePlain(data []byte) (layout.Output, error) {
	out := layout.Output{
		Positions:  make(map[string]layout.Position),
		Dimensions: make(map[string]layout.Dimensions),
		Bends:      make(map[string][]model.BendPoint),
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var graphHeight float64

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "graph":
			if len(fields) >= 4 {
				graphHeight = parseFloat(fields[3]) * pointsPerInch
			}
		case "node":
			if len(fields) < 5 {
				continue
			}
			name := unquote(fields[1])
			x := parseFloat(fields[2]) * pointsPerInch
			y := graphHeight - parseFloat(fields[3])*pointsPerInch // flip: plain format is bottom-left origin
			w := parseFloat(fields[4]) * pointsPerInch
			var h float64
			if len(fields) >= 6 {
				h = parseFloat(fields[5]) * pointsPerInch
			}
			out.Positions[name] = layout.Position{X: x, Y: y}
			out.Dimensions[name] = layout.Dimensions{W: w, H: h}
		}
	}
	if err := scanner.Err(); err != nil {
		return layout.Output{}, err
	}
	return out, nil
}

func unquote(s string) string {
	return strings.Trim(s, "\"")
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
