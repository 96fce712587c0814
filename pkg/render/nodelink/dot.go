package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/waitgraph/pkg/deadlock"
	"github.com/matzehuels/waitgraph/pkg/rag"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds PID/RID and instance counts to node labels.
	// When false, only the display label is shown.
	Detailed bool
}

const (
	deadColor  = "#d9534f"
	deadFill   = "#f8d7da"
	cycleColor = "#b02a37"
)

// ToDOT converts a resource-allocation graph to Graphviz DOT.
//
// Processes are drawn as ellipses and resources as boxes. When rep is non-nil
// and deadlocked, the processes and resources it names are filled red and
// edges along a reported cycle, including the closing edge back to
// its first node, are drawn bold. g and rep are only read.
//
// Edges whose endpoints are not declared nodes are omitted, as are nodes
// that reuse an earlier ID.
func ToDOT(g rag.Graph, rep *deadlock.Report, opts Options) string {
	dead := map[string]bool{}
	inCycle := map[[2]string]bool{}
	if rep != nil {
		for _, id := range rep.DeadlockedProcessIDs {
			dead[id] = true
		}
		for _, id := range rep.DeadlockedResourceIDs {
			dead[id] = true
		}
		for _, c := range rep.Cycles {
			for i := range c {
				inCycle[[2]string{c[i], c[(i+1)%len(c)]}] = true
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), dead[n.ID])
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			continue
		}
		var attrs []string
		switch {
		case inCycle[[2]string{e.Source, e.Target}]:
			attrs = append(attrs, "color=\""+cycleColor+"\"", "penwidth=2.5")
		case dead[e.Source] && dead[e.Target]:
			attrs = append(attrs, "color=\""+deadColor+"\"")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n rag.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}

	var parts []string
	switch {
	case n.IsProcess() && n.PID != "":
		parts = append(parts, "pid: "+n.PID)
	case n.IsResource():
		if n.RID != "" {
			parts = append(parts, "rid: "+n.RID)
		}
		inst := n.Instances
		if inst <= 0 {
			inst = 1
		}
		parts = append(parts, fmt.Sprintf("instances: %d", inst))
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n rag.Node, label string, dead bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.IsProcess():
		attrs = append(attrs, "shape=ellipse")
	case n.IsResource():
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"")
	default:
		attrs = append(attrs, "shape=plaintext")
	}
	if dead {
		attrs = append(attrs, "color=\""+deadColor+"\"", "fillcolor=\""+deadFill+"\"", "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one whose
// width and height match the viewBox, so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
