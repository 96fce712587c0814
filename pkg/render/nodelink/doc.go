// Package nodelink renders resource-allocation graphs as node-link diagrams.
//
// Processes appear as ellipses and resources as rounded boxes. Passing a
// [deadlock.Report] to [ToDOT] highlights the deadlocked set and the edges of
// every reported cycle; the graph and report are not modified.
//
//	rep := deadlock.Detect(g).Report
//	dot := nodelink.ToDOT(g, rep, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// SVG rendering runs Graphviz in-process via [github.com/goccy/go-graphviz];
// no external binaries are needed.
package nodelink
