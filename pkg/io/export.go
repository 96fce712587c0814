package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/waitgraph/pkg/deadlock"
	"github.com/matzehuels/waitgraph/pkg/rag"
)

// WriteGraph encodes a graph as indented JSON and writes it to w.
// The output can be re-imported with [ReadGraph] using [FormatJSON].
func WriteGraph(g rag.Graph, w io.Writer) error {
	if g.Nodes == nil {
		g.Nodes = []rag.Node{}
	}
	if g.Edges == nil {
		g.Edges = []rag.Edge{}
	}
	return writeJSON(g, w)
}

// ExportGraph writes a graph to a JSON file at path.
func ExportGraph(g rag.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// WriteReport encodes a deadlock report as indented JSON.
func WriteReport(r *deadlock.Report, w io.Writer) error {
	return writeJSON(r, w)
}

// ExportReport writes a deadlock report to a JSON file at path.
func ExportReport(r *deadlock.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteReport(r, f)
}

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
