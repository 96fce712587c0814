package io

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/matzehuels/waitgraph/pkg/rag"
)

// hclGraphFile is the top-level structure of an HCL graph file.
type hclGraphFile struct {
	Processes []*hclProcess  `hcl:"process,block"`
	Resources []*hclResource `hcl:"resource,block"`
	Edges     []*hclEdge     `hcl:"edge,block"`
}

type hclProcess struct {
	ID    string `hcl:"id,label"`
	Label string `hcl:"label,optional"`
	PID   string `hcl:"pid,optional"`
}

type hclResource struct {
	ID        string `hcl:"id,label"`
	Label     string `hcl:"label,optional"`
	RID       string `hcl:"rid,optional"`
	Instances int    `hcl:"instances,optional"`
}

type hclEdge struct {
	ID     string `hcl:"id,label"`
	Source string `hcl:"source"`
	Target string `hcl:"target"`
}

func decodeHCL(data []byte, filename string) (rag.Graph, error) {
	if filename == "" {
		filename = "graph.hcl"
	}
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return rag.Graph{}, fmt.Errorf("parse %s: %w", filename, diags)
	}

	var parsed hclGraphFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return rag.Graph{}, fmt.Errorf("decode %s: %w", filename, diags)
	}

	nodes := make([]rag.Node, 0, len(parsed.Processes)+len(parsed.Resources))
	for _, p := range parsed.Processes {
		nodes = append(nodes, rag.Node{
			ID:    p.ID,
			Kind:  rag.KindProcess,
			Label: p.Label,
			PID:   p.PID,
		})
	}
	for _, r := range parsed.Resources {
		nodes = append(nodes, rag.Node{
			ID:        r.ID,
			Kind:      rag.KindResource,
			Label:     r.Label,
			RID:       r.RID,
			Instances: r.Instances,
		})
	}

	edges := make([]rag.Edge, 0, len(parsed.Edges))
	for _, e := range parsed.Edges {
		edges = append(edges, rag.Edge{ID: e.ID, Source: e.Source, Target: e.Target})
	}
	return rag.New(nodes, edges), nil
}
