package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/waitgraph/pkg/deadlock"
	"github.com/matzehuels/waitgraph/pkg/rag"
	"github.com/matzehuels/waitgraph/pkg/render/nodelink"
)

// Bundle is the JSON render output: the input graph with its report.
type Bundle struct {
	Graph  rag.Graph        `json:"graph"`
	Report *deadlock.Report `json:"report"`
}

// Render produces one artifact per requested format without caching.
func Render(ctx context.Context, g rag.Graph, rep *deadlock.Report, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	dot := ""
	for _, format := range opts.Formats {
		switch format {
		case FormatDOT, FormatSVG:
			if dot == "" {
				dot = nodelink.ToDOT(g, rep, nodelink.Options{Detailed: opts.Detailed})
			}
			if format == FormatDOT {
				artifacts[format] = []byte(dot)
				continue
			}
			svg, err := nodelink.RenderSVG(ctx, dot)
			if err != nil {
				return nil, fmt.Errorf("svg: %w", err)
			}
			artifacts[format] = svg
		case FormatJSON:
			var buf bytes.Buffer
			enc := json.NewEncoder(&buf)
			enc.SetIndent("", "  ")
			if err := enc.Encode(Bundle{Graph: g, Report: rep}); err != nil {
				return nil, fmt.Errorf("json: %w", err)
			}
			artifacts[format] = buf.Bytes()
		}
	}
	return artifacts, nil
}
