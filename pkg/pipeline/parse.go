package pipeline

import (
	"github.com/matzehuels/waitgraph/pkg/io"
	"github.com/matzehuels/waitgraph/pkg/rag"
)

// Load decodes the input graph described by opts.
func Load(opts Options) (rag.Graph, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return rag.Graph{}, err
	}
	if len(opts.Data) > 0 {
		return io.DecodeGraph(opts.Data, opts.InputFormat, opts.Path)
	}
	return io.ImportGraph(opts.Path)
}
