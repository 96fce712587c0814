package deadlock

import (
	"time"

	"github.com/matzehuels/waitgraph/pkg/rag"
)

var fixedNow = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

func proc(id string) rag.Node { return rag.Node{ID: id, Kind: rag.KindProcess, Label: id} }

func res(id string, instances int) rag.Node {
	return rag.Node{ID: id, Kind: rag.KindResource, Label: id, Instances: instances}
}

func edge(src, dst string) rag.Edge {
	return rag.Edge{ID: src + "-" + dst, Source: src, Target: dst}
}

// circularWait: P1 waits on RX held by P2, P2 waits on RY held by P1.
func circularWait() rag.Graph {
	return rag.New(
		[]rag.Node{proc("P1"), proc("P2"), res("RX", 1), res("RY", 1)},
		[]rag.Edge{
			edge("P1", "RX"),
			edge("RX", "P2"),
			edge("P2", "RY"),
			edge("RY", "P1"),
		},
	)
}
