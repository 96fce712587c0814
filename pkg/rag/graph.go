package rag

// Kind distinguishes the two node families of a resource-allocation graph.
type Kind string

const (
	// KindProcess marks an active entity that holds and requests units.
	KindProcess Kind = "process"
	// KindResource marks a pool of interchangeable units.
	KindResource Kind = "resource"
)

// Node is a vertex of the resource-allocation graph.
//
// PID applies to processes, RID and Instances to resources. Instances is the
// declared total unit count; zero or negative values are read as 1 by the
// analysis engine.
type Node struct {
	ID        string `json:"id" toml:"id" yaml:"id"`
	Kind      Kind   `json:"kind" toml:"kind" yaml:"kind"`
	Label     string `json:"label,omitempty" toml:"label" yaml:"label,omitempty"`
	PID       string `json:"pid,omitempty" toml:"pid" yaml:"pid,omitempty"`
	RID       string `json:"rid,omitempty" toml:"rid" yaml:"rid,omitempty"`
	Instances int    `json:"instances,omitempty" toml:"instances" yaml:"instances,omitempty"`
}

// IsProcess reports whether the node is a process.
func (n Node) IsProcess() bool { return n.Kind == KindProcess }

// IsResource reports whether the node is a resource.
func (n Node) IsResource() bool { return n.Kind == KindResource }

// DisplayLabel returns the label, or the ID when the label is empty.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID     string `json:"id,omitempty" toml:"id" yaml:"id,omitempty"`
	Source string `json:"source" toml:"source" yaml:"source"`
	Target string `json:"target" toml:"target" yaml:"target"`
}

// Graph is an immutable-by-convention snapshot of nodes and edges.
// Order matters: processes are examined in node order and adjacency
// follows edge order.
type Graph struct {
	Nodes []Node `json:"nodes" toml:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" toml:"edges" yaml:"edges"`
}

// New builds a graph from the given nodes and edges without copying them.
func New(nodes []Node, edges []Edge) Graph {
	return Graph{Nodes: nodes, Edges: edges}
}

// NodeCount returns the number of nodes in the snapshot.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges in the snapshot.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// Index maps each node ID to its first position in Nodes.
// Later nodes that reuse an ID are shadowed.
func (g Graph) Index() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if _, seen := idx[n.ID]; !seen {
			idx[n.ID] = i
		}
	}
	return idx
}

// Node returns the first node with the given ID.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Labeler returns a lookup that resolves node IDs to display labels,
// falling back to the ID itself for unknown nodes.
func (g Graph) Labeler() func(id string) string {
	idx := g.Index()
	return func(id string) string {
		if i, ok := idx[id]; ok {
			return g.Nodes[i].DisplayLabel()
		}
		return id
	}
}

// Processes returns the process nodes in input order.
func (g Graph) Processes() []Node { return g.filter(KindProcess) }

// Resources returns the resource nodes in input order.
func (g Graph) Resources() []Node { return g.filter(KindResource) }

func (g Graph) filter(k Kind) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}
