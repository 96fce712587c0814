package deadlock

import "github.com/matzehuels/waitgraph/pkg/rag"

// Model is the matrix form of a resource-allocation graph.
//
// Rows of Allocation and Request follow Processes, columns follow Resources.
// Every (process, resource) cell exists, so lookups never miss. Available is
// Total minus Allocated per resource and may be negative.
type Model struct {
	Processes []string
	Resources []string

	Total     []int
	Allocated []int
	Available []int

	Allocation [][]int
	Request    [][]int

	// Adjacency lists outgoing targets per node ID in edge order. It is
	// built from every edge whose endpoints exist, whatever their kinds.
	Adjacency map[string][]string

	procIndex map[string]int
	resIndex  map[string]int
}

// Parse converts a graph snapshot into a Model. It never fails and does not
// retain or modify g.
func Parse(g rag.Graph) *Model {
	m := &Model{
		Adjacency: make(map[string][]string),
		procIndex: make(map[string]int),
		resIndex:  make(map[string]int),
	}

	kinds := make(map[string]rag.Kind, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := kinds[n.ID]; dup {
			continue
		}
		kinds[n.ID] = n.Kind
		switch n.Kind {
		case rag.KindProcess:
			m.procIndex[n.ID] = len(m.Processes)
			m.Processes = append(m.Processes, n.ID)
		case rag.KindResource:
			m.resIndex[n.ID] = len(m.Resources)
			m.Resources = append(m.Resources, n.ID)
			m.Total = append(m.Total, instances(n))
		}
	}

	m.Allocated = make([]int, len(m.Resources))
	m.Allocation = newMatrix(len(m.Processes), len(m.Resources))
	m.Request = newMatrix(len(m.Processes), len(m.Resources))

	for _, e := range g.Edges {
		src, ok := kinds[e.Source]
		if !ok {
			continue
		}
		dst, ok := kinds[e.Target]
		if !ok {
			continue
		}
		m.Adjacency[e.Source] = append(m.Adjacency[e.Source], e.Target)

		switch {
		case src == rag.KindResource && dst == rag.KindProcess:
			r, p := m.resIndex[e.Source], m.procIndex[e.Target]
			m.Allocation[p][r]++
			m.Allocated[r]++
		case src == rag.KindProcess && dst == rag.KindResource:
			p, r := m.procIndex[e.Source], m.resIndex[e.Target]
			m.Request[p][r]++
		}
	}

	m.Available = make([]int, len(m.Resources))
	for r := range m.Resources {
		m.Available[r] = m.Total[r] - m.Allocated[r]
	}
	return m
}

func instances(n rag.Node) int {
	if n.Instances <= 0 {
		return 1
	}
	return n.Instances
}

func newMatrix(rows, cols int) [][]int {
	cells := make([]int, rows*cols)
	out := make([][]int, rows)
	for i := range out {
		out[i] = cells[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return out
}

// ProcessIndex returns the row of the process with the given ID.
func (m *Model) ProcessIndex(id string) (int, bool) {
	i, ok := m.procIndex[id]
	return i, ok
}

// ResourceIndex returns the column of the resource with the given ID.
func (m *Model) ResourceIndex(id string) (int, bool) {
	i, ok := m.resIndex[id]
	return i, ok
}

// AllocationOf returns the units of rid held by pid, or 0 if either is unknown.
func (m *Model) AllocationOf(pid, rid string) int {
	p, okp := m.procIndex[pid]
	r, okr := m.resIndex[rid]
	if !okp || !okr {
		return 0
	}
	return m.Allocation[p][r]
}

// RequestOf returns the units of rid requested by pid, or 0 if either is unknown.
func (m *Model) RequestOf(pid, rid string) int {
	p, okp := m.procIndex[pid]
	r, okr := m.resIndex[rid]
	if !okp || !okr {
		return 0
	}
	return m.Request[p][r]
}

// AvailableOf returns the initial available units of rid, or 0 if unknown.
func (m *Model) AvailableOf(rid string) int {
	r, ok := m.resIndex[rid]
	if !ok {
		return 0
	}
	return m.Available[r]
}

// Touched returns the resources held or requested by the given processes.
// Held resources of a process come before its requested ones; each resource
// appears once, at its first mention.
func (m *Model) Touched(pids []string) []string {
	seen := make(map[int]bool)
	out := []string{}
	add := func(row []int) {
		for r, n := range row {
			if n > 0 && !seen[r] {
				seen[r] = true
				out = append(out, m.Resources[r])
			}
		}
	}
	for _, pid := range pids {
		p, ok := m.procIndex[pid]
		if !ok {
			continue
		}
		add(m.Allocation[p])
		add(m.Request[p])
	}
	return out
}
