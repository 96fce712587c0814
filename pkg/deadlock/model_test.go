package deadlock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/waitgraph/pkg/rag"
)

func TestParseEmptyGraph(t *testing.T) {
	m := Parse(rag.Graph{})

	assert.Empty(t, m.Processes)
	assert.Empty(t, m.Resources)
	assert.Empty(t, m.Available)
	assert.Empty(t, m.Adjacency)
}

func TestParseMatricesZeroInitialized(t *testing.T) {
	m := Parse(rag.New([]rag.Node{proc("P1"), proc("P2"), res("R1", 3), res("R2", 1)}, nil))

	require.Len(t, m.Allocation, 2)
	require.Len(t, m.Request, 2)
	for p := range m.Processes {
		assert.Equal(t, []int{0, 0}, m.Allocation[p])
		assert.Equal(t, []int{0, 0}, m.Request[p])
	}
	assert.Equal(t, []int{3, 1}, m.Available)
}

func TestParseInstancesDefault(t *testing.T) {
	m := Parse(rag.New([]rag.Node{res("R0", 0), res("Rneg", -4), res("R5", 5)}, nil))
	assert.Equal(t, []int{1, 1, 5}, m.Total)
}

func TestParseEdges(t *testing.T) {
	g := rag.New(
		[]rag.Node{proc("P1"), proc("P2"), res("R1", 2), res("R2", 1)},
		[]rag.Edge{
			edge("R1", "P1"),
			edge("R1", "P2"),
			edge("P1", "R2"),
			edge("P1", "R2"), // parallel request accumulates
			edge("R1", "R2"), // same kind: adjacency only
			edge("P1", "ghost"),
			edge("ghost", "P2"),
		},
	)
	m := Parse(g)

	assert.Equal(t, 1, m.AllocationOf("P1", "R1"))
	assert.Equal(t, 1, m.AllocationOf("P2", "R1"))
	assert.Equal(t, 2, m.RequestOf("P1", "R2"))
	assert.Equal(t, 0, m.RequestOf("P1", "R1"))
	assert.Equal(t, []int{2, 0}, m.Allocated)
	assert.Equal(t, 0, m.AvailableOf("R1"))
	assert.Equal(t, 1, m.AvailableOf("R2"))

	assert.Equal(t, []string{"P1", "P2", "R2"}, m.Adjacency["R1"])
	assert.Equal(t, []string{"R2", "R2"}, m.Adjacency["P1"])
	_, hasGhost := m.Adjacency["ghost"]
	assert.False(t, hasGhost, "edges with unknown endpoints must be dropped")
}

func TestParseAllocationSumsMatchAllocated(t *testing.T) {
	g := rag.New(
		[]rag.Node{proc("P1"), proc("P2"), proc("P3"), res("A", 3), res("B", 2)},
		[]rag.Edge{
			edge("A", "P1"), edge("A", "P2"), edge("A", "P3"),
			edge("B", "P1"), edge("B", "P1"), edge("B", "P3"),
			edge("P2", "B"),
		},
	)
	m := Parse(g)

	for r := range m.Resources {
		sum := 0
		for p := range m.Processes {
			sum += m.Allocation[p][r]
		}
		assert.Equal(t, m.Allocated[r], sum, "resource %s", m.Resources[r])
		assert.Equal(t, m.Total[r]-m.Allocated[r], m.Available[r], "resource %s", m.Resources[r])
	}
}

func TestParseDuplicateIDsKeepFirst(t *testing.T) {
	g := rag.New([]rag.Node{proc("X"), res("X", 4), res("R", 1)}, nil)
	m := Parse(g)

	assert.Equal(t, []string{"X"}, m.Processes)
	assert.Equal(t, []string{"R"}, m.Resources)
}

func TestParseDoesNotMutateInput(t *testing.T) {
	g := circularWait()
	before := rag.New(append([]rag.Node(nil), g.Nodes...), append([]rag.Edge(nil), g.Edges...))

	Parse(g)

	assert.Equal(t, before, g)
}

func TestTouched(t *testing.T) {
	g := rag.New(
		[]rag.Node{proc("P1"), proc("P2"), res("A", 1), res("B", 1), res("C", 1)},
		[]rag.Edge{edge("P1", "A"), edge("C", "P1"), edge("P2", "B")},
	)
	m := Parse(g)

	assert.Equal(t, []string{"C", "A", "B"}, m.Touched([]string{"P1", "P2"}))
	assert.Equal(t, []string{}, m.Touched([]string{"unknown"}))
}

func TestIndexLookups(t *testing.T) {
	m := Parse(circularWait())

	p, ok := m.ProcessIndex("P2")
	assert.True(t, ok)
	assert.Equal(t, 1, p)
	_, ok = m.ProcessIndex("RX")
	assert.False(t, ok)

	r, ok := m.ResourceIndex("RY")
	assert.True(t, ok)
	assert.Equal(t, 1, r)
	assert.Equal(t, 0, m.AllocationOf("nope", "RX"))
	assert.Equal(t, 0, m.AvailableOf("nope"))
}
