package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/waitgraph/pkg/deadlock"
	"github.com/matzehuels/waitgraph/pkg/rag"
)

func sampleGraph() rag.Graph {
	return rag.New(
		[]rag.Node{
			{ID: "P1", Kind: rag.KindProcess, Label: "Writer", PID: "101"},
			{ID: "P2", Kind: rag.KindProcess},
			{ID: "R1", Kind: rag.KindResource, Label: "Disk", Instances: 2},
			{ID: "R2", Kind: rag.KindResource},
			{ID: "P1", Kind: rag.KindProcess, Label: "Shadow"},
		},
		[]rag.Edge{
			{ID: "e1", Source: "R1", Target: "P1"},
			{ID: "e2", Source: "P1", Target: "R2"},
			{ID: "e3", Source: "R2", Target: "P2"},
			{ID: "e4", Source: "P2", Target: "R1"},
			{ID: "e5", Source: "P2", Target: "ghost"},
		},
	)
}

func TestToDOTPlain(t *testing.T) {
	dot := ToDOT(sampleGraph(), nil, Options{})

	for _, want := range []string{
		"digraph G {",
		`"P1" [label="Writer", shape=ellipse];`,
		`"P2" [label="P2", shape=ellipse];`,
		`"R1" [label="Disk", shape=box, style="rounded,filled"];`,
		`"R1" -> "P1";`,
		`"P2" -> "R1";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "Shadow") {
		t.Error("ToDOT() should skip nodes that reuse an ID")
	}
	if strings.Contains(dot, "ghost") {
		t.Error("ToDOT() should skip dangling edges")
	}
	if strings.Contains(dot, deadColor) {
		t.Error("ToDOT() without report should not highlight anything")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sampleGraph(), nil, Options{Detailed: true})

	if !strings.Contains(dot, `label="Writer\npid: 101"`) {
		t.Errorf("detailed process label missing pid:\n%s", dot)
	}
	if !strings.Contains(dot, `label="Disk\ninstances: 2"`) {
		t.Errorf("detailed resource label missing instances:\n%s", dot)
	}
	if !strings.Contains(dot, `label="R2\ninstances: 1"`) {
		t.Errorf("missing instances should show as 1:\n%s", dot)
	}
}

func TestToDOTHighlightsDeadlock(t *testing.T) {
	g := rag.New(
		[]rag.Node{
			{ID: "P1", Kind: rag.KindProcess},
			{ID: "P2", Kind: rag.KindProcess},
			{ID: "RX", Kind: rag.KindResource},
			{ID: "RY", Kind: rag.KindResource},
			{ID: "P3", Kind: rag.KindProcess},
		},
		[]rag.Edge{
			{Source: "RX", Target: "P1"},
			{Source: "P1", Target: "RY"},
			{Source: "RY", Target: "P2"},
			{Source: "P2", Target: "RX"},
		},
	)
	before := ToDOT(g, nil, Options{})
	rep := deadlock.Detect(g).Report
	dot := ToDOT(g, rep, Options{})

	if !rep.IsDeadlocked {
		t.Fatal("fixture should deadlock")
	}
	for _, id := range []string{"P1", "P2", "RX", "RY"} {
		line := lineFor(dot, `"`+id+`" [`)
		if !strings.Contains(line, deadFill) {
			t.Errorf("node %s not highlighted: %s", id, line)
		}
	}
	if line := lineFor(dot, `"P3" [`); strings.Contains(line, deadFill) {
		t.Errorf("idle process highlighted: %s", line)
	}
	if line := lineFor(dot, `"P1" -> "RY"`); !strings.Contains(line, "penwidth=2.5") {
		t.Errorf("cycle edge not bold: %s", line)
	}

	if again := ToDOT(g, nil, Options{}); again != before {
		t.Error("ToDOT() must not modify its inputs")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`
	if !strings.HasPrefix(out, want) {
		t.Errorf("normalizeViewBox() = %s, want prefix %s", out, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() without viewBox changed input: %s", got)
	}
}

func lineFor(dot, prefix string) string {
	for _, l := range strings.Split(dot, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), prefix) {
			return l
		}
	}
	return ""
}

func TestToDOTHighlightsClosingEdge(t *testing.T) {
	g := rag.New(
		[]rag.Node{
			{ID: "P1", Kind: rag.KindProcess},
			{ID: "R1", Kind: rag.KindResource},
		},
		[]rag.Edge{
			{Source: "P1", Target: "R1"},
			{Source: "R1", Target: "P1"},
		},
	)
	rep := &deadlock.Report{
		IsDeadlocked:          true,
		DeadlockedProcessIDs:  []string{"P1"},
		DeadlockedResourceIDs: []string{"R1"},
		Cycles:                [][]string{{"P1", "R1"}},
	}
	dot := ToDOT(g, rep, Options{})
	for _, edge := range []string{`"P1" -> "R1"`, `"R1" -> "P1"`} {
		if line := lineFor(dot, edge); !strings.Contains(line, "penwidth=2.5") {
			t.Errorf("edge %s not bold: %s", edge, line)
		}
	}
}
