// Package deadlock detects deadlocks in resource-allocation graphs.
//
// # Overview
//
// Analysis runs in four pure stages over a [rag.Graph] snapshot:
//
//  1. [Parse] builds a [Model]: dense allocation and request matrices, the
//     total and available unit vectors, and an adjacency list.
//  2. [Reduce] runs graph reduction (the Banker's safety check): processes
//     whose requests fit in the available units finish and release what
//     they hold, pass after pass, until a pass makes no progress.
//  3. [FindCycles] searches the subgraph induced by the stuck processes and
//     the resources they touch for one circular wait per entry point.
//  4. [BuildReport] assembles the [Report] with a short human-readable log.
//
// [Detect] chains the stages. No stage mutates its inputs or the caller's
// graph, so independent graphs can be analyzed concurrently.
//
// # Degenerate Input
//
// The engine never fails. Edges that reference unknown nodes are dropped,
// same-kind edges only feed the adjacency list, missing or non-positive
// instance counts read as 1, and an empty graph is trivially safe. The
// available vector is not clamped: over-allocating a resource yields a
// negative count and reduction still runs to completion.
//
// # Example
//
//	g := rag.New(nodes, edges)
//	a := deadlock.Detect(g)
//	if a.Report.IsDeadlocked {
//	    fmt.Println(a.Report.Cycles)
//	}
package deadlock
