package deadlock

// frame is one level of the explicit DFS stack: the node being expanded and
// the position of the next neighbor to examine.
type frame struct {
	node string
	next int
}

// FindCycles returns circular waits among the deadlocked processes and the
// resources they hold or request.
//
// A depth-first search starts from each deadlocked process not yet visited,
// following only adjacency edges that stay inside that set. Meeting a node
// that is still on the current descent closes a cycle: the path from that
// node to the top of the stack is recorded and the whole descent unwinds.
// The result therefore holds at most one cycle per entry point and is not an
// enumeration of all simple cycles.
func FindCycles(m *Model, procs, resources []string) [][]string {
	cycles := [][]string{}
	if len(procs) == 0 {
		return cycles
	}

	inSet := make(map[string]bool, len(procs)+len(resources))
	for _, id := range procs {
		inSet[id] = true
	}
	for _, id := range resources {
		inSet[id] = true
	}

	visited := make(map[string]bool)
	for _, start := range procs {
		if visited[start] {
			continue
		}
		if c := descend(m.Adjacency, start, inSet, visited); c != nil {
			cycles = append(cycles, c)
		}
	}
	return cycles
}

// descend runs one DFS from start and returns the first cycle closed on it.
// Nodes it reaches stay marked in visited.
func descend(adj map[string][]string, start string, inSet, visited map[string]bool) []string {
	onStack := map[string]bool{start: true}
	stack := []frame{{node: start}}
	visited[start] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		neighbors := adj[top.node]
		if top.next >= len(neighbors) {
			delete(onStack, top.node)
			stack = stack[:len(stack)-1]
			continue
		}
		next := neighbors[top.next]
		top.next++

		if !inSet[next] {
			continue
		}
		if !visited[next] {
			visited[next] = true
			onStack[next] = true
			stack = append(stack, frame{node: next})
			continue
		}
		if onStack[next] {
			return cycleFrom(stack, next)
		}
	}
	return nil
}

// cycleFrom extracts the stack segment starting at the first frame for node.
func cycleFrom(stack []frame, node string) []string {
	for i, f := range stack {
		if f.node != node {
			continue
		}
		cycle := make([]string, 0, len(stack)-i)
		for _, g := range stack[i:] {
			cycle = append(cycle, g.node)
		}
		return cycle
	}
	return nil
}
