package deadlock

import "slices"

// Step records one process finishing during graph reduction.
type Step struct {
	Pass      int    `json:"pass"`
	Process   string `json:"process"`
	Available []int  `json:"available"` // available units after the release
}

// Reduction is the outcome of graph reduction over a Model.
type Reduction struct {
	// Finished is aligned with Model.Processes.
	Finished []bool `json:"finished"`
	// SafeSequence lists finished processes in finishing order.
	SafeSequence []string `json:"safeSequence"`
	// Available is the working vector when reduction stopped.
	Available []int `json:"available"`
	// Passes counts full passes over the process list, including the
	// final pass that made no progress.
	Passes int    `json:"passes"`
	Steps  []Step `json:"steps"`
}

// Reduce runs the graph-reduction safety check over m.
//
// Each pass visits unfinished processes in input order. A process whose
// every request fits in the available units finishes and returns its
// allocation at once, so a later process in the same pass may use it.
// Passes repeat until one finishes nothing. Worst case O(P^2 * R).
func Reduce(m *Model) *Reduction {
	red := &Reduction{
		Finished:     make([]bool, len(m.Processes)),
		SafeSequence: []string{},
		Available:    slices.Clone(m.Available),
		Steps:        []Step{},
	}
	if red.Available == nil {
		red.Available = []int{}
	}

	for progress := true; progress; {
		progress = false
		red.Passes++
		for p, pid := range m.Processes {
			if red.Finished[p] || !satisfiable(m.Request[p], red.Available) {
				continue
			}
			red.Finished[p] = true
			red.SafeSequence = append(red.SafeSequence, pid)
			for r, held := range m.Allocation[p] {
				red.Available[r] += held
			}
			red.Steps = append(red.Steps, Step{
				Pass:      red.Passes,
				Process:   pid,
				Available: slices.Clone(red.Available),
			})
			progress = true
		}
	}
	return red
}

func satisfiable(request, available []int) bool {
	for r, want := range request {
		if want > available[r] {
			return false
		}
	}
	return true
}

// Deadlocked returns the unfinished processes of m in input order.
func (red *Reduction) Deadlocked(m *Model) []string {
	out := []string{}
	for p, pid := range m.Processes {
		if !red.Finished[p] {
			out = append(out, pid)
		}
	}
	return out
}
