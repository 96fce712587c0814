package deadlock

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/waitgraph/pkg/rag"
)

// Severity classifies a report log entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// LogEntry is one human-readable line of a report.
// Timestamp is in Unix milliseconds.
type LogEntry struct {
	Message   string   `json:"message" bson:"message"`
	Severity  Severity `json:"severity" bson:"severity"`
	Timestamp int64    `json:"timestamp" bson:"timestamp"`
}

// Report is the result handed back to callers.
type Report struct {
	IsDeadlocked          bool       `json:"isDeadlocked" bson:"is_deadlocked"`
	DeadlockedProcessIDs  []string   `json:"deadlockedProcessIds" bson:"deadlocked_process_ids"`
	DeadlockedResourceIDs []string   `json:"deadlockedResourceIds" bson:"deadlocked_resource_ids"`
	Cycles                [][]string `json:"cycles" bson:"cycles"`
	SafeSequence          []string   `json:"safeSequence" bson:"safe_sequence"`
	Log                   []LogEntry `json:"log" bson:"log"`
}

// ReportInput collects what BuildReport needs from the earlier stages.
type ReportInput struct {
	SafeSequence        []string
	DeadlockedProcesses []string
	DeadlockedResources []string
	Cycles              [][]string
	Nodes               []rag.Node
	Now                 time.Time
}

// BuildReport assembles a Report. Labels are resolved from in.Nodes; an
// unknown node or an empty label shows as its ID.
func BuildReport(in ReportInput) *Report {
	rep := &Report{
		IsDeadlocked:          len(in.DeadlockedProcesses) > 0,
		DeadlockedProcessIDs:  nonNil(in.DeadlockedProcesses),
		DeadlockedResourceIDs: nonNil(in.DeadlockedResources),
		Cycles:                in.Cycles,
		SafeSequence:          nonNil(in.SafeSequence),
		Log:                   []LogEntry{},
	}
	if rep.Cycles == nil {
		rep.Cycles = [][]string{}
	}

	label := rag.New(in.Nodes, nil).Labeler()
	ts := in.Now.UnixMilli()
	add := func(sev Severity, msg string) {
		rep.Log = append(rep.Log, LogEntry{Message: msg, Severity: sev, Timestamp: ts})
	}

	if rep.IsDeadlocked {
		add(SeverityError, fmt.Sprintf("Deadlock detected! Processes [%s] are stuck.",
			strings.Join(rep.DeadlockedProcessIDs, ", ")))
		if len(rep.Cycles) > 0 {
			add(SeverityInfo, "Circular wait detected: "+joinLabels(rep.Cycles[0], label))
		}
		return rep
	}

	seq := "None needed (empty)"
	if len(rep.SafeSequence) > 0 {
		seq = joinLabels(rep.SafeSequence, label)
	}
	add(SeveritySuccess, "System is safe. Safe sequence: "+seq)
	return rep
}

func joinLabels(ids []string, label func(string) string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = label(id)
	}
	return strings.Join(parts, " -> ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
