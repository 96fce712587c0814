package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/waitgraph/pkg/deadlock"
	"github.com/matzehuels/waitgraph/pkg/errors"
	"github.com/matzehuels/waitgraph/pkg/io"
	"github.com/matzehuels/waitgraph/pkg/pipeline"
	"github.com/matzehuels/waitgraph/pkg/rag"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	output         string // report JSON path
	jsonOut        bool   // print report JSON to stdout instead of tables
	matrices       bool   // print allocation/request matrices
	failOnDeadlock bool   // return ErrDeadlockFound when deadlocked
	refresh        bool   // ignore cached reports
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Detect deadlocks in a resource-allocation graph",
		Long: `Analyze reads a graph file (.json, .toml, .yaml, .yml or .hcl), runs the
safety check and prints which processes are deadlocked, the circular wait
that holds them, or a safe completion order.`,
		Example: `  waitgraph analyze scenario.hcl
  waitgraph analyze scenario.json -o report.json --matrices
  waitgraph analyze scenario.yaml --fail-on-deadlock`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeGraphFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateGraphPath(args[0], io.Extensions()); err != nil {
				return err
			}
			return c.runAnalyze(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report as JSON to this file")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.matrices, "matrices", false, "print allocation and request matrices")
	cmd.Flags().BoolVar(&opts.failOnDeadlock, "fail-on-deadlock", false, "exit with status 2 if a deadlock is found")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached report exists")

	return cmd
}

func (c *CLI) runAnalyze(cmd *cobra.Command, path string, opts analyzeOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Analyzing "+path)
	spinner.Start()
	result, err := runner.Execute(ctx, pipeline.Options{Path: path, Refresh: opts.refresh})
	if err != nil {
		spinner.StopWithError("Analysis of %s failed", path)
		return err
	}
	if result.Report.IsDeadlocked {
		spinner.StopWithError("%s is deadlocked", path)
	} else {
		spinner.StopWithSuccess("%s is safe", path)
	}
	prog.done("Analysis complete")

	rep := result.Report
	out := cmd.OutOrStdout()
	if opts.jsonOut {
		if err := io.WriteReport(rep, out); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, summaryView(result.Graph, rep, result.CacheInfo.AnalyzeHit))
		if opts.matrices {
			fmt.Fprintln(out)
			fmt.Fprintln(out, matricesView(deadlock.Parse(result.Graph)))
		}
	}

	if opts.output != "" {
		if err := io.ExportReport(rep, opts.output); err != nil {
			return err
		}
		printFile(cmd.ErrOrStderr(), opts.output)
	}

	if opts.failOnDeadlock && rep.IsDeadlocked {
		return ErrDeadlockFound
	}
	return nil
}

// summaryView renders the report for the terminal: a headline, the process
// table and the report log.
func summaryView(g rag.Graph, rep *deadlock.Report, cached bool) string {
	var b strings.Builder
	label := g.Labeler()

	if rep.IsDeadlocked {
		b.WriteString(styleIconError.Render(iconError) + " " +
			StyleTitle.Render("Deadlock") + " " +
			StyleValue.Render(strings.Join(rep.DeadlockedProcessIDs, ", ")))
	} else {
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " " + StyleTitle.Render("Safe"))
	}
	b.WriteString("\n")
	b.WriteString(statsLine(g.NodeCount(), g.EdgeCount(), cached))
	b.WriteString("\n\n")

	m := deadlock.Parse(g)
	if len(m.Processes) > 0 {
		b.WriteString(processTable(m, g, rep))
		b.WriteString("\n")
	}

	if rep.IsDeadlocked && len(rep.DeadlockedResourceIDs) > 0 {
		b.WriteString(keyValue("Resources", strings.Join(rep.DeadlockedResourceIDs, ", ")))
		b.WriteString("\n")
	}
	for i, cyc := range rep.Cycles {
		parts := make([]string, len(cyc))
		for j, id := range cyc {
			parts[j] = label(id)
		}
		b.WriteString(keyValue(fmt.Sprintf("Cycle %d", i+1), strings.Join(parts, " "+iconArrow+" ")))
		b.WriteString("\n")
	}

	for _, entry := range rep.Log {
		b.WriteString(logLine(entry))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// writeOrPrint writes data to path, or to stdout when path is empty or "-".
func writeOrPrint(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(cmd.ErrOrStderr(), path)
	return nil
}
