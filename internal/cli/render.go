package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/waitgraph/pkg/errors"
	"github.com/matzehuels/waitgraph/pkg/io"
	"github.com/matzehuels/waitgraph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path; stdout when empty
	format   string // dot, svg or json
	detailed bool   // add pid/rid/instances to node labels
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: pipeline.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Draw a graph with its deadlock highlighted",
		Long: `Render analyzes the graph and draws it with Graphviz. Deadlocked processes
and resources are filled red and the edges of each circular wait are drawn bold.`,
		Example: `  waitgraph render scenario.hcl -o scenario.svg
  waitgraph render scenario.json -f dot | dot -Tpng > scenario.png`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeGraphFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateGraphPath(args[0], io.Extensions()); err != nil {
				return err
			}
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot, json")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show pid, rid and instance counts in labels")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts renderOpts) error {
	ctx := cmd.Context()

	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	var spinner *Spinner
	if opts.output != "" {
		spinner = newSpinner(ctx, cmd.ErrOrStderr(), "Rendering "+path)
		spinner.Start()
	}

	result, err := runner.Execute(ctx, pipeline.Options{
		Path:     path,
		Formats:  []string{opts.format},
		Detailed: opts.detailed,
	})
	if err != nil {
		if spinner != nil {
			spinner.StopWithError("Rendering %s failed", path)
		}
		return err
	}
	if spinner != nil {
		spinner.StopWithSuccess("Rendered %s as %s", path, opts.format)
	}

	return writeOrPrint(cmd, opts.output, result.Artifacts[opts.format])
}
