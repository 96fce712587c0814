package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/waitgraph/examples"
	"github.com/matzehuels/waitgraph/pkg/errors"
	"github.com/matzehuels/waitgraph/pkg/io"
)

var sampleFormats = []string{string(io.FormatHCL), string(io.FormatJSON)}

// sampleCommand creates the sample command.
func (c *CLI) sampleCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write the circular-wait sample graph",
		Long: `Sample writes a ready-made graph: Process A and Process B each hold one
single-instance resource and request the other's, so neither can proceed.`,
		Example: `  waitgraph sample -o circular-wait.hcl
  waitgraph sample -f json -o sample.json && waitgraph analyze sample.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormat(format, sampleFormats); err != nil {
				return err
			}
			data, err := examples.Read(examples.CircularWait, format)
			if err != nil {
				return err
			}
			return writeOrPrint(cmd, output, data)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(io.FormatHCL), "file format: hcl, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}
