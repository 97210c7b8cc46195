package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hydro-project/flowviz/pkg/engine"
	"github.com/hydro-project/flowviz/pkg/model"
)

// collapseCommand creates the collapse command for hiding a container's
// subtree behind its collapsed boundary.
func (c *CLI) collapseCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "collapse <doc.json> <container-id>",
		Short: "Collapse a container, hiding its descendants",
		Long: `Collapse a container in a graph document.

Loads a document, collapses the named container (replacing crossing edges
with aggregated hyper-edges, per the core's collapse invariants), and
writes the resulting document back out.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCollapse(args[0], args[1], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	return cmd
}

func (c *CLI) runCollapse(input, containerID, output string) error {
	s, err := model.ReadJSONFile(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}

	if err := engine.Collapse(s, containerID); err != nil {
		return fmt.Errorf("collapse %s: %w", containerID, err)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = input
	}
	if err := model.WriteJSONFile(outputPath, s); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Collapsed %s", containerID)
	printFile(outputPath)
	printStats(s.NodeCount(), s.EdgeCount(), false)
	return nil
}
