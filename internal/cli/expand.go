package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hydro-project/flowviz/pkg/engine"
	"github.com/hydro-project/flowviz/pkg/model"
)

// expandCommand creates the expand command for revealing a container's
// direct children again.
func (c *CLI) expandCommand() *cobra.Command {
	var (
		output    string
		recursive bool
	)

	cmd := &cobra.Command{
		Use:   "expand <doc.json> <container-id>",
		Short: "Expand a container, revealing its children",
		Long: `Expand a container in a graph document.

Loads a document, expands the named container (restoring the edges
aggregated into it at collapse time), and writes the resulting document
back out. Use --recursive to expand every collapsed descendant too.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExpand(args[0], args[1], output, recursive)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "expand every collapsed descendant")
	return cmd
}

func (c *CLI) runExpand(input, containerID, output string, recursive bool) error {
	s, err := model.ReadJSONFile(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}

	if recursive {
		err = engine.ExpandRecursive(s, containerID)
	} else {
		err = engine.Expand(s, containerID)
	}
	if err != nil {
		return fmt.Errorf("expand %s: %w", containerID, err)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = input
	}
	if err := model.WriteJSONFile(outputPath, s); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Expanded %s", containerID)
	printFile(outputPath)
	printStats(s.NodeCount(), s.EdgeCount(), false)
	return nil
}
