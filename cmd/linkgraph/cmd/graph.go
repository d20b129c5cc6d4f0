package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/kittclouds/linkgraph/pkg/graph"
)

func newGraphCmd(a *app) *cobra.Command {
	var (
		center string
		depth  int
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the link graph as JSON",
		Long: `Print nodes (sized by incoming links) and resolved edges as JSON.
With --id only the neighborhood of that note is printed.

Examples:
  linkgraph graph > graph.json
  linkgraph graph --id "Index" --depth 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(false)
			if err != nil {
				return err
			}

			var data graph.Data
			if center != "" {
				data = idx.GetLocalGraph(center, depth)
			} else {
				data = idx.GetGraphData()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(data)
		},
	}
	cmd.Flags().StringVar(&center, "id", "", "only the neighborhood of this note")
	cmd.Flags().IntVar(&depth, "depth", 1, "neighborhood radius in hops")
	return cmd
}
