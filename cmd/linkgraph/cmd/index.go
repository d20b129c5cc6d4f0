package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newIndexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Scan --dir and rebuild the index",
		Long: `Scan every note under --dir and rebuild the backlink index from scratch.
With --db the result replaces the stored snapshot.

Examples:
  linkgraph index --dir ~/notes --db ~/.cache/linkgraph.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(true)
			if err != nil {
				return err
			}

			s := idx.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d documents, %d links (%d resolved, %d unresolved), %d orphans\n",
				s.Documents, s.Links, s.Resolved, s.Unresolved, s.Orphans)
			return nil
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the index is internally consistent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(false)
			if err != nil {
				return err
			}
			if err := idx.CheckConsistency(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d documents, %d links\n", idx.DocumentCount(), idx.LinkCount())

			if a.repo != nil {
				at, err := a.repo.SavedAt()
				if err != nil {
					return err
				}
				if !at.IsZero() {
					fmt.Fprintf(cmd.OutOrStdout(), "snapshot saved %s\n", at.UTC().Format(time.RFC3339))
				}
			}
			return nil
		},
	}
}
