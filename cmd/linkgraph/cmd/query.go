package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBacklinksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backlinks <id>",
		Short: "List the notes linking to a note",
		Long: `List every link occurrence pointing at the note, one per line.

Examples:
  linkgraph backlinks "projects/Roadmap"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(false)
			if err != nil {
				return err
			}
			for _, b := range idx.GetBacklinks(args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", b.DocumentID, b.DocumentTitle, b.Context)
			}
			return nil
		},
	}
}

func newOutgoingCmd(a *app) *cobra.Command {
	var unresolved bool

	cmd := &cobra.Command{
		Use:   "outgoing [id]",
		Short: "List the links of a note",
		Long: `List the links a note contains and where they point.
With --unresolved and no id, list every dangling link in the index.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(false)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				if !unresolved {
					return fmt.Errorf("an id is required unless --unresolved is set")
				}
				for _, l := range idx.GetUnresolvedLinks() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", l.SourceID, l.TargetTitle)
				}
				return nil
			}

			for _, l := range idx.GetOutgoingLinks(args[0]) {
				if unresolved && l.Resolved() {
					continue
				}
				target := l.Target()
				if target == "" {
					target = "(unresolved)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", l.TargetTitle, target)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&unresolved, "unresolved", false, "only dangling links")
	return cmd
}

func newMentionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mentions <title>",
		Short: "Find plain-text mentions of a title that are not links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(false)
			if err != nil {
				return err
			}
			for _, m := range idx.GetUnlinkedMentions(args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", m.DocumentID, m.Position, m.Context)
			}
			return nil
		},
	}
}

func newSuggestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <id>",
		Short: "Suggest links for titles a note mentions without linking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(false)
			if err != nil {
				return err
			}
			for _, s := range idx.SuggestLinks(args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", s.MentionText, s.TargetID, s.Context)
			}
			return nil
		},
	}
}

func newOrphansCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "List notes with no links in or out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(false)
			if err != nil {
				return err
			}
			for _, id := range idx.GetOrphanDocuments() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newTopCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank notes by incoming links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(false)
			if err != nil {
				return err
			}
			for _, c := range idx.GetMostLinkedDocuments(limit) {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", c.Count, c.ID)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of notes to show (0 for all)")
	return cmd
}

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <text>",
		Short: "Show which note a link text resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(false)
			if err != nil {
				return err
			}
			id, ok := idx.ResolveLink(args[0])
			if !ok {
				return fmt.Errorf("no note matches %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
