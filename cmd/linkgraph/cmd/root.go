package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"

	"github.com/kittclouds/linkgraph/internal/config"
	"github.com/kittclouds/linkgraph/internal/corpus"
	"github.com/kittclouds/linkgraph/internal/store"
	"github.com/kittclouds/linkgraph/pkg/backlinks"
)

// app is the state shared by every subcommand of one invocation
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config

	db   store.SnapshotStore
	repo *store.IndexRepository
}

func logger() commonlog.Logger {
	return commonlog.GetLogger("linkgraph.cli")
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "linkgraph",
		Short: "Backlink index over a tree of notes",
		Long: `linkgraph indexes a directory of stored notes (HTML or tabbed JSON) and
answers questions about the wiki-links between them: backlinks, outgoing
links, unlinked mentions, orphans and the most linked notes.

A note's id is its path relative to --dir without the extension; its title
is the file name without the extension. With --db the index is kept in a
SQLite database between runs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip initialization for help commands
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default .linkgraph.yaml in the working directory)")
	flags.String(config.KeyDir, config.DefaultDir, "root directory of the notes")
	flags.String(config.KeyDB, "", "SQLite database holding the index snapshot")
	flags.Int(config.KeyContextWindow, backlinks.DefaultConfig().ContextWindow, "context snippet size in bytes")
	flags.CountP(config.KeyVerbose, "v", "log verbosity (repeat for more)")

	rootCmd.AddCommand(
		newIndexCmd(a),
		newBacklinksCmd(a),
		newOutgoingCmd(a),
		newMentionsCmd(a),
		newOrphansCmd(a),
		newTopCmd(a),
		newResolveCmd(a),
		newGraphCmd(a),
		newSuggestCmd(a),
		newCheckCmd(a),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	if err := config.ReadFile(a.v, a.cfgFile); err != nil {
		return err
	}
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	commonlog.Configure(cfg.Verbose, nil)

	if cfg.DB != "" {
		db, err := store.NewSQLiteStoreWithDSN("file:" + cfg.DB)
		if err != nil {
			return err
		}
		a.db = db
		a.repo = store.NewIndexRepository(db)
	}
	return nil
}

// index returns the stored index when --db holds one, otherwise scans --dir.
// A fresh scan is saved back to --db.
func (a *app) index(fresh bool) (*backlinks.Index, error) {
	idx := backlinks.New(backlinks.Config{ContextWindow: a.cfg.ContextWindow})

	if a.repo != nil && !fresh {
		ok, err := a.repo.Load(idx)
		if err != nil {
			return nil, err
		}
		if ok {
			return idx, nil
		}
	}

	fsys, err := corpus.OpenDir(a.cfg.Dir)
	if err != nil {
		return nil, err
	}
	docs, err := corpus.Load(fsys, ".")
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		idx.AddDocument(doc.ID, doc.Title, doc.Content)
	}
	logger().Infof("scanned %s: %d documents", a.cfg.Dir, len(docs))

	if a.repo != nil {
		if err := a.repo.Save(idx); err != nil {
			return nil, err
		}
	}
	return idx, nil
}
