package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/license-atlas/pkg/services/snapshot"
	"github.com/de-tools/license-atlas/pkg/store/sqlite"
	"github.com/de-tools/license-atlas/pkg/store/sqlite/membership"
)

type SnapshotCmd struct {
	profile    string
	configPath string
	dbPath     string
	groups     []string
	attribute  string
	cap        int
	deps       Dependencies
}

func NewSnapshotCmd(deps Dependencies) *cobra.Command {
	sc := &SnapshotCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Copy group-membership lists into the local snapshot database",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.profile, "profile", "", "Azure config profile")
	cmd.Flags().StringVar(&sc.configPath, "config", "", "Path to the report configuration file")
	cmd.Flags().StringVar(&sc.dbPath, "db", "license-atlas.db", "Path to the sqlite snapshot database")
	cmd.Flags().StringSliceVar(&sc.groups, "group", nil, "Group id to snapshot (repeatable)")
	cmd.Flags().StringVar(&sc.attribute, "attr", "", "Extension attribute to copy per member")
	cmd.Flags().IntVar(&sc.cap, "cap", 0, "Maximum snapshot rows per user, 0 for unlimited")

	return cmd
}

func (sc *SnapshotCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadReportConfig(sc.configPath)
	if err != nil {
		return err
	}
	if len(sc.groups) == 0 {
		sc.groups = cfg.SnapshotGroups
	}
	if sc.attribute == "" {
		sc.attribute = cfg.ExtensionAttribute
	}
	if sc.cap == 0 {
		sc.cap = cfg.MaxRowsPerUser
	}

	directory, err := sc.deps.Directory(ctx, sc.profile)
	if err != nil {
		return fmt.Errorf("failed to create directory client: %w", err)
	}

	db, err := sqlite.NewDB(sqlite.Settings{DbPath: sc.dbPath})
	if err != nil {
		return fmt.Errorf("failed to open snapshot database: %w", err)
	}
	defer db.Close()

	membershipStore, err := membership.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create membership store: %w", err)
	}

	ingestor := snapshot.NewIngestor(directory, membershipStore, snapshot.Config{
		ExtensionAttribute: sc.attribute,
		MaxRowsPerUser:     sc.cap,
	})

	stats, err := ingestor.Run(ctx, sc.groups)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot complete: %d inserted, %d skipped, %d failed\n",
		stats.Inserted, stats.Skipped, stats.Failed)
	return nil
}
