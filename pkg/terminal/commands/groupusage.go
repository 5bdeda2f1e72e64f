package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/de-tools/license-atlas/pkg/adapters"
	"github.com/de-tools/license-atlas/pkg/export"
	"github.com/de-tools/license-atlas/pkg/models/domain"
	"github.com/de-tools/license-atlas/pkg/services/classify"
	"github.com/de-tools/license-atlas/pkg/services/report"
)

var groupUsageColumns = []string{"GroupName", "UserCount", "Members"}

type GroupUsageCmd struct {
	profile    string
	configPath string
	inputPath  string
	outputPath string
	deps       Dependencies
}

func NewGroupUsageCmd(deps Dependencies) *cobra.Command {
	gc := &GroupUsageCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "group-usage [identifiers...]",
		Short: "Report which groups assign licenses and to how many users",
		RunE:  gc.run,
	}

	cmd.Flags().StringVar(&gc.profile, "profile", "", "Azure config profile")
	cmd.Flags().StringVar(&gc.configPath, "config", "", "Path to the report configuration file")
	cmd.Flags().StringVar(&gc.inputPath, "input", "", "File with one user identifier per line")
	cmd.Flags().StringVar(&gc.outputPath, "out", "", "CSV output path (default: group_usage_<timestamp>.csv)")

	return cmd
}

func (gc *GroupUsageCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadReportConfig(gc.configPath)
	if err != nil {
		return err
	}

	identifiers, err := loadIdentifiers(gc.inputPath, args)
	if err != nil {
		return err
	}

	directory, err := gc.deps.Directory(ctx, gc.profile)
	if err != nil {
		return fmt.Errorf("failed to create directory client: %w", err)
	}

	skuIndex, err := classify.BuildSKUIndex(ctx, directory)
	if err != nil {
		return err
	}

	classifier := classify.NewClassifier(skuIndex, newGroupCache(directory), classify.Options{
		TargetSKUs: cfg.TargetSKUs,
	})
	batch := report.NewBatch(directory, classifier, cfg.SummaryDelimiter)

	_, assignments := batch.ProcessUsers(ctx, identifiers)
	rollup := report.GroupUsage(assignments)

	rows := make([]export.Record, 0, len(rollup))
	details := make([]domain.ReportDetail, 0, len(rollup))
	for _, group := range rollup {
		rows = append(rows, adapters.MapGroupUsageToRow(group))
		details = append(details, domain.ReportDetail{
			Name:        group.GroupName,
			Value:       group.UserCount,
			Description: fmt.Sprintf("%.1f%% of processed users", report.Percent(group.UserCount, len(identifiers))),
		})
	}

	sink := &export.CSVSink{Path: gc.outputPath}
	if err := sink.Write(ctx, "group_usage", groupUsageColumns, rows); err != nil {
		return err
	}

	return gc.deps.Reporter.Handle(&domain.Report{
		Title:       "Group license usage",
		GeneratedAt: time.Now().UTC(),
		Sections: []domain.ReportSection{
			{
				Title: "Groups",
				Summary: map[string]interface{}{
					"groups_assigning": len(rollup),
					"users_processed":  len(identifiers),
				},
				Details: details,
			},
		},
	})
}
