package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/license-atlas/pkg/adapters"
	"github.com/de-tools/license-atlas/pkg/export"
	"github.com/de-tools/license-atlas/pkg/services/classify"
	"github.com/de-tools/license-atlas/pkg/services/report"
)

var userReportColumns = []string{
	"UserPrincipalName", "DisplayName", "TotalLicenses",
	"DirectLicenses", "GroupLicenses", "Licenses", "Error",
}

type UsersCmd struct {
	profile    string
	configPath string
	inputPath  string
	outputPath string
	allStates  bool
	s3Bucket   string
	s3Prefix   string
	deps       Dependencies
}

func NewUsersCmd(deps Dependencies) *cobra.Command {
	uc := &UsersCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "users [identifiers...]",
		Short: "Report license assignments per user, split by direct vs group source",
		RunE:  uc.run,
	}

	cmd.Flags().StringVar(&uc.profile, "profile", "", "Azure config profile")
	cmd.Flags().StringVar(&uc.configPath, "config", "", "Path to the report configuration file")
	cmd.Flags().StringVar(&uc.inputPath, "input", "", "File with one user identifier per line")
	cmd.Flags().StringVar(&uc.outputPath, "out", "", "CSV output path (default: user_licenses_<timestamp>.csv)")
	cmd.Flags().BoolVar(&uc.allStates, "all-states", false, "Include pending and errored assignments")
	cmd.Flags().StringVar(&uc.s3Bucket, "s3-bucket", "", "Upload the CSV to this S3 bucket instead of writing locally")
	cmd.Flags().StringVar(&uc.s3Prefix, "s3-prefix", "", "Key prefix for the S3 upload")

	return cmd
}

func (uc *UsersCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadReportConfig(uc.configPath)
	if err != nil {
		return err
	}
	if uc.allStates {
		cfg.IncludeAllStates = true
	}

	identifiers, err := loadIdentifiers(uc.inputPath, args)
	if err != nil {
		return err
	}

	directory, err := uc.deps.Directory(ctx, uc.profile)
	if err != nil {
		return fmt.Errorf("failed to create directory client: %w", err)
	}

	skuIndex, err := classify.BuildSKUIndex(ctx, directory)
	if err != nil {
		return err
	}

	classifier := classify.NewClassifier(skuIndex, newGroupCache(directory), classify.Options{
		TargetSKUs:       cfg.TargetSKUs,
		IncludeAllStates: cfg.IncludeAllStates,
	})
	batch := report.NewBatch(directory, classifier, cfg.SummaryDelimiter)

	summaries, _ := batch.ProcessUsers(ctx, identifiers)

	rows := make([]export.Record, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, adapters.MapSummaryToRow(summary))
	}

	sink, err := uc.sink(ctx)
	if err != nil {
		return err
	}
	if err := sink.Write(ctx, "user_licenses", userReportColumns, rows); err != nil {
		return err
	}

	return uc.deps.Reporter.Handle(report.BuildUserReport("User license report", summaries))
}

func (uc *UsersCmd) sink(ctx context.Context) (export.Sink, error) {
	if uc.s3Bucket != "" {
		return export.NewS3Sink(ctx, uc.s3Bucket, uc.s3Prefix)
	}
	return &export.CSVSink{Path: uc.outputPath}, nil
}
