package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/license-atlas/pkg/export"
	"github.com/de-tools/license-atlas/pkg/services/classify"
	"github.com/de-tools/license-atlas/pkg/services/report"
)

var compareColumns = []string{"UserPrincipalName", "Bucket", "Error"}

type CompareCmd struct {
	profile    string
	configPath string
	inputPath  string
	outputPath string
	skuA       string
	skuB       string
	deps       Dependencies
}

func NewCompareCmd(deps Dependencies) *cobra.Command {
	cc := &CompareCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "compare [identifiers...]",
		Short: "Partition users by which of two SKUs they hold",
		RunE:  cc.run,
	}

	cmd.Flags().StringVar(&cc.profile, "profile", "", "Azure config profile")
	cmd.Flags().StringVar(&cc.configPath, "config", "", "Path to the report configuration file")
	cmd.Flags().StringVar(&cc.inputPath, "input", "", "File with one user identifier per line")
	cmd.Flags().StringVar(&cc.outputPath, "out", "", "CSV output path (default: sku_comparison_<timestamp>.csv)")
	cmd.Flags().StringVar(&cc.skuA, "sku-a", "", "First SKU part number (e.g. SPE_E5)")
	cmd.Flags().StringVar(&cc.skuB, "sku-b", "", "Second SKU part number (e.g. EMSPREMIUM)")

	return cmd
}

func (cc *CompareCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadReportConfig(cc.configPath)
	if err != nil {
		return err
	}
	if cc.skuA == "" {
		cc.skuA = cfg.CompareSKUA
	}
	if cc.skuB == "" {
		cc.skuB = cfg.CompareSKUB
	}
	if cc.skuA == "" || cc.skuB == "" {
		return fmt.Errorf("both SKUs are required: pass --sku-a and --sku-b or set them in the config")
	}

	identifiers, err := loadIdentifiers(cc.inputPath, args)
	if err != nil {
		return err
	}

	directory, err := cc.deps.Directory(ctx, cc.profile)
	if err != nil {
		return fmt.Errorf("failed to create directory client: %w", err)
	}

	// Missing reference SKUs are a setup failure, checked before any user
	// is fetched.
	skuAID, err := classify.FindSKUID(ctx, directory, cc.skuA)
	if err != nil {
		return err
	}
	skuBID, err := classify.FindSKUID(ctx, directory, cc.skuB)
	if err != nil {
		return err
	}

	skuIndex, err := classify.BuildSKUIndex(ctx, directory)
	if err != nil {
		return err
	}

	classifier := classify.NewClassifier(skuIndex, newGroupCache(directory), classify.Options{
		TargetSKUs: []string{skuAID, skuBID},
	})
	batch := report.NewBatch(directory, classifier, cfg.SummaryDelimiter)

	summaries, assignments := batch.ProcessUsers(ctx, identifiers)
	held := report.HeldSKUs(assignments)
	comparison := report.CompareSKUs(held, skuAID, skuBID)
	comparison = report.AddFailures(comparison, report.CountFailed(summaries))
	comparison.SKUA = cc.skuA
	comparison.SKUB = cc.skuB

	rows := make([]export.Record, 0, len(summaries))
	for _, user := range held {
		rows = append(rows, export.Record{
			"UserPrincipalName": user.UPN,
			"Bucket":            string(report.ClassifyHolder(user.SKUIDs, skuAID, skuBID)),
		})
	}
	for _, s := range summaries {
		if s.Error == "" {
			continue
		}
		rows = append(rows, export.Record{
			"UserPrincipalName": s.UPN,
			"Error":             s.Error,
		})
	}

	sink := &export.CSVSink{Path: cc.outputPath}
	if err := sink.Write(ctx, "sku_comparison", compareColumns, rows); err != nil {
		return err
	}

	return cc.deps.Reporter.Handle(report.BuildComparisonReport(comparison))
}
