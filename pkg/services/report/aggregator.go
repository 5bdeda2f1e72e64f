package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/de-tools/license-atlas/pkg/models/domain"
)

const DefaultSummaryDelimiter = "; "

// UserAssignments pairs a user with their classified assignments; the
// cross-user rollups reduce over a slice of these.
type UserAssignments struct {
	UPN         string
	DisplayName string
	Assignments []domain.ClassifiedAssignment
}

// Summarize reduces one user's classified assignments into a report row.
func Summarize(upn, displayName string, classified []domain.ClassifiedAssignment, delimiter string) domain.UserLicenseSummary {
	if delimiter == "" {
		delimiter = DefaultSummaryDelimiter
	}

	summary := domain.UserLicenseSummary{
		UPN:         upn,
		DisplayName: displayName,
		Total:       len(classified),
	}

	parts := make([]string, 0, len(classified))
	for _, c := range classified {
		if c.Source.Kind == domain.SourceGroup {
			summary.Group++
		} else {
			summary.Direct++
		}
		part := fmt.Sprintf("%s [%s]", c.SKUName, c.Source.Label())
		// state and error are set only in all-states mode
		if c.State != "" {
			if c.Error != "" {
				part = fmt.Sprintf("%s (%s, error: %s)", part, c.State, c.Error)
			} else {
				part = fmt.Sprintf("%s (%s)", part, c.State)
			}
		}
		parts = append(parts, part)
	}
	summary.Summary = strings.Join(parts, delimiter)

	return summary
}

// ErrorSummary builds the row for a user whose fetch or classification
// failed. The row counts toward the processed total but carries no licenses.
func ErrorSummary(upn, message string) domain.UserLicenseSummary {
	return domain.UserLicenseSummary{
		UPN:   upn,
		Error: message,
	}
}

// CountFailed reports how many rows in a batch are error-marked.
func CountFailed(summaries []domain.UserLicenseSummary) int {
	failed := 0
	for _, s := range summaries {
		if s.Error != "" {
			failed++
		}
	}
	return failed
}

// GroupUsage inverts per-user assignment lists into a per-group view: for
// every license-assigning group, the distinct users inheriting through it.
// Groups are ordered by user count descending, name ascending on ties.
func GroupUsage(users []UserAssignments) []domain.GroupUsageSummary {
	byGroup := make(map[string]map[string]struct{})
	for _, user := range users {
		for _, c := range user.Assignments {
			if c.Source.Kind != domain.SourceGroup {
				continue
			}
			members, ok := byGroup[c.Source.GroupName]
			if !ok {
				members = make(map[string]struct{})
				byGroup[c.Source.GroupName] = members
			}
			members[user.UPN] = struct{}{}
		}
	}

	summaries := make([]domain.GroupUsageSummary, 0, len(byGroup))
	for name, members := range byGroup {
		upns := make([]string, 0, len(members))
		for upn := range members {
			upns = append(upns, upn)
		}
		sort.Strings(upns)
		summaries = append(summaries, domain.GroupUsageSummary{
			GroupName:  name,
			UserCount:  len(upns),
			MemberUPNs: upns,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].UserCount != summaries[j].UserCount {
			return summaries[i].UserCount > summaries[j].UserCount
		}
		return summaries[i].GroupName < summaries[j].GroupName
	})

	return summaries
}

// UserSKUs pairs a user with the set of SKU ids they currently hold.
type UserSKUs struct {
	UPN    string
	SKUIDs []string
}

// ClassifyHolder places one user into exactly one comparison bucket for the
// (skuA, skuB) pair.
func ClassifyHolder(held []string, skuA, skuB string) domain.ComparisonBucket {
	hasA, hasB := false, false
	for _, id := range held {
		switch id {
		case skuA:
			hasA = true
		case skuB:
			hasB = true
		}
	}

	switch {
	case hasA && hasB:
		return domain.BucketBoth
	case hasA:
		return domain.BucketOnlyA
	case hasB:
		return domain.BucketOnlyB
	default:
		return domain.BucketNeither
	}
}

// CompareSKUs partitions the successfully processed population into the four
// holder buckets; the bucket sizes sum to len(users). Callers fold failed
// users in afterwards via AddFailures.
func CompareSKUs(users []UserSKUs, skuA, skuB string) domain.SKUComparison {
	comparison := domain.SKUComparison{
		SKUA:  skuA,
		SKUB:  skuB,
		Total: len(users),
	}

	for _, user := range users {
		switch ClassifyHolder(user.SKUIDs, skuA, skuB) {
		case domain.BucketBoth:
			comparison.Both++
		case domain.BucketOnlyA:
			comparison.OnlyA++
		case domain.BucketOnlyB:
			comparison.OnlyB++
		default:
			comparison.Neither++
		}
	}

	return comparison
}

// AddFailures folds error-marked users into a comparison: they count toward
// the processed total but fall in no bucket.
func AddFailures(comparison domain.SKUComparison, failed int) domain.SKUComparison {
	comparison.Failed += failed
	comparison.Total += failed
	return comparison
}

// Percent guards the zero-population case: every share of an empty total
// is 0, never NaN.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// BuildUserReport assembles the console report for a batch of per-user rows.
func BuildUserReport(title string, summaries []domain.UserLicenseSummary) *domain.Report {
	var direct, group, failed int
	for _, s := range summaries {
		direct += s.Direct
		group += s.Group
		if s.Error != "" {
			failed++
		}
	}

	details := make([]domain.ReportDetail, 0, len(summaries))
	for _, s := range summaries {
		detail := domain.ReportDetail{
			Name:        s.UPN,
			Value:       fmt.Sprintf("%d licenses (%d direct, %d group)", s.Total, s.Direct, s.Group),
			Description: s.Summary,
		}
		if s.Error != "" {
			detail.Value = "ERROR"
			detail.Description = s.Error
		}
		details = append(details, detail)
	}

	return &domain.Report{
		Title:       title,
		GeneratedAt: time.Now().UTC(),
		Sections: []domain.ReportSection{
			{
				Title: "Users",
				Summary: map[string]interface{}{
					"users_processed": len(summaries),
					"users_failed":    failed,
					"direct_licenses": direct,
					"group_licenses":  group,
				},
				Details: details,
			},
		},
	}
}

// BuildComparisonReport assembles the console report for a SKU comparison.
func BuildComparisonReport(comparison domain.SKUComparison) *domain.Report {
	bucket := func(name string, count int) domain.ReportDetail {
		return domain.ReportDetail{
			Name:        name,
			Value:       count,
			Description: fmt.Sprintf("%.1f%% of population", Percent(count, comparison.Total)),
		}
	}

	return &domain.Report{
		Title:       fmt.Sprintf("License comparison: %s vs %s", comparison.SKUA, comparison.SKUB),
		GeneratedAt: time.Now().UTC(),
		Sections: []domain.ReportSection{
			{
				Title: "Buckets",
				Summary: map[string]interface{}{
					"total_users":  comparison.Total,
					"failed_users": comparison.Failed,
				},
				Details: []domain.ReportDetail{
					bucket(fmt.Sprintf("Only %s", comparison.SKUA), comparison.OnlyA),
					bucket(fmt.Sprintf("Only %s", comparison.SKUB), comparison.OnlyB),
					bucket("Both", comparison.Both),
					bucket("Neither", comparison.Neither),
				},
			},
		},
	}
}
