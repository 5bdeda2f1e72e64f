package adapters

import (
	"strconv"
	"strings"

	"github.com/de-tools/license-atlas/pkg/models/api"
	"github.com/de-tools/license-atlas/pkg/models/domain"
)

func MapClassifiedToAPI(c domain.ClassifiedAssignment) api.Assignment {
	return api.Assignment{
		SKU:           c.SKUName,
		SKUID:         c.SKUID,
		Source:        string(c.Source.Kind),
		Group:         c.Source.GroupName,
		State:         c.State,
		Error:         c.Error,
		DisabledPlans: c.DisabledPlanIDs,
	}
}

func MapUserLicensesToAPI(upn, displayName string, classified []domain.ClassifiedAssignment) api.UserLicenses {
	out := api.UserLicenses{
		UPN:         upn,
		DisplayName: displayName,
		Assignments: make([]api.Assignment, 0, len(classified)),
	}
	for _, c := range classified {
		if c.Source.Kind == domain.SourceGroup {
			out.Group++
		} else {
			out.Direct++
		}
		out.Assignments = append(out.Assignments, MapClassifiedToAPI(c))
	}
	return out
}

func MapGroupUsageToAPI(g domain.GroupUsageSummary) api.GroupUsage {
	return api.GroupUsage{
		Group:   g.GroupName,
		Users:   g.UserCount,
		Members: g.MemberUPNs,
	}
}

func MapComparisonToAPI(c domain.SKUComparison) api.SKUComparison {
	return api.SKUComparison{
		SKUA:    c.SKUA,
		SKUB:    c.SKUB,
		Total:   c.Total,
		Failed:  c.Failed,
		OnlyA:   c.OnlyA,
		OnlyB:   c.OnlyB,
		Both:    c.Both,
		Neither: c.Neither,
	}
}

// MapSummaryToRow flattens a per-user summary into an export record.
func MapSummaryToRow(s domain.UserLicenseSummary) map[string]string {
	return map[string]string{
		"UserPrincipalName": s.UPN,
		"DisplayName":       s.DisplayName,
		"TotalLicenses":     strconv.Itoa(s.Total),
		"DirectLicenses":    strconv.Itoa(s.Direct),
		"GroupLicenses":     strconv.Itoa(s.Group),
		"Licenses":          s.Summary,
		"Error":             s.Error,
	}
}

// MapGroupUsageToRow flattens a group-usage summary into an export record.
func MapGroupUsageToRow(g domain.GroupUsageSummary) map[string]string {
	return map[string]string{
		"GroupName": g.GroupName,
		"UserCount": strconv.Itoa(g.UserCount),
		"Members":   strings.Join(g.MemberUPNs, "; "),
	}
}
