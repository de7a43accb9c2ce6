package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"repolint/internal/types"
)

// BuildReport turns check results into a report. Sections follow the
// order of infos; issue lines are sorted.
func BuildReport(infos []types.RuleInfo, results map[string][]types.CheckIssue, generatedAt time.Time, host string) types.LintReport {
	report := types.LintReport{
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Host:        host,
	}
	for _, info := range infos {
		issues, ok := results[info.ID]
		if !ok {
			continue
		}
		lines := make([]string, 0, len(issues))
		for _, issue := range issues {
			lines = append(lines, issue.String())
		}
		sort.Strings(lines)
		report.Sections = append(report.Sections, types.ReportSection{Rule: info, Issues: lines})
	}
	return report
}

// IssueCount sums the issues of every section.
func IssueCount(report types.LintReport) int {
	total := 0
	for _, section := range report.Sections {
		total += len(section.Issues)
	}
	return total
}

// FormatReport renders the long form: one header per rule with issues,
// followed by its issues indented.
func FormatReport(report types.LintReport) string {
	var b strings.Builder
	for _, section := range report.Sections {
		if len(section.Issues) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (%s): %d\n", section.Rule.Header, section.Rule.ID, len(section.Issues))
		for _, issue := range section.Issues {
			fmt.Fprintf(&b, "    %s\n", issue)
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "no issues found\n"
	}
	return b.String()
}

// FormatSummary renders one "header: count" line per rule with issues.
func FormatSummary(report types.LintReport) string {
	var b strings.Builder
	for _, section := range report.Sections {
		if len(section.Issues) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s: %d\n", section.Rule.Header, len(section.Issues))
	}
	if b.Len() == 0 {
		return "no issues found\n"
	}
	return b.String()
}
