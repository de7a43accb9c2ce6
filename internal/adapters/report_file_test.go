package adapters

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"repolint/internal/types"
)

func TestReportFileAdapterWriteRead(t *testing.T) {
	report := types.LintReport{
		GeneratedAt: "2024-06-15T10:30:00Z",
		Host:        "builder",
		Sections: []types.ReportSection{
			{
				Rule:   types.RuleInfo{ID: "recipe_missing_entries", Header: "Recipes without database entries", Kind: types.EntityKindRecipe},
				Issues: []string{"core/ab (missing: x86_64/b)"},
			},
		},
	}
	path := filepath.Join(t.TempDir(), "reports", "lint.yaml")
	adapter := NewReportFileAdapter()
	require.NoError(t, adapter.WriteReport(context.Background(), path, report))

	got, err := adapter.ReadReport(path)
	require.NoError(t, err)
	if diff := cmp.Diff(report, got); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestReportFileAdapterErrors(t *testing.T) {
	adapter := NewReportFileAdapter()
	require.Error(t, adapter.WriteReport(context.Background(), "", types.LintReport{}))

	_, err := adapter.ReadReport(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
