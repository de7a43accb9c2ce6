package ports

import (
	"context"

	"repolint/internal/types"
)

type ReportWriterPort interface {
	WriteReport(ctx context.Context, path string, report types.LintReport) error
}
