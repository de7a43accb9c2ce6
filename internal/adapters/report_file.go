package adapters

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"repolint/internal/ports"
	"repolint/internal/types"
)

// ReportFileAdapter writes lint reports as YAML.
type ReportFileAdapter struct{}

func NewReportFileAdapter() ReportFileAdapter {
	return ReportFileAdapter{}
}

func (a ReportFileAdapter) WriteReport(_ context.Context, path string, report types.LintReport) error {
	if strings.TrimSpace(path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("report path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create report directory").
			WithCause(err)
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode report").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write report").
			WithCause(err)
	}
	return nil
}

// ReadReport loads a report written by WriteReport.
func (a ReportFileAdapter) ReadReport(path string) (types.LintReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.LintReport{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("report file not found").
			WithCause(err)
	}
	var report types.LintReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return types.LintReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid report format").
			WithCause(err)
	}
	return report, nil
}

var _ ports.ReportWriterPort = ReportFileAdapter{}
