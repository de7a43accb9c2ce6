package types

// RuleInfo describes a registered lint rule.
type RuleInfo struct {
	ID     string     `yaml:"id"`
	Header string     `yaml:"header"`
	Kind   EntityKind `yaml:"kind"`
}

// ReportSection is the serialisable form of one rule's issues.
type ReportSection struct {
	Rule   RuleInfo `yaml:"rule"`
	Issues []string `yaml:"issues"`
}

// LintReport is the serialisable result of a lint run.
type LintReport struct {
	GeneratedAt string          `yaml:"generated_at"`
	Host        string          `yaml:"host,omitempty"`
	Sections    []ReportSection `yaml:"sections"`
}
