package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

// ReportStore persists and retrieves batch reports.
type ReportStore interface {
	SaveReport(path m.Path, report *m.BatchReport) error
	LoadReport(path m.Path) (*m.BatchReport, error)
}

// LocalReportStore stores reports as YAML files on the local disk.
type LocalReportStore struct {
	fs SourceFSAdapter
}

// NewReportStore constructs a ReportStore writing through fs.
func NewReportStore(fs SourceFSAdapter) *LocalReportStore {
	if fs == nil {
		fs = NewLocalSourceFSAdapter()
	}

	return &LocalReportStore{fs: fs}
}

// SaveReport encodes report as YAML and writes it to path, creating the
// parent directory when needed.
func (rs *LocalReportStore) SaveReport(path m.Path, report *m.BatchReport) error {
	if path == "" {
		return errors.New("report path is required")
	}

	if report == nil {
		return errors.New("report is nil")
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	if err := rs.fs.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}

	return nil
}

// LoadReport reads a report previously written by SaveReport.
func (rs *LocalReportStore) LoadReport(path m.Path) (*m.BatchReport, error) {
	data, err := rs.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}

	report := m.NewBatchReport("")
	if err := yaml.Unmarshal(data, report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}

	return report, nil
}
