package merge

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/temirov/sfmerge/internal/labels"
)

const (
	reportIndentConstant              = 2
	reportEncodeErrorTemplateConstant = "unable to encode merge report: %w"
	reportWriteErrorTemplateConstant  = "unable to write merge report %s: %w"
)

// Report is the YAML document describing one merge run.
type Report struct {
	ProjectRoot       string        `yaml:"project_root"`
	ProjectName       string        `yaml:"project_name,omitempty"`
	ConfigurationFile string        `yaml:"configuration_file,omitempty"`
	Objects           ObjectsReport `yaml:"objects"`
	Labels            LabelsReport  `yaml:"labels"`
}

// ObjectsReport describes the directory merge.
type ObjectsReport struct {
	OutputDirectory string          `yaml:"output_directory"`
	Packages        []PackageReport `yaml:"packages"`
}

// PackageReport describes one package directory's contribution.
type PackageReport struct {
	Path            string   `yaml:"path"`
	ObjectFolder    string   `yaml:"object_folder,omitempty"`
	Skipped         bool     `yaml:"skipped,omitempty"`
	SkipReason      string   `yaml:"skip_reason,omitempty"`
	CopiedFiles     int      `yaml:"copied_files"`
	OverriddenFiles []string `yaml:"overridden_files,omitempty"`
	IgnoredFolders  []string `yaml:"ignored_folders,omitempty"`
}

// LabelsReport describes the label merge.
type LabelsReport struct {
	OutputPath  string                `yaml:"output_path"`
	DedupScope  string                `yaml:"dedup_scope"`
	SourceFiles []string              `yaml:"source_files"`
	LabelCount  int                   `yaml:"label_count"`
	Dropped     []labels.DroppedLabel `yaml:"dropped,omitempty"`
}

// BuildReport assembles a Report from the merge results.
func BuildReport(result Result) Report {
	packageReports := make([]PackageReport, 0, len(result.Objects.Packages))
	for _, outcome := range result.Objects.Packages {
		packageReports = append(packageReports, PackageReport{
			Path:            outcome.PackagePath,
			ObjectFolder:    outcome.ObjectFolder,
			Skipped:         outcome.Skipped,
			SkipReason:      outcome.SkipReason,
			CopiedFiles:     len(outcome.Copy.CopiedFiles),
			OverriddenFiles: outcome.Copy.OverriddenFiles,
			IgnoredFolders:  outcome.IgnoredFolders,
		})
	}

	return Report{
		ProjectRoot:       result.ProjectRoot,
		ProjectName:       result.Manifest.Name,
		ConfigurationFile: result.ConfigurationFile,
		Objects: ObjectsReport{
			OutputDirectory: result.Objects.OutputDirectory,
			Packages:        packageReports,
		},
		Labels: LabelsReport{
			OutputPath:  result.Labels.OutputPath,
			DedupScope:  string(result.Labels.DedupScope),
			SourceFiles: result.Labels.SourceFiles,
			LabelCount:  len(result.Labels.Labels),
			Dropped:     result.Labels.Dropped,
		},
	}
}

// ReportWriter persists merge reports as YAML.
type ReportWriter struct {
	fileSystem afero.Fs
}

// NewReportWriter constructs a writer backed by the provided filesystem.
func NewReportWriter(fileSystem afero.Fs) *ReportWriter {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &ReportWriter{fileSystem: fileSystem}
}

// Write encodes the report to reportPath, creating parent directories as needed.
func (writer *ReportWriter) Write(reportPath string, report Report) error {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(reportIndentConstant)
	if encodeError := encoder.Encode(report); encodeError != nil {
		return fmt.Errorf(reportEncodeErrorTemplateConstant, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(reportEncodeErrorTemplateConstant, closeError)
	}

	if createError := writer.fileSystem.MkdirAll(filepath.Dir(reportPath), 0o755); createError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, reportPath, createError)
	}
	if writeError := afero.WriteFile(writer.fileSystem, reportPath, buffer.Bytes(), 0o644); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, reportPath, writeError)
	}
	return nil
}
