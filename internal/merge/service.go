package merge

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/sfmerge/internal/filesystem"
	"github.com/temirov/sfmerge/internal/labels"
	"github.com/temirov/sfmerge/internal/objects"
	"github.com/temirov/sfmerge/internal/project"
)

const (
	defaultOutputDirectoryNameConstant     = "default"
	objectsOutputDirectoryNameConstant     = "objects"
	labelsOutputDirectoryNameConstant      = "labels"
	startDirectoryFieldNameConstant        = "start_directory"
	requiredValueMessageConstant           = "value required"
	projectContextErrorTemplateConstant    = "project context unavailable: %w"
	outputPreparationErrorTemplateConstant = "unable to prepare default output: %w"
	objectsMergeErrorTemplateConstant      = "objects merge failed: %w"
	labelsMergeErrorTemplateConstant       = "labels merge failed: %w"
	reportErrorTemplateConstant            = "merge report failed: %w"
	logMessageProjectResolvedConstant      = "Project resolved"
	logMessageOutputPreparedConstant       = "Default output prepared"
	logMessageMergeCompletedConstant       = "Merge completed"
	logMessageReportWrittenConstant        = "Merge report written"
	logFieldProjectRootConstant            = "project_root"
	logFieldProjectNameConstant            = "project_name"
	logFieldPackageDirectoriesConstant     = "package_directories"
	logFieldOutputRootConstant             = "output_root"
	logFieldMergedPackagesConstant         = "merged_packages"
	logFieldLabelCountConstant             = "labels"
	logFieldDroppedLabelCountConstant      = "dropped_labels"
	logFieldReportPathConstant             = "report_path"
	invalidInputErrorTemplateConstant      = "%s: %s"
)

// InvalidInputError describes merge option validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// RootResolver locates the project root from a starting directory.
type RootResolver interface {
	Resolve(startDirectory string) (string, error)
}

// ManifestLoader reads the project manifest.
type ManifestLoader interface {
	Load(projectRoot string) (project.Manifest, error)
}

// OutputPreparer clears and recreates the default output tree.
type OutputPreparer interface {
	RemoveTree(path string) error
	EnsureDirectories(paths ...string) error
}

// ObjectsMerger merges package object folders.
type ObjectsMerger interface {
	Merge(executionContext context.Context, options objects.MergeOptions) (objects.MergeResult, error)
}

// LabelsMerger merges custom label fragments.
type LabelsMerger interface {
	Merge(executionContext context.Context, options labels.MergeOptions) (labels.MergeResult, error)
}

// ProgressReporter receives human-readable progress notifications.
type ProgressReporter interface {
	ProjectResolved(projectRoot string, packageCount int)
	OutputPrepared(outputRoot string)
	ObjectsMerged(result objects.MergeResult)
	LabelsMerged(result labels.MergeResult)
	ReportWritten(reportPath string)
}

// ServiceDependencies describes collaborators for the merge workflow.
type ServiceDependencies struct {
	Logger         *zap.Logger
	FileSystem     afero.Fs
	Reporter       ProgressReporter
	RootResolver   RootResolver
	ManifestLoader ManifestLoader
	OutputPreparer OutputPreparer
	ObjectsMerger  ObjectsMerger
	LabelsMerger   LabelsMerger
	ReportWriter   *ReportWriter
}

// Options configures one merge run.
type Options struct {
	StartDirectory     string
	DedupScope         labels.DedupScope
	LabelFileSuffix    string
	IgnoredDirectories []string
	ReportPath         string
	ConfigurationFile  string
}

// Result captures the outcome of a merge run.
type Result struct {
	ProjectRoot string
	Manifest    project.Manifest
	Objects     objects.MergeResult
	Labels      labels.MergeResult
	ReportPath  string
	// ConfigurationFile is the configuration file the run was started with, if any.
	ConfigurationFile string
}

// Service orchestrates the objects and labels merges for a project.
type Service struct {
	logger         *zap.Logger
	reporter       ProgressReporter
	rootResolver   RootResolver
	manifestLoader ManifestLoader
	outputPreparer OutputPreparer
	objectsMerger  ObjectsMerger
	labelsMerger   LabelsMerger
	reportWriter   *ReportWriter
}

// NewService constructs a Service, filling missing collaborators with filesystem-backed defaults.
func NewService(dependencies ServiceDependencies) *Service {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}

	service := &Service{
		logger:         logger,
		reporter:       dependencies.Reporter,
		rootResolver:   dependencies.RootResolver,
		manifestLoader: dependencies.ManifestLoader,
		outputPreparer: dependencies.OutputPreparer,
		objectsMerger:  dependencies.ObjectsMerger,
		labelsMerger:   dependencies.LabelsMerger,
		reportWriter:   dependencies.ReportWriter,
	}

	if service.rootResolver == nil {
		service.rootResolver = project.NewRootResolver(fileSystem)
	}
	if service.manifestLoader == nil {
		service.manifestLoader = project.NewManifestLoader(fileSystem)
	}
	if service.outputPreparer == nil {
		service.outputPreparer = filesystem.NewTreeManager(fileSystem)
	}
	if service.objectsMerger == nil {
		service.objectsMerger = objects.NewService(objects.ServiceDependencies{Logger: logger, FileSystem: fileSystem})
	}
	if service.labelsMerger == nil {
		service.labelsMerger = labels.NewService(logger, fileSystem, nil)
	}
	if service.reportWriter == nil {
		service.reportWriter = NewReportWriter(fileSystem)
	}

	return service
}

// Execute resolves the project, rebuilds the default output, merges objects then labels,
// and writes the report when one is requested.
func (service *Service) Execute(executionContext context.Context, options Options) (Result, error) {
	startDirectory := strings.TrimSpace(options.StartDirectory)
	if len(startDirectory) == 0 {
		return Result{}, InvalidInputError{FieldName: startDirectoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	projectRoot, resolveError := service.rootResolver.Resolve(startDirectory)
	if resolveError != nil {
		return Result{}, fmt.Errorf(projectContextErrorTemplateConstant, resolveError)
	}

	manifest, manifestError := service.manifestLoader.Load(projectRoot)
	if manifestError != nil {
		return Result{}, fmt.Errorf(projectContextErrorTemplateConstant, manifestError)
	}

	result := Result{ProjectRoot: projectRoot, Manifest: manifest, ConfigurationFile: options.ConfigurationFile}
	service.logger.Info(
		logMessageProjectResolvedConstant,
		zap.String(logFieldProjectRootConstant, projectRoot),
		zap.String(logFieldProjectNameConstant, manifest.Name),
		zap.Int(logFieldPackageDirectoriesConstant, len(manifest.PackageDirectories)),
	)
	if service.reporter != nil {
		service.reporter.ProjectResolved(projectRoot, len(manifest.PackageDirectories))
	}

	outputRoot := filepath.Join(projectRoot, defaultOutputDirectoryNameConstant)
	objectsOutputDirectory := filepath.Join(outputRoot, objectsOutputDirectoryNameConstant)
	labelsOutputDirectory := filepath.Join(outputRoot, labelsOutputDirectoryNameConstant)

	if removeError := service.outputPreparer.RemoveTree(outputRoot); removeError != nil {
		return result, fmt.Errorf(outputPreparationErrorTemplateConstant, removeError)
	}
	if ensureError := service.outputPreparer.EnsureDirectories(objectsOutputDirectory, labelsOutputDirectory); ensureError != nil {
		return result, fmt.Errorf(outputPreparationErrorTemplateConstant, ensureError)
	}
	service.logger.Debug(logMessageOutputPreparedConstant, zap.String(logFieldOutputRootConstant, outputRoot))
	if service.reporter != nil {
		service.reporter.OutputPrepared(outputRoot)
	}

	objectsResult, objectsError := service.objectsMerger.Merge(executionContext, objects.MergeOptions{
		ProjectRoot:        projectRoot,
		PackageDirectories: manifest.PackageDirectories,
		OutputDirectory:    objectsOutputDirectory,
	})
	result.Objects = objectsResult
	if objectsError != nil {
		return result, fmt.Errorf(objectsMergeErrorTemplateConstant, objectsError)
	}
	if service.reporter != nil {
		service.reporter.ObjectsMerged(objectsResult)
	}

	if contextError := executionContext.Err(); contextError != nil {
		return result, contextError
	}

	labelsResult, labelsError := service.labelsMerger.Merge(executionContext, labels.MergeOptions{
		ProjectRoot:           projectRoot,
		OutputPath:            filepath.Join(labelsOutputDirectory, labels.OutputFileName),
		DedupScope:            options.DedupScope,
		FileSuffix:            options.LabelFileSuffix,
		IgnoredDirectoryNames: options.IgnoredDirectories,
		ExcludedPaths:         []string{outputRoot},
	})
	result.Labels = labelsResult
	if labelsError != nil {
		return result, fmt.Errorf(labelsMergeErrorTemplateConstant, labelsError)
	}
	if service.reporter != nil {
		service.reporter.LabelsMerged(labelsResult)
	}

	service.logger.Info(
		logMessageMergeCompletedConstant,
		zap.String(logFieldProjectRootConstant, projectRoot),
		zap.Int(logFieldMergedPackagesConstant, objectsResult.MergedPackageCount()),
		zap.Int(logFieldLabelCountConstant, len(labelsResult.Labels)),
		zap.Int(logFieldDroppedLabelCountConstant, len(labelsResult.Dropped)),
	)

	reportPath := strings.TrimSpace(options.ReportPath)
	if len(reportPath) == 0 {
		return result, nil
	}
	if !filepath.IsAbs(reportPath) {
		reportPath = filepath.Join(projectRoot, reportPath)
	}
	if writeError := service.reportWriter.Write(reportPath, BuildReport(result)); writeError != nil {
		return result, fmt.Errorf(reportErrorTemplateConstant, writeError)
	}
	result.ReportPath = reportPath
	service.logger.Info(logMessageReportWrittenConstant, zap.String(logFieldReportPathConstant, reportPath))
	if service.reporter != nil {
		service.reporter.ReportWritten(reportPath)
	}

	return result, nil
}
