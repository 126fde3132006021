package objects

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/sfmerge/internal/discovery"
	"github.com/temirov/sfmerge/internal/filesystem"
	"github.com/temirov/sfmerge/internal/project"
)

const (
	outputDirectoryMissingMessageConstant      = "objects output directory not provided"
	copyObjectFolderErrorTemplateConstant      = "unable to merge objects from %s: %w"
	logMessagePackageSkippedConstant           = "Package skipped"
	logMessageObjectFolderMissingConstant      = "Object folder unavailable"
	logMessageAdditionalFoldersIgnoredConstant = "Additional object folders ignored"
	logMessagePackageMergedConstant            = "Package objects merged"
	logMessageFilesOverriddenConstant          = "Object files overridden by later package"
	logFieldPackageConstant                    = "package"
	logFieldReasonConstant                     = "reason"
	logFieldObjectFolderConstant               = "object_folder"
	logFieldIgnoredFoldersConstant             = "ignored_folders"
	logFieldCopiedCountConstant                = "copied_count"
	logFieldOverriddenFilesConstant            = "overridden_files"
	logFieldIdenticalCountConstant             = "identical_count"
)

// SkipReasonDefaultOutput marks the package that is itself the merge destination.
const SkipReasonDefaultOutput = "default output package"

var errOutputDirectoryMissing = errors.New(outputDirectoryMissingMessageConstant)

// ObjectFolderLocator finds the object folder of a package directory.
type ObjectFolderLocator interface {
	Locate(packageDirectory string) (discovery.ObjectFolderLocation, error)
}

// TreeCopier copies one directory tree onto another.
type TreeCopier interface {
	CopyTree(executionContext context.Context, sourceRoot string, destinationRoot string) (filesystem.CopyResult, error)
}

// MergeOptions configures a directory merge.
type MergeOptions struct {
	ProjectRoot        string
	PackageDirectories []project.PackageDirectory
	OutputDirectory    string
}

// PackageOutcome records what a single package contributed.
type PackageOutcome struct {
	PackagePath    string
	ObjectFolder   string
	IgnoredFolders []string
	Skipped        bool
	SkipReason     string
	Copy           filesystem.CopyResult
}

// MergeResult summarizes a directory merge.
type MergeResult struct {
	OutputDirectory string
	Packages        []PackageOutcome
}

// MergedPackageCount returns the number of packages that contributed files.
func (result MergeResult) MergedPackageCount() int {
	mergedCount := 0
	for _, outcome := range result.Packages {
		if !outcome.Skipped {
			mergedCount++
		}
	}
	return mergedCount
}

// ServiceDependencies describes collaborators for the directory merge.
type ServiceDependencies struct {
	Logger     *zap.Logger
	FileSystem afero.Fs
	Locator    ObjectFolderLocator
	Copier     TreeCopier
}

// Service merges package object folders.
type Service struct {
	logger  *zap.Logger
	locator ObjectFolderLocator
	copier  TreeCopier
}

// NewService constructs a Service, defaulting missing collaborators to filesystem-backed ones.
func NewService(dependencies ServiceDependencies) *Service {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	locator := dependencies.Locator
	if locator == nil {
		locator = discovery.NewObjectFolderLocator(fileSystem)
	}
	copier := dependencies.Copier
	if copier == nil {
		copier = filesystem.NewTreeManager(fileSystem)
	}
	return &Service{logger: logger, locator: locator, copier: copier}
}

// Merge copies each non-default package's object folder into the output directory in declared order.
// Packages without a usable object folder are logged and skipped; copy failures abort the merge.
func (service *Service) Merge(executionContext context.Context, options MergeOptions) (MergeResult, error) {
	if len(options.OutputDirectory) == 0 {
		return MergeResult{}, errOutputDirectoryMissing
	}

	result := MergeResult{OutputDirectory: options.OutputDirectory}
	for _, packageDirectory := range options.PackageDirectories {
		if contextError := executionContext.Err(); contextError != nil {
			return result, contextError
		}

		outcome, mergeError := service.mergePackage(executionContext, options, packageDirectory)
		if mergeError != nil {
			return result, mergeError
		}
		result.Packages = append(result.Packages, outcome)
	}

	return result, nil
}

func (service *Service) mergePackage(executionContext context.Context, options MergeOptions, packageDirectory project.PackageDirectory) (PackageOutcome, error) {
	outcome := PackageOutcome{PackagePath: packageDirectory.Path}

	if packageDirectory.IsDefaultOutput() {
		outcome.Skipped = true
		outcome.SkipReason = SkipReasonDefaultOutput
		service.logger.Debug(
			logMessagePackageSkippedConstant,
			zap.String(logFieldPackageConstant, packageDirectory.Path),
			zap.String(logFieldReasonConstant, outcome.SkipReason),
		)
		return outcome, nil
	}

	packageRoot := packageDirectory.Path
	if !filepath.IsAbs(packageRoot) {
		packageRoot = filepath.Join(options.ProjectRoot, packageRoot)
	}

	location, locateError := service.locator.Locate(packageRoot)
	if locateError != nil {
		outcome.Skipped = true
		outcome.SkipReason = locateError.Error()
		service.logger.Warn(
			logMessageObjectFolderMissingConstant,
			zap.String(logFieldPackageConstant, packageDirectory.Path),
			zap.Error(locateError),
		)
		return outcome, nil
	}

	outcome.ObjectFolder = location.Path
	outcome.IgnoredFolders = location.IgnoredPaths
	if len(location.IgnoredPaths) > 0 {
		service.logger.Debug(
			logMessageAdditionalFoldersIgnoredConstant,
			zap.String(logFieldPackageConstant, packageDirectory.Path),
			zap.String(logFieldObjectFolderConstant, location.Path),
			zap.Strings(logFieldIgnoredFoldersConstant, location.IgnoredPaths),
		)
	}

	copyResult, copyError := service.copier.CopyTree(executionContext, location.Path, options.OutputDirectory)
	if copyError != nil {
		return outcome, fmt.Errorf(copyObjectFolderErrorTemplateConstant, location.Path, copyError)
	}
	outcome.Copy = copyResult

	if len(copyResult.OverriddenFiles) > 0 {
		service.logger.Info(
			logMessageFilesOverriddenConstant,
			zap.String(logFieldPackageConstant, packageDirectory.Path),
			zap.Strings(logFieldOverriddenFilesConstant, copyResult.OverriddenFiles),
		)
	}

	service.logger.Info(
		logMessagePackageMergedConstant,
		zap.String(logFieldPackageConstant, packageDirectory.Path),
		zap.String(logFieldObjectFolderConstant, location.Path),
		zap.Int(logFieldCopiedCountConstant, len(copyResult.CopiedFiles)),
		zap.Int(logFieldIdenticalCountConstant, len(copyResult.IdenticalFiles)),
	)

	return outcome, nil
}
