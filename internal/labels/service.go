package labels

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/sfmerge/internal/discovery"
)

const (
	defaultLabelFileSuffixConstant          = ".labels-meta.xml"
	outputDirectoryPermissionsConstant      = 0o755
	outputFilePermissionsConstant           = 0o644
	projectRootMissingMessageConstant       = "project root not provided"
	outputPathMissingMessageConstant        = "label output path not provided"
	removeOutputErrorTemplateConstant       = "unable to remove previous label output %s: %w"
	discoverLabelFilesErrorTemplateConstant = "label discovery failed: %w"
	openLabelFileErrorTemplateConstant      = "unable to open label file %s: %w"
	writeOutputErrorTemplateConstant        = "unable to write merged labels to %s: %w"
	logMessageLabelFilesDiscoveredConstant  = "Label files discovered"
	logMessageDuplicateLabelDroppedConstant = "Duplicate label dropped"
	logMessageLabelNodesSkippedConstant     = "Empty label nodes skipped"
	logMessageMergedLabelsWrittenConstant   = "Merged labels written"
	logFieldProjectRootConstant             = "project_root"
	logFieldFileCountConstant               = "file_count"
	logFieldLabelNameConstant               = "label"
	logFieldSourceFileConstant              = "source_file"
	logFieldSkippedCountConstant            = "skipped_count"
	logFieldOutputPathConstant              = "output_path"
	logFieldLabelCountConstant              = "label_count"
	logFieldDuplicateCountConstant          = "duplicate_count"
	logFieldDedupScopeConstant              = "dedup_scope"
)

var (
	errProjectRootMissing = errors.New(projectRootMissingMessageConstant)
	errOutputPathMissing  = errors.New(outputPathMissingMessageConstant)
)

// LabelFileDiscoverer locates label fragment files.
type LabelFileDiscoverer interface {
	DiscoverLabelFiles(query discovery.LabelFileQuery) ([]string, error)
}

// MergeOptions configures a label merge.
type MergeOptions struct {
	ProjectRoot           string
	OutputPath            string
	DedupScope            DedupScope
	FileSuffix            string
	IgnoredDirectoryNames []string
	ExcludedPaths         []string
}

// DroppedLabel records a label definition discarded in favour of an earlier one.
type DroppedLabel struct {
	FullName   string `yaml:"full_name"`
	SourceFile string `yaml:"source_file"`
}

// MergeResult summarizes a label merge.
type MergeResult struct {
	OutputPath   string
	SourceFiles  []string
	Labels       []Label
	Dropped      []DroppedLabel
	SkippedNodes int
	DedupScope   DedupScope
}

// Service merges label fragments found under a project root.
type Service struct {
	logger     *zap.Logger
	fileSystem afero.Fs
	discoverer LabelFileDiscoverer
}

// NewService constructs a label merge service. A nil discoverer selects the filesystem discoverer.
func NewService(logger *zap.Logger, fileSystem afero.Fs, discoverer LabelFileDiscoverer) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	if discoverer == nil {
		discoverer = discovery.NewLabelFileDiscoverer(fileSystem)
	}
	return &Service{logger: logger, fileSystem: fileSystem, discoverer: discoverer}
}

// Merge removes any previous output, parses every fragment under the project root, and writes
// one document keeping the first definition of each label name.
func (service *Service) Merge(executionContext context.Context, options MergeOptions) (MergeResult, error) {
	if len(options.ProjectRoot) == 0 {
		return MergeResult{}, errProjectRootMissing
	}
	if len(options.OutputPath) == 0 {
		return MergeResult{}, errOutputPathMissing
	}
	if len(options.DedupScope) == 0 {
		options.DedupScope = DedupScopeRun
	}
	if len(options.FileSuffix) == 0 {
		options.FileSuffix = defaultLabelFileSuffixConstant
	}

	if removeError := service.fileSystem.Remove(options.OutputPath); removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
		return MergeResult{}, fmt.Errorf(removeOutputErrorTemplateConstant, options.OutputPath, removeError)
	}

	sourceFiles, discoveryError := service.discoverer.DiscoverLabelFiles(discovery.LabelFileQuery{
		Root:                  options.ProjectRoot,
		FileSuffix:            options.FileSuffix,
		IgnoredDirectoryNames: options.IgnoredDirectoryNames,
		ExcludedPaths:         options.ExcludedPaths,
	})
	if discoveryError != nil {
		return MergeResult{}, fmt.Errorf(discoverLabelFilesErrorTemplateConstant, discoveryError)
	}

	service.logger.Info(
		logMessageLabelFilesDiscoveredConstant,
		zap.String(logFieldProjectRootConstant, options.ProjectRoot),
		zap.Int(logFieldFileCountConstant, len(sourceFiles)),
		zap.String(logFieldDedupScopeConstant, string(options.DedupScope)),
	)

	result := MergeResult{
		OutputPath:  options.OutputPath,
		SourceFiles: sourceFiles,
		DedupScope:  options.DedupScope,
	}
	seenNames := make(map[string]struct{})

	for _, sourceFile := range sourceFiles {
		if contextError := executionContext.Err(); contextError != nil {
			return MergeResult{}, contextError
		}

		fragment, readError := service.readFragment(sourceFile)
		if readError != nil {
			return MergeResult{}, readError
		}

		if fragment.Skipped > 0 {
			service.logger.Debug(
				logMessageLabelNodesSkippedConstant,
				zap.String(logFieldSourceFileConstant, sourceFile),
				zap.Int(logFieldSkippedCountConstant, fragment.Skipped),
			)
			result.SkippedNodes += fragment.Skipped
		}

		if options.DedupScope == DedupScopeFile {
			seenNames = make(map[string]struct{})
		}

		for _, label := range fragment.Labels {
			if _, seen := seenNames[label.FullName]; seen {
				service.logger.Debug(
					logMessageDuplicateLabelDroppedConstant,
					zap.String(logFieldLabelNameConstant, label.FullName),
					zap.String(logFieldSourceFileConstant, sourceFile),
				)
				result.Dropped = append(result.Dropped, DroppedLabel{FullName: label.FullName, SourceFile: sourceFile})
				continue
			}
			seenNames[label.FullName] = struct{}{}
			result.Labels = append(result.Labels, label)
		}
	}

	if writeError := service.writeDocument(options.OutputPath, Document{Labels: result.Labels}); writeError != nil {
		return MergeResult{}, writeError
	}

	service.logger.Info(
		logMessageMergedLabelsWrittenConstant,
		zap.String(logFieldOutputPathConstant, options.OutputPath),
		zap.Int(logFieldLabelCountConstant, len(result.Labels)),
		zap.Int(logFieldDuplicateCountConstant, len(result.Dropped)),
	)

	return result, nil
}

func (service *Service) readFragment(sourceFile string) (parsedFragment, error) {
	file, openError := service.fileSystem.Open(sourceFile)
	if openError != nil {
		return parsedFragment{}, fmt.Errorf(openLabelFileErrorTemplateConstant, sourceFile, openError)
	}
	defer file.Close()

	return parseFragment(sourceFile, file)
}

func (service *Service) writeDocument(outputPath string, document Document) error {
	content, encodeError := EncodeDocument(document)
	if encodeError != nil {
		return encodeError
	}
	if createError := service.fileSystem.MkdirAll(filepath.Dir(outputPath), outputDirectoryPermissionsConstant); createError != nil {
		return fmt.Errorf(writeOutputErrorTemplateConstant, outputPath, createError)
	}
	if writeError := afero.WriteFile(service.fileSystem, outputPath, content, outputFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(writeOutputErrorTemplateConstant, outputPath, writeError)
	}
	return nil
}
