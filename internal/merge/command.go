package merge

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/sfmerge/internal/labels"
	"github.com/temirov/sfmerge/internal/ui"
	"github.com/temirov/sfmerge/internal/utils"
	pathutils "github.com/temirov/sfmerge/internal/utils/path"
)

const (
	commandUseConstant                    = "merge"
	commandShortDescriptionConstant       = "Merge package directories into the default package"
	commandLongDescriptionConstant        = "merge rebuilds <root>/default/objects from the objects folder of every declared package directory, later packages overriding earlier ones, and combines all custom label files into <root>/default/labels/CustomLabels.labels-meta.xml keeping the first definition of each label."
	rootFlagNameConstant                  = "root"
	rootFlagUsageConstant                 = "Project root or any directory inside it (defaults to the working directory)"
	dedupScopeFlagNameConstant            = "dedup-scope"
	dedupScopeFlagUsageConstant           = "Label deduplication scope: run (across all files) or file (within each file)"
	reportFlagNameConstant                = "report"
	reportFlagUsageConstant               = "Optional path for a YAML merge report"
	dedupScopeFieldNameConstant           = "dedup_scope"
	workingDirectoryErrorTemplateConstant = "unable to determine working directory: %w"
	commandExecutionErrorTemplateConstant = "merge failed: %w"
	logMessageMergeFailedConstant         = "Merge failed"
	logFieldStartDirectoryConstant        = "start_directory"
	logFieldRequestedDedupScopeConstant   = "dedup_scope"
	logMessageMergeRequestedConstant      = "Merge requested"
	logFieldIgnoredDirectoriesConstant    = "ignored_directories"
	logFieldLabelFileSuffixConstant       = "label_file_suffix"
	logFieldRequestedReportPathConstant   = "report_path"
	logFieldConfigurationFileConstant     = "config_file"
	workingDirectoryEmptyMessageConstant  = "working directory resolver returned an empty path"
)

var (
	commandPathExpander      = pathutils.NewHomeExpander()
	errWorkingDirectoryEmpty = errors.New(workingDirectoryEmptyMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// WorkingDirectoryResolver reports the directory relative paths are anchored at.
type WorkingDirectoryResolver func() (string, error)

// CommandBuilder assembles the merge Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	FileSystem                   afero.Fs
	WorkingDirectoryResolver     WorkingDirectoryResolver
}

// Build constructs the merge command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}

	command.Flags().String(rootFlagNameConstant, "", rootFlagUsageConstant)
	command.Flags().String(dedupScopeFlagNameConstant, "", dedupScopeFlagUsageConstant)
	command.Flags().String(reportFlagNameConstant, "", reportFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	logger.Debug(
		logMessageMergeRequestedConstant,
		zap.String(logFieldStartDirectoryConstant, options.StartDirectory),
		zap.String(logFieldRequestedDedupScopeConstant, string(options.DedupScope)),
		zap.String(logFieldLabelFileSuffixConstant, options.LabelFileSuffix),
		zap.Strings(logFieldIgnoredDirectoriesConstant, options.IgnoredDirectories),
		zap.String(logFieldRequestedReportPathConstant, options.ReportPath),
		zap.String(logFieldConfigurationFileConstant, options.ConfigurationFile),
	)

	dependencies := ServiceDependencies{
		Logger:     logger,
		FileSystem: builder.FileSystem,
	}
	if builder.humanReadableLoggingEnabled() {
		dependencies.Reporter = ui.NewConsoleMergeReporter(builder.resolveConsoleLogger())
	}

	service := NewService(dependencies)
	if _, executionError := service.Execute(command.Context(), options); executionError != nil {
		logger.Error(
			logMessageMergeFailedConstant,
			zap.String(logFieldStartDirectoryConstant, options.StartDirectory),
			zap.Error(executionError),
		)
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executionError)
	}

	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (Options, error) {
	configuration := builder.resolveConfiguration()

	rootValue := configuration.Root
	dedupScopeValue := configuration.DedupScope
	reportPathValue := configuration.ReportPath

	if command != nil {
		if command.Flags().Changed(rootFlagNameConstant) {
			rootValue, _ = command.Flags().GetString(rootFlagNameConstant)
		}
		if command.Flags().Changed(dedupScopeFlagNameConstant) {
			dedupScopeValue, _ = command.Flags().GetString(dedupScopeFlagNameConstant)
		}
		if command.Flags().Changed(reportFlagNameConstant) {
			reportPathValue, _ = command.Flags().GetString(reportFlagNameConstant)
		}
	}

	dedupScope, dedupScopeError := labels.ParseDedupScope(dedupScopeValue)
	if dedupScopeError != nil {
		return Options{}, InvalidInputError{FieldName: dedupScopeFieldNameConstant, Message: dedupScopeError.Error()}
	}

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return Options{}, fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}

	var configurationFile string
	if command != nil {
		configurationFile, _ = utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context())
	}

	var reportPath string
	if len(strings.TrimSpace(reportPathValue)) > 0 {
		reportPath = commandPathExpander.ExpandRelativeTo(workingDirectory, reportPathValue)
	}

	return Options{
		StartDirectory:     commandPathExpander.ExpandRelativeTo(workingDirectory, rootValue),
		DedupScope:         dedupScope,
		LabelFileSuffix:    configuration.LabelFileSuffix,
		IgnoredDirectories: configuration.IgnoredDirectories,
		ReportPath:         reportPath,
		ConfigurationFile:  configurationFile,
	}, nil
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	resolver := builder.WorkingDirectoryResolver
	if resolver == nil {
		resolver = os.Getwd
	}
	workingDirectory, resolveError := resolver()
	if resolveError != nil {
		return "", resolveError
	}
	if len(strings.TrimSpace(workingDirectory)) == 0 {
		return "", errWorkingDirectoryEmpty
	}
	return workingDirectory, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConsoleLogger() *zap.Logger {
	if builder.ConsoleLoggerProvider == nil {
		return builder.resolveLogger()
	}
	logger := builder.ConsoleLoggerProvider()
	if logger == nil {
		return builder.resolveLogger()
	}
	return logger
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}
