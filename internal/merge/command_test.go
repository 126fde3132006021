package merge_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/temirov/sfmerge/internal/labels"
	"github.com/temirov/sfmerge/internal/merge"
	"github.com/temirov/sfmerge/internal/utils"
)

const (
	testWorkingDirectoryConstant = testProjectRootConstant + "/pkgB"
	testCommandReportPath        = "out/report.yaml"
	testConfigurationFilePath    = "/etc/sfmerge/config.yaml"
)

func mergedLabelNames(testInstance *testing.T, fileSystem afero.Fs) []string {
	testInstance.Helper()
	document, decodeError := labels.DecodeDocument([]byte(readProjectFile(testInstance, fileSystem, testMergedLabelsPath)))
	require.NoError(testInstance, decodeError)
	names := make([]string, 0, len(document.Labels))
	for _, label := range document.Labels {
		names = append(names, label.FullName)
	}
	return names
}

func TestMergeCommandRunScenarios(testInstance *testing.T) {
	testCases := []struct {
		name                string
		arguments           []string
		configuration       *merge.CommandConfiguration
		expectError         bool
		expectInvalidInput  bool
		expectedLabelNames  []string
		expectedReportPaths []string
	}{
		{
			name:               "defaults_use_working_directory",
			arguments:          []string{},
			expectedLabelNames: []string{"Greeting", "Farewell"},
		},
		{
			name:               "file_scope_flag",
			arguments:          []string{"--dedup-scope", "file"},
			expectedLabelNames: []string{"Greeting", "Greeting", "Farewell"},
		},
		{
			name:               "flag_overrides_configuration",
			arguments:          []string{"--dedup-scope", "run"},
			configuration:      &merge.CommandConfiguration{DedupScope: "file"},
			expectedLabelNames: []string{"Greeting", "Farewell"},
		},
		{
			name:               "configuration_scope_applies",
			arguments:          []string{},
			configuration:      &merge.CommandConfiguration{DedupScope: "file"},
			expectedLabelNames: []string{"Greeting", "Greeting", "Farewell"},
		},
		{
			name:                "report_relative_to_working_directory",
			arguments:           []string{"--report", testCommandReportPath},
			expectedLabelNames:  []string{"Greeting", "Farewell"},
			expectedReportPaths: []string{filepath.Join(testWorkingDirectoryConstant, testCommandReportPath)},
		},
		{
			name:               "explicit_root_flag",
			arguments:          []string{"--root", "../pkgA/main"},
			expectedLabelNames: []string{"Greeting", "Farewell"},
		},
		{
			name:               "unsupported_scope",
			arguments:          []string{"--dedup-scope", "project"},
			expectError:        true,
			expectInvalidInput: true,
		},
		{
			name:        "positional_arguments_rejected",
			arguments:   []string{"extra"},
			expectError: true,
		},
		{
			name:        "root_outside_project",
			arguments:   []string{"--root", "/tmp/unrelated"},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fileSystem := afero.NewMemMapFs()
			seedProject(testInstance, fileSystem)

			builder := merge.CommandBuilder{
				LoggerProvider: func() *zap.Logger {
					return zap.NewNop()
				},
				FileSystem: fileSystem,
				WorkingDirectoryResolver: func() (string, error) {
					return testWorkingDirectoryConstant, nil
				},
			}
			if testCase.configuration != nil {
				configuration := *testCase.configuration
				builder.ConfigurationProvider = func() merge.CommandConfiguration {
					return configuration
				}
			}

			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)
			command.SetArgs(testCase.arguments)

			executionError := command.Execute()
			if testCase.expectError {
				require.Error(testInstance, executionError)
				if testCase.expectInvalidInput {
					var invalidInputError merge.InvalidInputError
					require.ErrorAs(testInstance, executionError, &invalidInputError)
				}
				return
			}
			require.NoError(testInstance, executionError)

			require.Equal(testInstance, testCase.expectedLabelNames, mergedLabelNames(testInstance, fileSystem))
			require.Equal(testInstance, "account from pkgB", readProjectFile(testInstance, fileSystem, filepath.Join("default/objects", testAccountObjectPath)))

			for _, reportPath := range testCase.expectedReportPaths {
				reportExists, existsError := afero.Exists(fileSystem, reportPath)
				require.NoError(testInstance, existsError)
				require.True(testInstance, reportExists)
			}
		})
	}
}

func TestMergeCommandHumanReadableProgress(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	seedProject(testInstance, fileSystem)

	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	builder := merge.CommandBuilder{
		ConsoleLoggerProvider: func() *zap.Logger {
			return zap.New(observedCore)
		},
		HumanReadableLoggingProvider: func() bool {
			return true
		},
		FileSystem: fileSystem,
		WorkingDirectoryResolver: func() (string, error) {
			return testProjectRootConstant, nil
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{})
	require.NoError(testInstance, command.Execute())

	messages := make([]string, 0, observedLogs.Len())
	for _, entry := range observedLogs.All() {
		messages = append(messages, entry.Message)
	}
	require.Contains(testInstance, messages, "Merging 4 package directories in "+testProjectRootConstant)
	require.Contains(testInstance, messages, "Merged 2 labels from 2 files into "+filepath.Join(testProjectRootConstant, testMergedLabelsPath)+" (1 duplicates dropped)")
}

func TestMergeCommandRecordsConfigurationFileInReport(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	seedProject(testInstance, fileSystem)

	builder := merge.CommandBuilder{
		FileSystem: fileSystem,
		WorkingDirectoryResolver: func() (string, error) {
			return testProjectRootConstant, nil
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetContext(utils.NewCommandContextAccessor().WithConfigurationFilePath(context.Background(), testConfigurationFilePath))
	command.SetArgs([]string{"--report", testCommandReportPath})
	require.NoError(testInstance, command.Execute())

	var report merge.Report
	require.NoError(testInstance, yaml.Unmarshal([]byte(readProjectFile(testInstance, fileSystem, testCommandReportPath)), &report))
	require.Equal(testInstance, testConfigurationFilePath, report.ConfigurationFile)
	require.Equal(testInstance, testProjectRootConstant, report.ProjectRoot)
}
