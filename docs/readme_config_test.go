package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/sfmerge/internal/labels"
	"github.com/temirov/sfmerge/internal/merge"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	parentDirectoryReferenceConstant = ".."
	embeddedDefaultsRelativePath     = "cmd/cli/default_config.yaml"
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

type readmeApplicationConfiguration struct {
	Common struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"common"`
	Tools struct {
		Merge readmeMergeConfiguration `yaml:"merge"`
	} `yaml:"tools"`
}

type readmeMergeConfiguration struct {
	Root               string   `yaml:"root"`
	DedupScope         string   `yaml:"dedup_scope"`
	LabelFileSuffix    string   `yaml:"label_file_suffix"`
	IgnoredDirectories []string `yaml:"ignored_directories"`
	ReportPath         string   `yaml:"report_path"`
}

func readmeConfigurationSnippet(testInstance *testing.T) string {
	testInstance.Helper()
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	contentBytes, readError := os.ReadFile(filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant))
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	fenceEndRelativeIndex := strings.Index(contentText[headerIndex:], yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : headerIndex+fenceEndRelativeIndex])
}

func TestReadmeConfigurationMatchesEmbeddedDefaults(testInstance *testing.T) {
	var readmeConfiguration readmeApplicationConfiguration
	require.NoError(testInstance, yaml.Unmarshal([]byte(readmeConfigurationSnippet(testInstance)), &readmeConfiguration))

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	embeddedContent, embeddedReadError := os.ReadFile(filepath.Join(workingDirectory, parentDirectoryReferenceConstant, embeddedDefaultsRelativePath))
	require.NoError(testInstance, embeddedReadError)

	var embeddedConfiguration readmeApplicationConfiguration
	require.NoError(testInstance, yaml.Unmarshal(embeddedContent, &embeddedConfiguration))

	require.Equal(testInstance, embeddedConfiguration, readmeConfiguration)

	defaults := merge.DefaultCommandConfiguration()
	require.Equal(testInstance, defaults.DedupScope, readmeConfiguration.Tools.Merge.DedupScope)
	require.Equal(testInstance, defaults.LabelFileSuffix, readmeConfiguration.Tools.Merge.LabelFileSuffix)
	require.Equal(testInstance, defaults.IgnoredDirectories, readmeConfiguration.Tools.Merge.IgnoredDirectories)

	_, scopeError := labels.ParseDedupScope(readmeConfiguration.Tools.Merge.DedupScope)
	require.NoError(testInstance, scopeError)
}
