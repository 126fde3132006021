package merge

import (
	"strings"

	pathutils "github.com/temirov/sfmerge/internal/utils/path"
)

const (
	defaultDedupScopeConstant      = "run"
	defaultLabelFileSuffixConstant = ".labels-meta.xml"
	rootConfigurationKeyConstant   = "root"
	dedupScopeConfigurationKey     = "dedup_scope"
	labelSuffixConfigurationKey    = "label_file_suffix"
	ignoredDirectoriesKeyConstant  = "ignored_directories"
	reportPathConfigurationKey     = "report_path"
	configurationKeySeparator      = "."
)

var mergeConfigurationHomeDirectoryExpander = pathutils.NewHomeExpander()

var defaultIgnoredDirectories = []string{".git", ".sf", ".sfdx", "node_modules"}

// CommandConfiguration captures persisted configuration for the merge command.
type CommandConfiguration struct {
	Root               string   `mapstructure:"root"`
	DedupScope         string   `mapstructure:"dedup_scope"`
	LabelFileSuffix    string   `mapstructure:"label_file_suffix"`
	IgnoredDirectories []string `mapstructure:"ignored_directories"`
	ReportPath         string   `mapstructure:"report_path"`
}

// DefaultCommandConfiguration returns baseline configuration values for the merge command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		DedupScope:         defaultDedupScopeConstant,
		LabelFileSuffix:    defaultLabelFileSuffixConstant,
		IgnoredDirectories: append([]string{}, defaultIgnoredDirectories...),
	}
}

// DefaultConfigurationValues exposes the defaults keyed under the provided configuration prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	qualify := func(key string) string {
		if len(prefix) == 0 {
			return key
		}
		return prefix + configurationKeySeparator + key
	}
	return map[string]any{
		qualify(rootConfigurationKeyConstant):  defaults.Root,
		qualify(dedupScopeConfigurationKey):    defaults.DedupScope,
		qualify(labelSuffixConfigurationKey):   defaults.LabelFileSuffix,
		qualify(ignoredDirectoriesKeyConstant): defaults.IgnoredDirectories,
		qualify(reportPathConfigurationKey):    defaults.ReportPath,
	}
}

// Sanitize trims configured values, expands home shortcuts, and restores blank defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.Root = mergeConfigurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.Root))
	sanitized.ReportPath = mergeConfigurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.ReportPath))

	sanitized.DedupScope = strings.TrimSpace(configuration.DedupScope)
	if len(sanitized.DedupScope) == 0 {
		sanitized.DedupScope = defaults.DedupScope
	}

	sanitized.LabelFileSuffix = strings.TrimSpace(configuration.LabelFileSuffix)
	if len(sanitized.LabelFileSuffix) == 0 {
		sanitized.LabelFileSuffix = defaults.LabelFileSuffix
	}

	ignoredDirectories := make([]string, 0, len(configuration.IgnoredDirectories))
	for _, directoryName := range configuration.IgnoredDirectories {
		trimmedName := strings.TrimSpace(directoryName)
		if len(trimmedName) == 0 {
			continue
		}
		ignoredDirectories = append(ignoredDirectories, trimmedName)
	}
	sanitized.IgnoredDirectories = ignoredDirectories

	return sanitized
}
