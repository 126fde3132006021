package ui_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/sfmerge/internal/filesystem"
	"github.com/temirov/sfmerge/internal/labels"
	"github.com/temirov/sfmerge/internal/objects"
	"github.com/temirov/sfmerge/internal/ui"
)

func TestMergeEventFormatterMessages(testInstance *testing.T) {
	formatter := ui.MergeEventFormatter{}

	testCases := []struct {
		name            string
		message         string
		expectedMessage string
	}{
		{
			name:            "project_resolved_plural",
			message:         formatter.BuildProjectResolvedMessage("/project", 3),
			expectedMessage: "Merging 3 package directories in /project",
		},
		{
			name:            "project_resolved_singular",
			message:         formatter.BuildProjectResolvedMessage("/project", 1),
			expectedMessage: "Merging 1 package directory in /project",
		},
		{
			name: "package_merged_with_overrides",
			message: formatter.BuildPackageMessage(objects.PackageOutcome{
				PackagePath: "pkgB",
				Copy: filesystem.CopyResult{
					CopiedFiles:     []string{"a", "b"},
					OverriddenFiles: []string{"a"},
				},
			}),
			expectedMessage: "Merged objects from pkgB (2 files, 1 overridden)",
		},
		{
			name: "package_merged_without_overrides",
			message: formatter.BuildPackageMessage(objects.PackageOutcome{
				PackagePath: "pkgA",
				Copy:        filesystem.CopyResult{CopiedFiles: []string{"a"}},
			}),
			expectedMessage: "Merged objects from pkgA (1 files)",
		},
		{
			name:            "package_skipped",
			message:         formatter.BuildPackageMessage(objects.PackageOutcome{PackagePath: "pkgC", Skipped: true, SkipReason: "missing"}),
			expectedMessage: "Skipped pkgC: missing",
		},
		{
			name: "labels_summary_with_duplicates",
			message: formatter.BuildLabelsSummaryMessage(labels.MergeResult{
				OutputPath:  "/project/default/labels/CustomLabels.labels-meta.xml",
				SourceFiles: []string{"one", "two"},
				Labels:      []labels.Label{{FullName: "Greeting"}},
				Dropped:     []labels.DroppedLabel{{FullName: "Greeting", SourceFile: "two"}},
			}),
			expectedMessage: "Merged 1 labels from 2 files into /project/default/labels/CustomLabels.labels-meta.xml (1 duplicates dropped)",
		},
		{
			name:            "report_written",
			message:         formatter.BuildReportWrittenMessage("/tmp/report.yaml"),
			expectedMessage: "Wrote merge report to /tmp/report.yaml",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedMessage, testCase.message)
		})
	}
}

func TestConsoleMergeReporterObjectsMergedLevels(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	reporter := ui.NewConsoleMergeReporter(zap.New(observedCore))

	reporter.ObjectsMerged(objects.MergeResult{
		OutputDirectory: "/project/default/objects",
		Packages: []objects.PackageOutcome{
			{PackagePath: "default", Skipped: true, SkipReason: objects.SkipReasonDefaultOutput},
			{PackagePath: "pkgMissing", Skipped: true, SkipReason: "package directory does not exist"},
			{PackagePath: "pkgA", Copy: filesystem.CopyResult{CopiedFiles: []string{"a"}}},
		},
	})

	entries := observedLogs.AllUntimed()
	require.Len(testInstance, entries, 4)
	require.Equal(testInstance, zapcore.InfoLevel, entries[0].Level)
	require.Equal(testInstance, zapcore.WarnLevel, entries[1].Level)
	require.Equal(testInstance, zapcore.InfoLevel, entries[2].Level)
	require.Equal(testInstance, "Objects merged from 1 of 3 packages into /project/default/objects", entries[3].Message)
}

func TestConsoleMergeReporterNilSafe(testInstance *testing.T) {
	var reporter *ui.ConsoleMergeReporter
	require.NotPanics(testInstance, func() {
		reporter.ProjectResolved("/project", 1)
		reporter.LabelsMerged(labels.MergeResult{})
	})
}
