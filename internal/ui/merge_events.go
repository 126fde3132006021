package ui

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/sfmerge/internal/labels"
	"github.com/temirov/sfmerge/internal/objects"
)

const (
	projectResolvedTemplateConstant        = "Merging %d package directories in %s"
	outputPreparedTemplateConstant         = "Cleared %s"
	packageMergedTemplateConstant          = "Merged objects from %s (%d files"
	packageOverridesSuffixTemplateConstant = ", %d overridden"
	packageMergedClosingConstant           = ")"
	packageSkippedTemplateConstant         = "Skipped %s: %s"
	objectsSummaryTemplateConstant         = "Objects merged from %d of %d packages into %s"
	labelsSummaryTemplateConstant          = "Merged %d labels from %d files into %s"
	labelsDroppedSuffixTemplateConstant    = " (%d duplicates dropped)"
	reportWrittenTemplateConstant          = "Wrote merge report to %s"
	singularPackageDirectoriesConstant     = "Merging 1 package directory in %s"
)

// MergeEventFormatter builds human-readable messages for merge progress.
type MergeEventFormatter struct{}

// BuildProjectResolvedMessage describes the project about to be merged.
func (formatter MergeEventFormatter) BuildProjectResolvedMessage(projectRoot string, packageCount int) string {
	if packageCount == 1 {
		return fmt.Sprintf(singularPackageDirectoriesConstant, projectRoot)
	}
	return fmt.Sprintf(projectResolvedTemplateConstant, packageCount, projectRoot)
}

// BuildOutputPreparedMessage describes the cleared output tree.
func (formatter MergeEventFormatter) BuildOutputPreparedMessage(outputRoot string) string {
	return fmt.Sprintf(outputPreparedTemplateConstant, outputRoot)
}

// BuildPackageMessage describes the contribution of a single package.
func (formatter MergeEventFormatter) BuildPackageMessage(outcome objects.PackageOutcome) string {
	if outcome.Skipped {
		return fmt.Sprintf(packageSkippedTemplateConstant, outcome.PackagePath, outcome.SkipReason)
	}
	message := fmt.Sprintf(packageMergedTemplateConstant, outcome.PackagePath, len(outcome.Copy.CopiedFiles))
	if overriddenCount := len(outcome.Copy.OverriddenFiles); overriddenCount > 0 {
		message += fmt.Sprintf(packageOverridesSuffixTemplateConstant, overriddenCount)
	}
	return message + packageMergedClosingConstant
}

// BuildObjectsSummaryMessage summarizes the directory merge.
func (formatter MergeEventFormatter) BuildObjectsSummaryMessage(result objects.MergeResult) string {
	return fmt.Sprintf(objectsSummaryTemplateConstant, result.MergedPackageCount(), len(result.Packages), result.OutputDirectory)
}

// BuildLabelsSummaryMessage summarizes the label merge.
func (formatter MergeEventFormatter) BuildLabelsSummaryMessage(result labels.MergeResult) string {
	message := fmt.Sprintf(labelsSummaryTemplateConstant, len(result.Labels), len(result.SourceFiles), result.OutputPath)
	if droppedCount := len(result.Dropped); droppedCount > 0 {
		message += fmt.Sprintf(labelsDroppedSuffixTemplateConstant, droppedCount)
	}
	return message
}

// BuildReportWrittenMessage describes the written merge report.
func (formatter MergeEventFormatter) BuildReportWrittenMessage(reportPath string) string {
	return fmt.Sprintf(reportWrittenTemplateConstant, reportPath)
}

// ConsoleMergeReporter renders merge progress through a zap logger configured for human-readable output.
type ConsoleMergeReporter struct {
	logger    *zap.Logger
	formatter MergeEventFormatter
}

// NewConsoleMergeReporter constructs a console reporter backed by the provided zap logger.
func NewConsoleMergeReporter(logger *zap.Logger) *ConsoleMergeReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleMergeReporter{logger: logger, formatter: MergeEventFormatter{}}
}

// ProjectResolved reports the project root and package count.
func (reporter *ConsoleMergeReporter) ProjectResolved(projectRoot string, packageCount int) {
	if reporter == nil {
		return
	}
	reporter.logger.Info(reporter.formatter.BuildProjectResolvedMessage(projectRoot, packageCount))
}

// OutputPrepared reports the cleared output tree.
func (reporter *ConsoleMergeReporter) OutputPrepared(outputRoot string) {
	if reporter == nil {
		return
	}
	reporter.logger.Info(reporter.formatter.BuildOutputPreparedMessage(outputRoot))
}

// ObjectsMerged reports each package outcome followed by a summary. Skipped packages are warnings
// unless they are the default output package.
func (reporter *ConsoleMergeReporter) ObjectsMerged(result objects.MergeResult) {
	if reporter == nil {
		return
	}
	for _, outcome := range result.Packages {
		message := reporter.formatter.BuildPackageMessage(outcome)
		if outcome.Skipped && outcome.SkipReason != objects.SkipReasonDefaultOutput {
			reporter.logger.Warn(message)
			continue
		}
		reporter.logger.Info(message)
	}
	reporter.logger.Info(reporter.formatter.BuildObjectsSummaryMessage(result))
}

// LabelsMerged reports the label merge summary.
func (reporter *ConsoleMergeReporter) LabelsMerged(result labels.MergeResult) {
	if reporter == nil {
		return
	}
	reporter.logger.Info(reporter.formatter.BuildLabelsSummaryMessage(result))
}

// ReportWritten reports the merge report location.
func (reporter *ConsoleMergeReporter) ReportWritten(reportPath string) {
	if reporter == nil {
		return
	}
	reporter.logger.Info(reporter.formatter.BuildReportWrittenMessage(reportPath))
}
