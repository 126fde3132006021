// Package merge implements the packages merge command: it resolves the
// project, rebuilds the consolidated default package from every declared
// package directory, merges custom labels, and optionally records a report.
package merge
