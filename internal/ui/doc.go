// Package ui provides helpers for formatting human-readable console output.
//
// The helpers translate merge results into concise messages so that command
// feedback remains readable for CLI users while detailed telemetry continues
// to flow through structured loggers.
package ui
