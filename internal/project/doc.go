// Package project resolves the project root and reads the package directories
// declared in its sfdx-project.json manifest.
package project
