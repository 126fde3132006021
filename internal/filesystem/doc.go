// Package filesystem owns the tree-level operations the merge relies on:
// removing generated trees, copying one tree onto another with override
// tracking, and fingerprinting file contents. All operations run against an
// afero.Fs so that callers can substitute an in-memory filesystem.
package filesystem
