package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	directoryPermissionsConstant            = 0o755
	filePermissionsConstant                 = 0o644
	removeTreeErrorTemplateConstant         = "unable to remove %s: %w"
	createDirectoryErrorTemplateConstant    = "unable to create directory %s: %w"
	sourceNotDirectoryErrorTemplateConstant = "copy source %s is not a directory"
	walkErrorTemplateConstant               = "unable to walk %s: %w"
	copyFileErrorTemplateConstant           = "unable to copy %s to %s: %w"
	compareFileErrorTemplateConstant        = "unable to compare %s with %s: %w"
)

// CopyResult lists destination-relative paths touched by a tree copy.
type CopyResult struct {
	// CopiedFiles holds every file written, in walk order.
	CopiedFiles []string
	// OverriddenFiles holds files that replaced an existing file with different content.
	OverriddenFiles []string
	// IdenticalFiles holds files that replaced an existing file with the same content.
	IdenticalFiles []string
}

// TreeManager removes, creates and copies directory trees.
type TreeManager struct {
	fileSystem afero.Fs
	digester   *ContentDigester
}

// NewTreeManager constructs a TreeManager over the provided filesystem.
func NewTreeManager(fileSystem afero.Fs) *TreeManager {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &TreeManager{
		fileSystem: fileSystem,
		digester:   NewContentDigester(fileSystem),
	}
}

// RemoveTree deletes path and everything beneath it. A missing path is not an error.
func (manager *TreeManager) RemoveTree(path string) error {
	if removeError := manager.fileSystem.RemoveAll(path); removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
		return fmt.Errorf(removeTreeErrorTemplateConstant, path, removeError)
	}
	return nil
}

// EnsureDirectories creates each directory along with any missing parents.
func (manager *TreeManager) EnsureDirectories(paths ...string) error {
	for _, path := range paths {
		if createError := manager.fileSystem.MkdirAll(path, directoryPermissionsConstant); createError != nil {
			return fmt.Errorf(createDirectoryErrorTemplateConstant, path, createError)
		}
	}
	return nil
}

// CopyTree copies the contents of sourceRoot into destinationRoot. Files already present in
// the destination are overwritten and classified as overridden or identical.
func (manager *TreeManager) CopyTree(executionContext context.Context, sourceRoot string, destinationRoot string) (CopyResult, error) {
	sourceInfo, statError := manager.fileSystem.Stat(sourceRoot)
	if statError != nil {
		return CopyResult{}, statError
	}
	if !sourceInfo.IsDir() {
		return CopyResult{}, fmt.Errorf(sourceNotDirectoryErrorTemplateConstant, sourceRoot)
	}

	result := CopyResult{}
	walkError := afero.Walk(manager.fileSystem, sourceRoot, func(sourcePath string, info os.FileInfo, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}

		relativePath, relativeError := filepath.Rel(sourceRoot, sourcePath)
		if relativeError != nil {
			return relativeError
		}
		destinationPath := filepath.Join(destinationRoot, relativePath)

		if info.IsDir() {
			return manager.EnsureDirectories(destinationPath)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		existed, existsError := afero.Exists(manager.fileSystem, destinationPath)
		if existsError != nil {
			return existsError
		}
		if existed {
			sameContent, compareError := manager.digester.SameContent(sourcePath, destinationPath)
			if compareError != nil {
				return fmt.Errorf(compareFileErrorTemplateConstant, sourcePath, destinationPath, compareError)
			}
			if sameContent {
				result.IdenticalFiles = append(result.IdenticalFiles, relativePath)
			} else {
				result.OverriddenFiles = append(result.OverriddenFiles, relativePath)
			}
		}

		if copyError := manager.copyFile(sourcePath, destinationPath, info.Mode().Perm(), existed); copyError != nil {
			return fmt.Errorf(copyFileErrorTemplateConstant, sourcePath, destinationPath, copyError)
		}
		result.CopiedFiles = append(result.CopiedFiles, relativePath)
		return nil
	})
	if walkError != nil {
		if errors.Is(walkError, context.Canceled) || errors.Is(walkError, context.DeadlineExceeded) {
			return result, walkError
		}
		return result, fmt.Errorf(walkErrorTemplateConstant, sourceRoot, walkError)
	}

	return result, nil
}

// copyFile replaces an existing destination instead of truncating it, so read-only files copied
// from an earlier package do not block a later one.
func (manager *TreeManager) copyFile(sourcePath string, destinationPath string, permissions fs.FileMode, replaceExisting bool) (copyError error) {
	sourceFile, openError := manager.fileSystem.Open(sourcePath)
	if openError != nil {
		return openError
	}
	defer sourceFile.Close()

	if permissions == 0 {
		permissions = filePermissionsConstant
	}

	if replaceExisting {
		if removeError := manager.fileSystem.Remove(destinationPath); removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
			return removeError
		}
	}

	destinationFile, createError := manager.fileSystem.OpenFile(destinationPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, permissions)
	if createError != nil {
		return createError
	}
	defer func() {
		if closeError := destinationFile.Close(); closeError != nil && copyError == nil {
			copyError = closeError
		}
	}()

	_, copyError = io.Copy(destinationFile, sourceFile)
	return copyError
}
