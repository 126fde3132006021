package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	objectsDirectoryNameConstant           = "objects"
	fieldsDirectoryNameConstant            = "fields"
	packageDirectoryMissingMessageConstant = "package directory does not exist"
	objectFolderMissingMessageConstant     = "no objects folder with a fields directory"
	objectFolderWalkErrorTemplateConstant  = "unable to search %s for object folders: %w"
)

var (
	// ErrPackageDirectoryMissing indicates the declared package directory is absent on disk.
	ErrPackageDirectoryMissing = errors.New(packageDirectoryMissingMessageConstant)
	// ErrObjectFolderMissing indicates no valid object folder exists beneath a package directory.
	ErrObjectFolderMissing = errors.New(objectFolderMissingMessageConstant)

	errSearchComplete = errors.New("search complete")
)

// ObjectFolderLocation describes the object folder selected for a package directory.
type ObjectFolderLocation struct {
	// Path is the selected folder.
	Path string
	// IgnoredPaths lists further valid object folders that were not selected.
	IgnoredPaths []string
}

// ObjectFolderLocator finds object folders beneath package directories.
type ObjectFolderLocator struct {
	fileSystem afero.Fs
}

// NewObjectFolderLocator constructs a locator backed by the provided filesystem.
func NewObjectFolderLocator(fileSystem afero.Fs) *ObjectFolderLocator {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &ObjectFolderLocator{fileSystem: fileSystem}
}

// Locate returns the first directory named "objects" under packageDirectory, in lexical walk
// order, that has a descendant directory named "fields".
func (locator *ObjectFolderLocator) Locate(packageDirectory string) (ObjectFolderLocation, error) {
	isDirectory, statError := afero.DirExists(locator.fileSystem, packageDirectory)
	if statError != nil || !isDirectory {
		return ObjectFolderLocation{}, fmt.Errorf("%s: %w", packageDirectory, ErrPackageDirectoryMissing)
	}

	location := ObjectFolderLocation{}
	walkError := afero.Walk(locator.fileSystem, packageDirectory, func(path string, info os.FileInfo, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if !info.IsDir() || info.Name() != objectsDirectoryNameConstant {
			return nil
		}

		valid, validationError := locator.containsFieldsDirectory(path)
		if validationError != nil {
			return validationError
		}
		if !valid {
			return nil
		}

		if len(location.Path) == 0 {
			location.Path = path
		} else {
			location.IgnoredPaths = append(location.IgnoredPaths, path)
		}
		return filepath.SkipDir
	})
	if walkError != nil {
		return ObjectFolderLocation{}, fmt.Errorf(objectFolderWalkErrorTemplateConstant, packageDirectory, walkError)
	}

	if len(location.Path) == 0 {
		return ObjectFolderLocation{}, fmt.Errorf("%s: %w", packageDirectory, ErrObjectFolderMissing)
	}

	return location, nil
}

func (locator *ObjectFolderLocator) containsFieldsDirectory(objectsDirectory string) (bool, error) {
	found := false
	walkError := afero.Walk(locator.fileSystem, objectsDirectory, func(path string, info os.FileInfo, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if path == objectsDirectory || !info.IsDir() {
			return nil
		}
		if info.Name() == fieldsDirectoryNameConstant {
			found = true
			return errSearchComplete
		}
		return nil
	})
	if walkError != nil && !errors.Is(walkError, errSearchComplete) {
		return false, walkError
	}
	return found, nil
}
