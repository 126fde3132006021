package project

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// RootResolver finds the project root containing the manifest.
type RootResolver struct {
	fileSystem afero.Fs
}

// NewRootResolver constructs a resolver backed by the provided filesystem.
func NewRootResolver(fileSystem afero.Fs) *RootResolver {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &RootResolver{fileSystem: fileSystem}
}

// Resolve returns startDirectory or its nearest ancestor holding the manifest.
func (resolver *RootResolver) Resolve(startDirectory string) (string, error) {
	candidateDirectory := filepath.Clean(startDirectory)
	for {
		manifestExists, existsError := afero.Exists(resolver.fileSystem, filepath.Join(candidateDirectory, ManifestFileName))
		if existsError != nil {
			return "", existsError
		}
		if manifestExists {
			return candidateDirectory, nil
		}

		parentDirectory := filepath.Dir(candidateDirectory)
		if parentDirectory == candidateDirectory {
			return "", fmt.Errorf("%s: %w", startDirectory, ErrProjectNotFound)
		}
		candidateDirectory = parentDirectory
	}
}
