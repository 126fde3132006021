package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const labelFileWalkErrorTemplateConstant = "unable to search %s for label files: %w"

// LabelFileQuery narrows label file discovery.
type LabelFileQuery struct {
	// Root is the directory searched recursively.
	Root string
	// FileSuffix selects files whose base name ends with it.
	FileSuffix string
	// IgnoredDirectoryNames are directory base names never descended into.
	IgnoredDirectoryNames []string
	// ExcludedPaths are directories never descended into.
	ExcludedPaths []string
}

// LabelFileDiscoverer locates custom-label fragment files on disk.
type LabelFileDiscoverer struct {
	fileSystem afero.Fs
}

// NewLabelFileDiscoverer constructs a discoverer backed by the provided filesystem.
func NewLabelFileDiscoverer(fileSystem afero.Fs) *LabelFileDiscoverer {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &LabelFileDiscoverer{fileSystem: fileSystem}
}

// DiscoverLabelFiles walks the query root and returns matching files in lexical walk order.
func (discoverer *LabelFileDiscoverer) DiscoverLabelFiles(query LabelFileQuery) ([]string, error) {
	ignoredNames := make(map[string]struct{}, len(query.IgnoredDirectoryNames))
	for _, directoryName := range query.IgnoredDirectoryNames {
		ignoredNames[directoryName] = struct{}{}
	}

	excludedPaths := make(map[string]struct{}, len(query.ExcludedPaths))
	for _, excludedPath := range query.ExcludedPaths {
		excludedPaths[filepath.Clean(excludedPath)] = struct{}{}
	}

	rootPath := filepath.Clean(query.Root)
	var labelFiles []string

	walkError := afero.Walk(discoverer.fileSystem, rootPath, func(path string, info os.FileInfo, walkError error) error {
		if walkError != nil {
			return walkError
		}

		if info.IsDir() {
			if path == rootPath {
				return nil
			}
			if _, ignored := ignoredNames[info.Name()]; ignored {
				return filepath.SkipDir
			}
			if _, excluded := excludedPaths[filepath.Clean(path)]; excluded {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(info.Name(), query.FileSuffix) {
			labelFiles = append(labelFiles, path)
		}
		return nil
	})
	if walkError != nil {
		return nil, fmt.Errorf(labelFileWalkErrorTemplateConstant, rootPath, walkError)
	}

	return labelFiles, nil
}
