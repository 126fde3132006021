package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// ManifestFileName is the project manifest located at the project root.
	ManifestFileName = "sfdx-project.json"

	manifestConfigurationTypeConstant  = "json"
	defaultOutputDirectoryNameConstant = "default"
	manifestReadErrorTemplateConstant  = "unable to read project manifest %s: %w"
	manifestParseErrorTemplateConstant = "unable to parse project manifest %s: %w"
	projectNotFoundMessageConstant     = "no " + ManifestFileName + " found in the directory or any parent"
)

// ErrProjectNotFound indicates that no project manifest could be located.
var ErrProjectNotFound = errors.New(projectNotFoundMessageConstant)

// PackageDirectory is a package root declared in the manifest.
type PackageDirectory struct {
	Path    string `mapstructure:"path"`
	Default bool   `mapstructure:"default"`
}

// IsDefaultOutput reports whether the directory is the consolidated "default" package the merge writes to.
func (directory PackageDirectory) IsDefaultOutput() bool {
	return filepath.Base(filepath.Clean(directory.Path)) == defaultOutputDirectoryNameConstant
}

// Manifest holds the manifest fields the merge consumes.
type Manifest struct {
	Name               string             `mapstructure:"name"`
	Namespace          string             `mapstructure:"namespace"`
	SourceAPIVersion   string             `mapstructure:"sourceApiVersion"`
	PackageDirectories []PackageDirectory `mapstructure:"packageDirectories"`
}

// ManifestLoader reads project manifests from a filesystem.
type ManifestLoader struct {
	fileSystem afero.Fs
}

// NewManifestLoader constructs a loader backed by the provided filesystem.
func NewManifestLoader(fileSystem afero.Fs) *ManifestLoader {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &ManifestLoader{fileSystem: fileSystem}
}

// Load reads the manifest at the project root. Package directories keep their declared order;
// blank paths are dropped and the "default" flag accepts booleans or strings.
func (loader *ManifestLoader) Load(projectRoot string) (Manifest, error) {
	manifestPath := filepath.Join(projectRoot, ManifestFileName)

	viperInstance := viper.New()
	viperInstance.SetFs(loader.fileSystem)
	viperInstance.SetConfigFile(manifestPath)
	viperInstance.SetConfigType(manifestConfigurationTypeConstant)

	if readError := viperInstance.ReadInConfig(); readError != nil {
		return Manifest{}, fmt.Errorf(manifestReadErrorTemplateConstant, manifestPath, readError)
	}

	manifest := Manifest{}
	unmarshalError := viperInstance.Unmarshal(&manifest, func(decoderConfiguration *mapstructure.DecoderConfig) {
		decoderConfiguration.WeaklyTypedInput = true
	})
	if unmarshalError != nil {
		return Manifest{}, fmt.Errorf(manifestParseErrorTemplateConstant, manifestPath, unmarshalError)
	}

	manifest.PackageDirectories = sanitizePackageDirectories(manifest.PackageDirectories)
	return manifest, nil
}

func sanitizePackageDirectories(directories []PackageDirectory) []PackageDirectory {
	sanitized := make([]PackageDirectory, 0, len(directories))
	for _, directory := range directories {
		trimmedPath := strings.TrimSpace(directory.Path)
		if len(trimmedPath) == 0 {
			continue
		}
		directory.Path = filepath.Clean(trimmedPath)
		sanitized = append(sanitized, directory)
	}
	return sanitized
}
