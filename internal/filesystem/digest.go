package filesystem

import (
	"fmt"
	"io"

	"github.com/minio/highwayhash"
	"github.com/spf13/afero"
)

const (
	digestOpenErrorTemplateConstant = "unable to open %s for digest: %w"
	digestReadErrorTemplateConstant = "unable to read %s for digest: %w"
)

// digestKey is fixed so digests are comparable across runs; they are used for equality only.
var digestKey = []byte("sfmerge-content-digest-key-00032")

// ContentDigester fingerprints file contents with HighwayHash-64.
type ContentDigester struct {
	fileSystem afero.Fs
}

// NewContentDigester constructs a digester reading from the provided filesystem.
func NewContentDigester(fileSystem afero.Fs) *ContentDigester {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &ContentDigester{fileSystem: fileSystem}
}

// Digest returns the HighwayHash-64 sum of the file at filePath.
func (digester *ContentDigester) Digest(filePath string) (uint64, error) {
	file, openError := digester.fileSystem.Open(filePath)
	if openError != nil {
		return 0, fmt.Errorf(digestOpenErrorTemplateConstant, filePath, openError)
	}
	defer file.Close()

	hash, hashError := highwayhash.New64(digestKey)
	if hashError != nil {
		return 0, hashError
	}

	if _, copyError := io.Copy(hash, file); copyError != nil {
		return 0, fmt.Errorf(digestReadErrorTemplateConstant, filePath, copyError)
	}

	return hash.Sum64(), nil
}

// SameContent reports whether both files hold identical bytes.
func (digester *ContentDigester) SameContent(firstPath string, secondPath string) (bool, error) {
	firstDigest, firstError := digester.Digest(firstPath)
	if firstError != nil {
		return false, firstError
	}
	secondDigest, secondError := digester.Digest(secondPath)
	if secondError != nil {
		return false, secondError
	}
	return firstDigest == secondDigest, nil
}
