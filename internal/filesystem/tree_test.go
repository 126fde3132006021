package filesystem_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/sfmerge/internal/filesystem"
)

const (
	testSourceRootConstant          = "/project/pkgB/objects"
	testDestinationRootConstant     = "/project/default/objects"
	testAccountObjectPathConstant   = "Account/Account.object-meta.xml"
	testAccountFieldPathConstant    = "Account/fields/Rating__c.field-meta.xml"
	testContactObjectPathConstant   = "Contact/Contact.object-meta.xml"
	testFilePermissionsConstant     = 0o644
	testReadOnlyPermissionsConstant = 0o444
)

func writeTestFile(testInstance *testing.T, fileSystem afero.Fs, path string, content string) {
	testInstance.Helper()
	require.NoError(testInstance, fileSystem.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(testInstance, afero.WriteFile(fileSystem, path, []byte(content), testFilePermissionsConstant))
}

func readTestFile(testInstance *testing.T, fileSystem afero.Fs, path string) string {
	testInstance.Helper()
	content, readError := afero.ReadFile(fileSystem, path)
	require.NoError(testInstance, readError)
	return string(content)
}

func TestTreeManagerCopyTreeClassifiesOverrides(testInstance *testing.T) {
	testCases := []struct {
		name                    string
		existingDestination     map[string]string
		source                  map[string]string
		expectedCopiedFiles     []string
		expectedOverriddenFiles []string
		expectedIdenticalFiles  []string
		expectedContent         map[string]string
	}{
		{
			name: "empty_destination",
			source: map[string]string{
				testAccountObjectPathConstant: "account-b",
				testAccountFieldPathConstant:  "rating-b",
			},
			expectedCopiedFiles: []string{testAccountObjectPathConstant, testAccountFieldPathConstant},
			expectedContent: map[string]string{
				testAccountObjectPathConstant: "account-b",
				testAccountFieldPathConstant:  "rating-b",
			},
		},
		{
			name: "later_source_overrides_existing",
			existingDestination: map[string]string{
				testAccountObjectPathConstant: "account-a",
				testContactObjectPathConstant: "contact-a",
			},
			source: map[string]string{
				testAccountObjectPathConstant: "account-b",
			},
			expectedCopiedFiles:     []string{testAccountObjectPathConstant},
			expectedOverriddenFiles: []string{testAccountObjectPathConstant},
			expectedContent: map[string]string{
				testAccountObjectPathConstant: "account-b",
				testContactObjectPathConstant: "contact-a",
			},
		},
		{
			name: "identical_content_is_not_an_override",
			existingDestination: map[string]string{
				testAccountObjectPathConstant: "account-shared",
			},
			source: map[string]string{
				testAccountObjectPathConstant: "account-shared",
			},
			expectedCopiedFiles:    []string{testAccountObjectPathConstant},
			expectedIdenticalFiles: []string{testAccountObjectPathConstant},
			expectedContent: map[string]string{
				testAccountObjectPathConstant: "account-shared",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fileSystem := afero.NewMemMapFs()
			for relativePath, content := range testCase.existingDestination {
				writeTestFile(testInstance, fileSystem, filepath.Join(testDestinationRootConstant, relativePath), content)
			}
			for relativePath, content := range testCase.source {
				writeTestFile(testInstance, fileSystem, filepath.Join(testSourceRootConstant, relativePath), content)
			}

			treeManager := filesystem.NewTreeManager(fileSystem)
			result, copyError := treeManager.CopyTree(context.Background(), testSourceRootConstant, testDestinationRootConstant)
			require.NoError(testInstance, copyError)

			require.ElementsMatch(testInstance, testCase.expectedCopiedFiles, result.CopiedFiles)
			require.ElementsMatch(testInstance, testCase.expectedOverriddenFiles, result.OverriddenFiles)
			require.ElementsMatch(testInstance, testCase.expectedIdenticalFiles, result.IdenticalFiles)
			for relativePath, expectedContent := range testCase.expectedContent {
				require.Equal(testInstance, expectedContent, readTestFile(testInstance, fileSystem, filepath.Join(testDestinationRootConstant, relativePath)))
			}
		})
	}
}

func TestTreeManagerCopyTreeOverridesReadOnlyDestination(testInstance *testing.T) {
	fileSystem := afero.NewOsFs()
	projectRoot := testInstance.TempDir()
	firstSourceRoot := filepath.Join(projectRoot, "pkgA", "objects")
	secondSourceRoot := filepath.Join(projectRoot, "pkgB", "objects")
	destinationRoot := filepath.Join(projectRoot, "default", "objects")

	for sourceRoot, content := range map[string]string{firstSourceRoot: "account from pkgA", secondSourceRoot: "account from pkgB"} {
		sourcePath := filepath.Join(sourceRoot, testAccountObjectPathConstant)
		require.NoError(testInstance, fileSystem.MkdirAll(filepath.Dir(sourcePath), 0o755))
		require.NoError(testInstance, afero.WriteFile(fileSystem, sourcePath, []byte(content), testReadOnlyPermissionsConstant))
	}

	treeManager := filesystem.NewTreeManager(fileSystem)
	_, firstCopyError := treeManager.CopyTree(context.Background(), firstSourceRoot, destinationRoot)
	require.NoError(testInstance, firstCopyError)

	destinationPath := filepath.Join(destinationRoot, testAccountObjectPathConstant)
	destinationInfo, statError := fileSystem.Stat(destinationPath)
	require.NoError(testInstance, statError)
	require.Equal(testInstance, os.FileMode(testReadOnlyPermissionsConstant), destinationInfo.Mode().Perm())

	secondResult, secondCopyError := treeManager.CopyTree(context.Background(), secondSourceRoot, destinationRoot)
	require.NoError(testInstance, secondCopyError)
	require.Equal(testInstance, []string{testAccountObjectPathConstant}, secondResult.OverriddenFiles)
	require.Equal(testInstance, "account from pkgB", readTestFile(testInstance, fileSystem, destinationPath))
}

func TestTreeManagerCopyTreeRejectsMissingSource(testInstance *testing.T) {
	treeManager := filesystem.NewTreeManager(afero.NewMemMapFs())
	_, copyError := treeManager.CopyTree(context.Background(), testSourceRootConstant, testDestinationRootConstant)
	require.Error(testInstance, copyError)
}

func TestTreeManagerCopyTreeHonorsCancellation(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeTestFile(testInstance, fileSystem, filepath.Join(testSourceRootConstant, testAccountObjectPathConstant), "account")

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, copyError := filesystem.NewTreeManager(fileSystem).CopyTree(cancelledContext, testSourceRootConstant, testDestinationRootConstant)
	require.ErrorIs(testInstance, copyError, context.Canceled)
}

func TestTreeManagerRemoveTree(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	treeManager := filesystem.NewTreeManager(fileSystem)

	require.NoError(testInstance, treeManager.RemoveTree("/project/default"))

	writeTestFile(testInstance, fileSystem, filepath.Join(testDestinationRootConstant, testAccountObjectPathConstant), "stale")
	require.NoError(testInstance, treeManager.RemoveTree("/project/default"))

	exists, existsError := afero.Exists(fileSystem, "/project/default")
	require.NoError(testInstance, existsError)
	require.False(testInstance, exists)

	require.NoError(testInstance, treeManager.EnsureDirectories(testDestinationRootConstant, "/project/default/labels"))
	isDirectory, directoryError := afero.DirExists(fileSystem, "/project/default/labels")
	require.NoError(testInstance, directoryError)
	require.True(testInstance, isDirectory)
}

func TestContentDigesterSameContent(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeTestFile(testInstance, fileSystem, "/a.xml", "<value>Hi</value>")
	writeTestFile(testInstance, fileSystem, "/b.xml", "<value>Hi</value>")
	writeTestFile(testInstance, fileSystem, "/c.xml", "<value>Hello</value>")

	digester := filesystem.NewContentDigester(fileSystem)

	sameContent, compareError := digester.SameContent("/a.xml", "/b.xml")
	require.NoError(testInstance, compareError)
	require.True(testInstance, sameContent)

	differentContent, differentError := digester.SameContent("/a.xml", "/c.xml")
	require.NoError(testInstance, differentError)
	require.False(testInstance, differentContent)

	_, missingError := digester.Digest("/missing.xml")
	require.Error(testInstance, missingError)
}
