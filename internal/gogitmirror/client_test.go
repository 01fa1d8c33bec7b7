package gogitmirror_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/temirov/orgdump/internal/gogitmirror"
)

const (
	testMainBranchConstant    = "main"
	testDevelopBranchConstant = "develop"
)

type sourceRepository struct {
	path       string
	repository *git.Repository
}

func newSourceRepository(testInstance *testing.T) sourceRepository {
	testInstance.Helper()
	if _, lookupError := exec.LookPath("git-upload-pack"); lookupError != nil {
		testInstance.Skip("git-upload-pack is required for local clones")
	}

	sourcePath := testInstance.TempDir()
	repository, initError := git.PlainInitWithOptions(sourcePath, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(testMainBranchConstant)},
	})
	require.NoError(testInstance, initError)

	source := sourceRepository{path: sourcePath, repository: repository}
	commitHash := source.commitFile(testInstance, "README.md", "hello\n")
	require.NoError(testInstance, repository.Storer.SetReference(plumbing.NewHashReference(plumbing.NewBranchReferenceName(testDevelopBranchConstant), commitHash)))
	return source
}

func (source sourceRepository) commitFile(testInstance *testing.T, name string, content string) plumbing.Hash {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(filepath.Join(source.path, name), []byte(content), 0o600))

	worktree, worktreeError := source.repository.Worktree()
	require.NoError(testInstance, worktreeError)
	_, addError := worktree.Add(name)
	require.NoError(testInstance, addError)

	commitHash, commitError := worktree.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "Exporter", Email: "exporter@example.com", When: time.Unix(1700000000, 0)},
	})
	require.NoError(testInstance, commitError)
	return commitHash
}

func currentBranch(testInstance *testing.T, repositoryPath string) string {
	testInstance.Helper()
	repository, openError := git.PlainOpen(repositoryPath)
	require.NoError(testInstance, openError)
	head, headError := repository.Head()
	require.NoError(testInstance, headError)
	return head.Name().Short()
}

func TestClientCloneCheckoutAndPull(testInstance *testing.T) {
	source := newSourceRepository(testInstance)
	destination := filepath.Join(testInstance.TempDir(), "widgets")
	client := gogitmirror.NewClient()
	executionContext := context.Background()

	require.NoError(testInstance, client.Clone(executionContext, source.path, destination))
	require.FileExists(testInstance, filepath.Join(destination, "README.md"))
	require.Equal(testInstance, testMainBranchConstant, currentBranch(testInstance, destination))

	require.NoError(testInstance, client.Checkout(executionContext, destination, testDevelopBranchConstant))
	require.Equal(testInstance, testDevelopBranchConstant, currentBranch(testInstance, destination))

	require.NoError(testInstance, client.Checkout(executionContext, destination, testMainBranchConstant))
	require.NoError(testInstance, client.Pull(executionContext, destination, testMainBranchConstant))

	source.commitFile(testInstance, "CHANGELOG.md", "v1\n")
	require.NoError(testInstance, client.Pull(executionContext, destination, testMainBranchConstant))
	require.FileExists(testInstance, filepath.Join(destination, "CHANGELOG.md"))
}

func TestClientCheckoutUnknownBranchFails(testInstance *testing.T) {
	source := newSourceRepository(testInstance)
	destination := filepath.Join(testInstance.TempDir(), "widgets")
	client := gogitmirror.NewClient()

	require.NoError(testInstance, client.Clone(context.Background(), source.path, destination))
	require.Error(testInstance, client.Checkout(context.Background(), destination, "release"))
	require.Equal(testInstance, testMainBranchConstant, currentBranch(testInstance, destination))
}

func TestClientRejectsMissingRepository(testInstance *testing.T) {
	client := gogitmirror.NewClient(gogitmirror.WithAccessToken("secret"))
	missingPath := filepath.Join(testInstance.TempDir(), "absent")

	require.Error(testInstance, client.Checkout(context.Background(), missingPath, testMainBranchConstant))
	require.Error(testInstance, client.Pull(context.Background(), missingPath, testMainBranchConstant))
	require.Error(testInstance, client.Clone(context.Background(), "", missingPath))
	require.Error(testInstance, client.Checkout(context.Background(), missingPath, " "))
}
