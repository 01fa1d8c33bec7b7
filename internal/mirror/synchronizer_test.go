package mirror

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testFullNameConstant    = "my-org/widgets"
	testDestinationConstant = "/srv/repositories/widgets"
	testBranchConstant      = "develop"
	testRemoteURLConstant   = "https://github.com/my-org/widgets.git"
)

type recordedCall struct {
	operation string
	arguments []string
}

type stubVersionControl struct {
	calls         []recordedCall
	cloneError    error
	checkoutError error
	pullError     error
}

func (client *stubVersionControl) Clone(_ context.Context, remoteURL string, destination string) error {
	client.calls = append(client.calls, recordedCall{operation: "clone", arguments: []string{remoteURL, destination}})
	return client.cloneError
}

func (client *stubVersionControl) Checkout(_ context.Context, repositoryPath string, branch string) error {
	client.calls = append(client.calls, recordedCall{operation: "checkout", arguments: []string{repositoryPath, branch}})
	return client.checkoutError
}

func (client *stubVersionControl) Pull(_ context.Context, repositoryPath string, branch string) error {
	client.calls = append(client.calls, recordedCall{operation: "pull", arguments: []string{repositoryPath, branch}})
	return client.pullError
}

type stubRemoteURLs struct {
	buildError error
}

func (builder stubRemoteURLs) Build(string) (string, error) {
	if builder.buildError != nil {
		return "", builder.buildError
	}
	return testRemoteURLConstant, nil
}

type stubFileSystem struct {
	statError error
}

func (fileSystem stubFileSystem) Stat(string) (fs.FileInfo, error) {
	return nil, fileSystem.statError
}

func TestNewSynchronizerValidatesDependencies(t *testing.T) {
	testCases := []struct {
		name         string
		dependencies Dependencies
		expectedErr  error
	}{
		{name: "MissingVersionControl", dependencies: Dependencies{RemoteURLs: stubRemoteURLs{}, FileSystem: stubFileSystem{}}, expectedErr: ErrVersionControlClientNotConfigured},
		{name: "MissingRemoteURLs", dependencies: Dependencies{VersionControl: &stubVersionControl{}, FileSystem: stubFileSystem{}}, expectedErr: ErrRemoteURLBuilderNotConfigured},
		{name: "MissingFileSystem", dependencies: Dependencies{VersionControl: &stubVersionControl{}, RemoteURLs: stubRemoteURLs{}}, expectedErr: ErrFileSystemNotConfigured},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			synchronizer, creationError := NewSynchronizer(testCase.dependencies)
			require.ErrorIs(t, creationError, testCase.expectedErr)
			require.Nil(t, synchronizer)
		})
	}
}

func TestSynchronizeValidatesOptions(t *testing.T) {
	synchronizer, creationError := NewSynchronizer(Dependencies{VersionControl: &stubVersionControl{}, RemoteURLs: stubRemoteURLs{}, FileSystem: stubFileSystem{}})
	require.NoError(t, creationError)

	_, err := synchronizer.Synchronize(context.Background(), Options{Destination: testDestinationConstant, Branch: testBranchConstant})
	require.ErrorIs(t, err, ErrFullNameRequired)
	_, err = synchronizer.Synchronize(context.Background(), Options{FullName: testFullNameConstant, Branch: testBranchConstant})
	require.ErrorIs(t, err, ErrDestinationRequired)
	_, err = synchronizer.Synchronize(context.Background(), Options{FullName: testFullNameConstant, Destination: testDestinationConstant})
	require.ErrorIs(t, err, ErrBranchRequired)
}

func TestSynchronizeBehaviour(t *testing.T) {
	testCases := []struct {
		name           string
		statError      error
		versionControl *stubVersionControl
		remoteURLs     stubRemoteURLs
		expectedResult SyncResult
		expectedStage  Stage
		expectedCalls  []recordedCall
		expectedWarns  int
	}{
		{
			name:           "CloneWhenMissing",
			statError:      fs.ErrNotExist,
			versionControl: &stubVersionControl{},
			expectedResult: SyncResult{LocalPath: testDestinationConstant, Branch: testBranchConstant, DidClone: true},
			expectedCalls: []recordedCall{
				{operation: "clone", arguments: []string{testRemoteURLConstant, testDestinationConstant}},
				{operation: "checkout", arguments: []string{testDestinationConstant, testBranchConstant}},
			},
		},
		{
			name:           "CheckoutFailureAfterCloneIsWarning",
			statError:      fs.ErrNotExist,
			versionControl: &stubVersionControl{checkoutError: errors.New("pathspec did not match")},
			expectedResult: SyncResult{LocalPath: testDestinationConstant, Branch: testBranchConstant, DidClone: true},
			expectedCalls: []recordedCall{
				{operation: "clone", arguments: []string{testRemoteURLConstant, testDestinationConstant}},
				{operation: "checkout", arguments: []string{testDestinationConstant, testBranchConstant}},
			},
			expectedWarns: 1,
		},
		{
			name:           "CloneFailure",
			statError:      fs.ErrNotExist,
			versionControl: &stubVersionControl{cloneError: errors.New("repository not found")},
			expectedStage:  StageClone,
			expectedCalls: []recordedCall{
				{operation: "clone", arguments: []string{testRemoteURLConstant, testDestinationConstant}},
			},
		},
		{
			name:           "RemoteURLFailure",
			statError:      fs.ErrNotExist,
			versionControl: &stubVersionControl{},
			remoteURLs:     stubRemoteURLs{buildError: errors.New("bad name")},
			expectedStage:  StageRemoteURL,
		},
		{
			name:           "UpdateWhenPresent",
			versionControl: &stubVersionControl{},
			expectedResult: SyncResult{LocalPath: testDestinationConstant, Branch: testBranchConstant, DidClone: false},
			expectedCalls: []recordedCall{
				{operation: "checkout", arguments: []string{testDestinationConstant, testBranchConstant}},
				{operation: "pull", arguments: []string{testDestinationConstant, testBranchConstant}},
			},
		},
		{
			name:           "CheckoutFailureWhenPresent",
			versionControl: &stubVersionControl{checkoutError: errors.New("local changes would be overwritten")},
			expectedStage:  StageCheckout,
			expectedCalls: []recordedCall{
				{operation: "checkout", arguments: []string{testDestinationConstant, testBranchConstant}},
			},
		},
		{
			name:           "PullFailureWhenPresent",
			versionControl: &stubVersionControl{pullError: errors.New("not possible to fast-forward")},
			expectedStage:  StagePull,
			expectedCalls: []recordedCall{
				{operation: "checkout", arguments: []string{testDestinationConstant, testBranchConstant}},
				{operation: "pull", arguments: []string{testDestinationConstant, testBranchConstant}},
			},
		},
		{
			name:           "InspectionFailure",
			statError:      fs.ErrPermission,
			versionControl: &stubVersionControl{},
			expectedStage:  StageInspect,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			synchronizer, creationError := NewSynchronizer(Dependencies{
				VersionControl: testCase.versionControl,
				RemoteURLs:     testCase.remoteURLs,
				FileSystem:     stubFileSystem{statError: testCase.statError},
				Logger:         zap.New(observerCore),
			})
			require.NoError(t, creationError)

			result, err := synchronizer.Synchronize(context.Background(), Options{
				FullName:    testFullNameConstant,
				Destination: testDestinationConstant,
				Branch:      testBranchConstant,
			})

			require.Equal(t, testCase.expectedCalls, testCase.versionControl.calls)
			require.Equal(t, testCase.expectedWarns, observedLogs.FilterLevelExact(zapcore.WarnLevel).Len())

			if len(testCase.expectedStage) > 0 {
				var synchronizationError SynchronizationError
				require.ErrorAs(t, err, &synchronizationError)
				require.Equal(t, testCase.expectedStage, synchronizationError.Stage)
				require.Equal(t, testFullNameConstant, synchronizationError.FullName)
				require.Equal(t, SyncResult{}, result)
				return
			}
			require.NoError(t, err)
			require.Equal(t, testCase.expectedResult, result)
		})
	}
}
