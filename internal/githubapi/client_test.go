package githubapi_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/orgdump/internal/githubapi"
)

const (
	testOrganizationConstant = "my-org"
	testUserConstant         = "solo"
	testTokenConstant        = "token-123"
)

func newTestServer(testInstance *testing.T) (*httptest.Server, *[]string) {
	testInstance.Helper()
	var authorizationHeaders []string

	serveMux := http.NewServeMux()
	var server *httptest.Server

	serveMux.HandleFunc("/orgs/"+testOrganizationConstant+"/repos", func(writer http.ResponseWriter, request *http.Request) {
		authorizationHeaders = append(authorizationHeaders, request.Header.Get("Authorization"))
		writer.Header().Set("Content-Type", "application/json")
		if request.URL.Query().Get("page") == "2" {
			fmt.Fprint(writer, `[{"full_name":"my-org/gamma","name":"gamma","description":null}]`)
			return
		}
		writer.Header().Set("Link", fmt.Sprintf(`<%s/orgs/%s/repos?page=2>; rel="next"`, server.URL, testOrganizationConstant))
		fmt.Fprint(writer, `[{"full_name":"my-org/alpha","name":"alpha","description":"First\nservice"},{"full_name":"my-org/beta","name":"beta"}]`)
	})
	serveMux.HandleFunc("/orgs/"+testUserConstant+"/repos", func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusNotFound)
		fmt.Fprint(writer, `{"message":"Not Found"}`)
	})
	serveMux.HandleFunc("/users/"+testUserConstant+"/repos", func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		fmt.Fprint(writer, `[{"name":"dotfiles","owner":{"login":"solo"}}]`)
	})
	serveMux.HandleFunc("/repos/"+testOrganizationConstant+"/alpha", func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		fmt.Fprint(writer, `{"full_name":"my-org/alpha","default_branch":"develop"}`)
	})
	serveMux.HandleFunc("/repos/"+testOrganizationConstant+"/missing", func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusNotFound)
		fmt.Fprint(writer, `{"message":"Not Found"}`)
	})

	server = httptest.NewServer(serveMux)
	testInstance.Cleanup(server.Close)
	return server, &authorizationHeaders
}

func newTestClient(testInstance *testing.T, server *httptest.Server) *githubapi.Client {
	testInstance.Helper()
	client, creationError := githubapi.NewClient(server.Client(), testTokenConstant, githubapi.WithBaseURL(server.URL))
	require.NoError(testInstance, creationError)
	return client
}

func TestListRepositoriesPagesThroughOrganization(testInstance *testing.T) {
	server, authorizationHeaders := newTestServer(testInstance)
	client := newTestClient(testInstance, server)

	lines, listError := client.ListRepositories(context.Background(), testOrganizationConstant, 0)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{
		"my-org/alpha\tFirst service",
		"my-org/beta\t",
		"my-org/gamma\t",
	}, lines)
	require.NotEmpty(testInstance, *authorizationHeaders)
	require.Equal(testInstance, "Bearer "+testTokenConstant, (*authorizationHeaders)[0])
}

func TestListRepositoriesHonorsLimit(testInstance *testing.T) {
	server, _ := newTestServer(testInstance)
	client := newTestClient(testInstance, server)

	lines, listError := client.ListRepositories(context.Background(), testOrganizationConstant, 1)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{"my-org/alpha\tFirst service"}, lines)
}

func TestListRepositoriesFallsBackToUserAccount(testInstance *testing.T) {
	server, _ := newTestServer(testInstance)
	client := newTestClient(testInstance, server)

	lines, listError := client.ListRepositories(context.Background(), testUserConstant, 10)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{"solo/dotfiles\t"}, lines)
}

func TestListRepositoriesRequiresOwner(testInstance *testing.T) {
	server, _ := newTestServer(testInstance)
	client := newTestClient(testInstance, server)

	_, listError := client.ListRepositories(context.Background(), "  ", 10)
	require.ErrorIs(testInstance, listError, githubapi.ErrOwnerRequired)
}

func TestResolveDefaultBranch(testInstance *testing.T) {
	server, _ := newTestServer(testInstance)
	client := newTestClient(testInstance, server)

	testCases := []struct {
		name           string
		fullName       string
		expectedBranch string
		expectError    bool
	}{
		{name: "configured_branch", fullName: "my-org/alpha", expectedBranch: "develop"},
		{name: "missing_repository", fullName: "my-org/missing", expectError: true},
		{name: "malformed_name", fullName: "alpha", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			branch, resolveError := client.ResolveDefaultBranch(context.Background(), testCase.fullName)
			if testCase.expectError {
				require.Error(testInstance, resolveError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedBranch, branch)
		})
	}
}
