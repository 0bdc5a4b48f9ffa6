package dotnet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSDKVersion(t *testing.T) {
	mock := &MockExecutor{MockOutput: []byte("8.0.404\n")}
	shell := NewShell(mock)

	version, major, err := shell.SDKVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8.0.404", version)
	assert.Equal(t, 8, major)
	require.Len(t, mock.Calls, 1)
	assert.Equal(t, []string{"--version"}, mock.Calls[0].Args)
}

func TestSDKVersion_Garbage(t *testing.T) {
	shell := NewShell(&MockExecutor{MockOutput: []byte("command not found")})
	_, _, err := shell.SDKVersion(context.Background())
	assert.ErrorContains(t, err, "unrecognised dotnet version")
}

func TestCreateSolution(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    []string
	}{
		{"sdk 8", "8.0.100", []string{"new", "sln", "--name", "All", "--output", "/work"}},
		{"sdk 9 asks for classic format", "9.0.100", []string{"new", "sln", "--name", "All", "--output", "/work", "--format", "sln"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockExecutor{Outputs: map[string][]byte{"--version": []byte(tt.version)}}
			require.NoError(t, NewShell(mock).CreateSolution(context.Background(), "/work/All.sln"))

			require.Len(t, mock.Calls, 2)
			assert.Equal(t, "/work", mock.Calls[1].Dir)
			assert.Equal(t, tt.want, mock.Calls[1].Args)
		})
	}
}

func TestAddProjects(t *testing.T) {
	mock := &MockExecutor{}
	shell := NewShell(mock)

	require.NoError(t, shell.AddProjects(context.Background(), "/work/All.sln"))
	assert.Empty(t, mock.Calls)

	require.NoError(t, shell.AddProjects(context.Background(), "/work/All.sln", "/work/A/A.csproj", "/work/B/B.csproj"))
	require.Len(t, mock.Calls, 1)
	assert.Equal(t, []string{"sln", "/work/All.sln", "add", "--in-root", "/work/A/A.csproj", "/work/B/B.csproj"}, mock.Calls[0].Args)

	mock.MockError = errors.New("exit status 1")
	err := shell.AddProjects(context.Background(), "/work/All.sln", "/work/C/C.csproj")
	assert.ErrorContains(t, err, "adding projects to /work/All.sln")
}
