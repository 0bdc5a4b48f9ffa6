package dotnet

import (
	"context"
	"strings"
)

// MockExecutor is a mock implementation of Executor for testing
type MockExecutor struct {
	Outputs    map[string][]byte // Output per space-joined argument list
	MockOutput []byte            // Output for anything not in Outputs
	MockError  error
	Calls      []Call

	// OnRun, if set, runs for every call before the output is returned
	OnRun func(dir string, args []string) error
}

// Call is one recorded invocation
type Call struct {
	Dir  string
	Args []string
}

func (m *MockExecutor) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, Call{Dir: dir, Args: args})
	if m.OnRun != nil {
		if err := m.OnRun(dir, args); err != nil {
			return nil, err
		}
	}
	if m.MockError != nil {
		return nil, m.MockError
	}
	if out, ok := m.Outputs[strings.Join(args, " ")]; ok {
		return out, nil
	}
	return m.MockOutput, nil
}
