package pkgmgr

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/superclaude-org/superclaude/internal/runtime"
)

var testHook = []string{"superclaude", "install", "--force"}

func newTestExecutor(m *runtime.MockRunner) *Executor {
	return NewExecutor(m, testPyPI, testNPM, WithPostUpgrade(testHook))
}

func TestCommandFor(t *testing.T) {
	e := newTestExecutor(runtime.NewMockRunner())
	tests := []struct {
		name string
		res  Resolution
		want string
	}{
		{"pipx", Resolution{Method: MethodPipx}, "pipx upgrade SuperClaude"},
		{"pip-user", Resolution{Method: MethodPipUser, Pip: []string{"pip3"}}, "pip3 install --upgrade --user SuperClaude"},
		{"pip-global", Resolution{Method: MethodPipGlobal, Pip: []string{"python3", "-m", "pip"}}, "python3 -m pip install --upgrade SuperClaude"},
		{"pip-global default pip", Resolution{Method: MethodPipGlobal}, "pip install --upgrade SuperClaude"},
		{"npm", Resolution{Method: MethodNPMGlobal, NodeTool: ToolNPM}, "npm update -g @bifrost_inc/superclaude"},
		{"yarn", Resolution{Method: MethodNPMGlobal, NodeTool: ToolYarn}, "yarn global upgrade @bifrost_inc/superclaude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			argv, err := e.CommandFor(tt.res)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := runtime.CommandLine(argv[0], argv[1:]...); got != tt.want {
				t.Errorf("CommandFor = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := e.CommandFor(Resolution{}); !errors.Is(err, ErrNoPackageManager) {
		t.Errorf("unknown method: expected ErrNoPackageManager, got %v", err)
	}
}

func TestCommandFor_DoesNotAliasPip(t *testing.T) {
	pip := make([]string, 1, 8)
	pip[0] = "pip3"
	res := Resolution{Method: MethodPipUser, Pip: pip}

	e := newTestExecutor(runtime.NewMockRunner())
	first, _ := e.CommandFor(res)
	res.Method = MethodPipGlobal
	second, _ := e.CommandFor(res)

	if strings.Join(first, " ") != "pip3 install --upgrade --user SuperClaude" {
		t.Errorf("first command corrupted: %v", first)
	}
	if strings.Join(second, " ") != "pip3 install --upgrade SuperClaude" {
		t.Errorf("second command = %v", second)
	}
}

func TestUpgrade_PipxSuccessRunsHook(t *testing.T) {
	mock := runtime.NewMockRunner().
		On("pipx upgrade SuperClaude", "upgraded package SuperClaude from 4.0.6 to 4.0.8").
		On("superclaude install --help", "usage: superclaude install [-h] [--force]").
		On("superclaude install --force", "done")

	r := newTestExecutor(mock).Upgrade(context.Background(), Resolution{Method: MethodPipx})
	if !r.Success || r.Err != nil {
		t.Fatalf("expected success, got %+v", r)
	}
	if r.Warning != "" {
		t.Errorf("unexpected warning: %s", r.Warning)
	}
	if !mock.Called("superclaude install --force") {
		t.Error("post-upgrade hook was not run")
	}
}

func TestUpgrade_HookFailureIsWarning(t *testing.T) {
	mock := runtime.NewMockRunner().
		On("pip3 install --upgrade SuperClaude", "Successfully installed SuperClaude-4.0.8").
		On("superclaude install --help", "usage: superclaude install [-h] [--force]").
		OnExit("superclaude install --force", 2, "boom")

	r := newTestExecutor(mock).Upgrade(context.Background(), Resolution{Method: MethodPipGlobal, Pip: []string{"pip3"}})
	if !r.Success {
		t.Fatalf("hook failure must not fail the upgrade: %+v", r)
	}
	if r.Warning == "" {
		t.Error("expected a warning for the failed hook")
	}
	if r.Err != nil {
		t.Errorf("Err = %v, want nil", r.Err)
	}
}

func TestUpgrade_HookSkippedWhenCommandMissing(t *testing.T) {
	tests := []struct {
		name string
		mock *runtime.MockRunner
	}{
		{
			name: "not on PATH",
			mock: runtime.NewMockRunner(),
		},
		{
			name: "no install subcommand",
			mock: runtime.NewMockRunner().
				OnExit("superclaude install --help", 1, `Error: unknown command "install" for "superclaude"`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mock.On("pip3 install --upgrade --user SuperClaude", "Successfully installed SuperClaude-4.0.8")

			r := newTestExecutor(tt.mock).Upgrade(context.Background(), Resolution{Method: MethodPipUser, Pip: []string{"pip3"}})
			if !r.Success || r.Err != nil {
				t.Fatalf("expected success, got %+v", r)
			}
			if !strings.Contains(r.Warning, "superclaude install --force") {
				t.Errorf("Warning = %q", r.Warning)
			}
			if tt.mock.Called("superclaude install --force") {
				t.Error("hook ran although its command is unavailable")
			}
		})
	}
}

func TestUpgrade_NPMSkipsHook(t *testing.T) {
	mock := runtime.NewMockRunner().
		On("npm update -g @bifrost_inc/superclaude", "changed 1 package")

	r := newTestExecutor(mock).Upgrade(context.Background(), Resolution{Method: MethodNPMGlobal, NodeTool: ToolNPM})
	if !r.Success {
		t.Fatalf("expected success: %+v", r)
	}
	if mock.Called("superclaude install --force") {
		t.Error("hook must only run after pip-family upgrades")
	}
}

func TestUpgrade_FailureMessagesAreMethodSpecific(t *testing.T) {
	mock := runtime.NewMockRunner().
		OnExit("pip3 install --upgrade SuperClaude", 1, "ERROR: Could not install packages").
		OnExit("pip3 install --upgrade --user SuperClaude", 1, "ERROR: Could not install packages")
	e := newTestExecutor(mock)
	ctx := context.Background()

	global := e.Upgrade(ctx, Resolution{Method: MethodPipGlobal, Pip: []string{"pip3"}})
	user := e.Upgrade(ctx, Resolution{Method: MethodPipUser, Pip: []string{"pip3"}})

	for _, r := range []UpgradeResult{global, user} {
		if r.Success {
			t.Fatalf("%v: expected failure", r.Method)
		}
		var uerr *UpgradeError
		if !errors.As(r.Err, &uerr) {
			t.Fatalf("%v: expected *UpgradeError, got %T", r.Method, r.Err)
		}
		if uerr.ExitCode != 1 {
			t.Errorf("%v: ExitCode = %d, want 1", r.Method, uerr.ExitCode)
		}
	}
	if global.Message == user.Message {
		t.Errorf("pip-global and pip-user failures share a message: %q", global.Message)
	}
	if mock.Called("superclaude install --force") {
		t.Error("hook must not run after a failed upgrade")
	}
}

func TestUpgrade_PipGlobalExternallyManagedSuggestsPipx(t *testing.T) {
	mock := runtime.NewMockRunner().
		OnExit("pip install --upgrade SuperClaude", 1, "error: externally-managed-environment\n\n× This environment is externally managed")

	r := newTestExecutor(mock).Upgrade(context.Background(), Resolution{Method: MethodPipGlobal, Pip: []string{"pip"}})
	if r.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(r.Message, "pipx upgrade SuperClaude") {
		t.Errorf("message should suggest pipx: %q", r.Message)
	}
}

func TestUpgrade_MissingExecutable(t *testing.T) {
	r := newTestExecutor(runtime.NewMockRunner()).Upgrade(context.Background(), Resolution{Method: MethodPipx})
	if r.Success {
		t.Fatal("expected failure")
	}
	if !errors.Is(r.Err, runtime.ErrNotFound) {
		t.Errorf("expected wrapped ErrNotFound, got %v", r.Err)
	}
	if !strings.Contains(r.Message, "pipx is not on PATH") {
		t.Errorf("unexpected message: %q", r.Message)
	}
}

func TestUpgrade_UnknownMethod(t *testing.T) {
	mock := runtime.NewMockRunner()
	r := newTestExecutor(mock).Upgrade(context.Background(), Resolution{Method: MethodUnknown})
	if r.Success || !errors.Is(r.Err, ErrNoPackageManager) {
		t.Errorf("expected ErrNoPackageManager failure, got %+v", r)
	}
	if len(mock.Calls) != 0 {
		t.Errorf("no command should run, got %v", mock.Calls)
	}
}
