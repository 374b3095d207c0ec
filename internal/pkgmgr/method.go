package pkgmgr

import (
	"fmt"
	"strings"
)

// Method indicates how the framework was installed.
type Method int

const (
	// MethodUnknown indicates the installation method could not be determined.
	MethodUnknown Method = iota
	// MethodPipx indicates an isolated pipx installation.
	MethodPipx
	// MethodPipUser indicates a user-scoped pip install (externally managed Python).
	MethodPipUser
	// MethodPipGlobal indicates a plain pip install into the active interpreter.
	MethodPipGlobal
	// MethodNPMGlobal indicates a global npm or yarn install.
	MethodNPMGlobal
)

// String returns the string representation of a Method.
func (m Method) String() string {
	switch m {
	case MethodPipx:
		return "pipx"
	case MethodPipUser:
		return "pip-user"
	case MethodPipGlobal:
		return "pip-global"
	case MethodNPMGlobal:
		return "npm-global"
	default:
		return "unknown"
	}
}

// IsPipFamily reports whether m upgrades a Python distribution.
func (m Method) IsPipFamily() bool {
	return m == MethodPipx || m == MethodPipUser || m == MethodPipGlobal
}

// ParseMethod parses the names produced by String. "npm" and "yarn" are
// accepted as aliases for npm-global.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pipx":
		return MethodPipx, nil
	case "pip-user", "user":
		return MethodPipUser, nil
	case "pip-global", "pip":
		return MethodPipGlobal, nil
	case "npm-global", "npm", "yarn":
		return MethodNPMGlobal, nil
	default:
		return MethodUnknown, fmt.Errorf("unknown install method %q: expected pipx, pip-user, pip-global or npm-global", s)
	}
}

// Node package manager names used in Resolution.NodeTool.
const (
	ToolNPM  = "npm"
	ToolYarn = "yarn"
)

// Resolution is the classified installation: the method plus the concrete
// tool the Executor must invoke for it.
type Resolution struct {
	Method Method
	// Pip is the pip invocation for pip-user/pip-global, e.g. ["pip3"] or
	// ["python3", "-m", "pip"].
	Pip []string
	// NodeTool is "npm" or "yarn" for npm-global.
	NodeTool string
}

// String renders the resolution for diagnostics.
func (r Resolution) String() string {
	switch {
	case len(r.Pip) > 0:
		return fmt.Sprintf("%s (%s)", r.Method, strings.Join(r.Pip, " "))
	case r.NodeTool != "":
		return fmt.Sprintf("%s (%s)", r.Method, r.NodeTool)
	default:
		return r.Method.String()
	}
}
