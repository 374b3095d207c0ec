package pkgmgr

import (
	"errors"
	"fmt"
)

// ErrNoPackageManager is returned when none of the supported package
// managers is available.
var ErrNoPackageManager = errors.New("no supported package manager found")

// UpgradeError describes a failed upgrade command.
type UpgradeError struct {
	Method      Method
	Command     string
	ExitCode    int
	Stderr      string
	Remediation string
	Err         error
}

func (e *UpgradeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upgrade via %s failed: %s: %v", e.Method, e.Command, e.Err)
	}
	return fmt.Sprintf("upgrade via %s failed (exit %d): %s", e.Method, e.ExitCode, e.Command)
}

func (e *UpgradeError) Unwrap() error {
	return e.Err
}
