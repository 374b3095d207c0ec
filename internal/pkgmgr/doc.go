// Package pkgmgr works out how the framework was installed and drives the
// matching upgrade command.
//
// The Classifier inspects the machine (pipx listing, the interpreter's
// EXTERNALLY-MANAGED marker, pip/npm/yarn availability) and returns a
// Resolution. The Executor turns a Resolution into exactly one upgrade
// command, reports the outcome with remediation text, and runs the
// post-upgrade hook after pip-family upgrades. Both talk to the system only
// through runtime.Runner.
package pkgmgr
