// Package runtime runs external programs on behalf of the update helper.
// Runner is the single seam between the classifier/executor logic and the
// operating system: ExecRunner spawns real child processes, MockRunner
// answers from a table so package-manager detection can be tested without
// pip, pipx or npm installed. Prober builds the "is this command usable"
// check on top of a Runner.
package runtime
