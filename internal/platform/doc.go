// Package platform provides cross-platform filesystem helpers: permission
// management that is a no-op on Windows and whole-file atomic writes used
// for the version cache, so concurrent invocations never observe a partially
// written file.
package platform
