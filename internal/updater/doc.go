// Package updater implements the update check for the framework. It queries
// PyPI or the npm registry for the latest published version, keeps a
// once-a-day JSON cache per registry, compares versions with semver ordering,
// and powers the startup notifier that either prints a banner or applies the
// upgrade through pkgmgr.
package updater
