// Package preflight runs environment checks before sync and processing
// start: external binaries, directory access, and free disk space.
package preflight
