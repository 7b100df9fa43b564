// Package soundcloud wraps yt-dlp for playlist inspection and track
// downloads. All command execution flows through an Executor so tests can
// drive the client without spawning processes.
package soundcloud
