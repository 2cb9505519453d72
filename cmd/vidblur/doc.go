// Package main hosts the vidblur CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, sets up structured logging,
// and hands off to the workflow, render, and media packages. The run command
// drives the interactive blur pipeline; the remaining commands expose the
// media helpers (probe, cfr, trim, frame-time) and render history.
package main
