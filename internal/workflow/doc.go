// Package workflow runs one blur job end to end.
//
// Pipeline.Run takes the run lock, asks the StrengthSelector for a kernel,
// renders and muxes a short sample, asks the Confirmer before rendering the
// full video, and finally muxes the full render into the output path. Every
// render is recorded in the history store with the run ID that also tags the
// log lines.
package workflow
