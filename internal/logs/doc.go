// Package logs reads the JSON log file vidblur appends to on every run.
//
// Tail returns the last lines of the file together with the byte offset at
// which follow-mode polling resumes; Follow streams lines appended after that
// offset until the context ends. Entry decodes a JSON record and Filter
// narrows output to one run or a minimum level, which is how
// `vidblur logs --run <id>` isolates a single pipeline run.
package logs
