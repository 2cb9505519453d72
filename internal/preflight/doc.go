// Package preflight provides readiness checks for the binaries and
// filesystem paths that vidblur depends on.
//
// These checks run in two contexts:
//   - The run command calls RunAll before rendering, so a missing source or
//     an unwritable output directory fails before the operator picks a
//     strength.
//   - The CLI "vidblur status" command displays every result.
package preflight
