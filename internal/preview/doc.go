// Package preview lets an operator choose a blur strength from the terminal.
//
// A random frame of the source is blurred at the current strength and written
// to a PNG that any image viewer can keep open and reload. The operator
// adjusts the strength line by line and confirms with an empty line.
package preview
