// Package viz renders spinodal runs in the terminal.
//
// [Model] is a Bubble Tea program that advances a solver in chunks and shows
// the concentration field as a Braille [Canvas], a profile through one row,
// and asciigraph plots of the energy history. [PlotHistory] renders stored
// histories for the plot command.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the initial field
//	[ ]   - Move the profile row
//	?     - Show help overlay
//	Q     - Quit
package viz
