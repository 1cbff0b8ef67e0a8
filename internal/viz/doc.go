// Package viz provides terminal views of recorded trajectories.
//
//   - [Replay]: Bubble Tea program that plays a trajectory back on a
//     braille [Canvas] with body trails and a rolling energy chart
//   - [PlotBodies], [PlotEnergy]: asciigraph charts for the plot command
//   - lipgloss styles shared with the CLI summary output
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	R     - Restart from the first step
//	T     - Toggle trails
//	←/→   - Seek by the current speed
//	+/-   - Double/halve playback speed
//	Q     - Quit
package viz
