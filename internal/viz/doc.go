// Package viz flies a vehicle live in the terminal with Bubble Tea.
//
// The left pane is a braille [Canvas] showing the ground track from above,
// radar contacts and the heading. The right pane charts battery and
// altitude and shows the energy breakdown and the safe-landing state.
//
// # Key Bindings
//
//	Arrows       - Pitch and yaw, held briefly
//	Shift+Arrows - Strafe, or step the target altitude
//	Space        - Pause/Resume
//	R            - Restart the flight
//	T            - Cycle color themes
//	?            - Show the flight keys
package viz
