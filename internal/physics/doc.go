// Package physics models the quadrotor airframe the host flies.
//
// [Quadrotor] implements [dynamo.System] over a twelve-element state:
// position and velocity in the ground frame, then roll, pitch and yaw with
// their body rates. Each propeller's lift grows with the square of its
// speed; the speed difference between the diagonal pairs yaws the frame.
//
// It also implements [dynamo.Constrained] so the vehicle cannot sink
// through the ground, and [dynamo.Configurable] for mass and drag:
//
//	q := physics.NewQuadrotor()
//	_ = q.SetParam("mass", 1.2)
package physics
