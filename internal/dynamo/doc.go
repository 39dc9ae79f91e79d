// Package dynamo provides the primitives the simulation host integrates the
// vehicle plant with.
//
//   - [State]: vector representing plant state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper
//   - [Constrained]: optional projection applied after each step
//
// # Example
//
//	plant := physics.NewQuadrotor()
//	integ := integrators.NewRK4()
//	x := integ.Step(plant, x, u, t, dt)
//	x = plant.Constrain(x)
package dynamo
