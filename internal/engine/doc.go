// Package engine implements the discrete-event simulation of two blocks
// colliding elastically in one dimension against a rigid wall.
//
// The engine advances the system from collision to collision in closed form
// (constant velocity between events, no timestep), so the only sources of
// error are floating-point rounding in the event times and velocity updates.
//
//   - [Block], [Wall]: body state
//   - [Engine]: lazy event producer (Scan/Event/Err) and eager Run
//   - [Event]: immutable record of one resolved collision
//
// # Example
//
//	e, _ := engine.New(b1, b2, wall, engine.DefaultConfig())
//	res, _ := e.Run(ctx)
//	fmt.Println(res.Collisions)
//
// # Thread Safety
//
// Engine instances are NOT thread-safe. Concurrent runs each need their own
// Engine; they share nothing.
package engine
