// Package agent contains the control loops that animate the entity
// model. Each bus, passenger, stop, station, and intersection gets one
// agent running in its own goroutine under a shared context.
//
// Agents never touch entity fields directly: all compound mutations go
// through the entity package, which owns locking. An agent cycle that
// fails transiently is logged and retried after the next pacing sleep;
// only broken preconditions (a bus with no route, a bus parked off its
// route) stop an agent, and they stop that agent alone.
//
// Movement and exchange events are reported through small event
// interfaces. The adapter package implements them to publish broker
// messages; with messaging disabled the events are no-ops and the
// simulation runs identically.
package agent
