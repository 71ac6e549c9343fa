// Package transitsim simulates a transit network as a population of
// concurrently running entity agents over a shared relational graph,
// with an in-process message broker decoupling inter-entity events.
//
// # Architecture
//
// The system is layered leaf to root:
//
//   - entity: the passive relational model. Graph nodes (stations, stops,
//     intersections), ordered paths (routes), groupings (lines), and mobile
//     actors (buses, passengers). Every mutable entity carries its own lock;
//     compound mutations go through entity package functions that acquire
//     locks in a fixed order (stop, then bus, then passenger).
//   - agent: one control loop per live entity. Agents advance their
//     entity's state machine, pace themselves with randomized sleeps, and
//     observe a shared cancellation context once per iteration. A cycle
//     error is logged and the loop continues; it is never fatal to the run.
//   - broker: a publish/subscribe hub with one unbounded FIFO and a single
//     consumer goroutine that delivers typed events synchronously, in
//     subscription order, to the subscribers of each kind.
//   - adapter: per-entity translators between local state changes and
//     broker messages, for buses and stops.
//   - sim: the coordinator. Builds the agent population from a seeded
//     network, starts every agent, and stops them through shared
//     cancellation followed by an unconditional join.
//
// The seed package builds the initial topology; cmd/transitsim wires a
// scenario, a duration, optional messaging, and optional Prometheus
// metrics into a runnable binary.
//
// # Concurrency model
//
// One goroutine per agent, all sharing a cancellable context. Agents never
// block on I/O or on each other; randomized pacing sleeps are the only
// suspension points and observe cancellation. The broker's consumer is the
// only place fan-out happens, so subscriber handlers never run
// concurrently with each other. Shutdown is drain-and-stop: cancellation
// is cooperative everywhere, and the broker discards (does not deliver)
// messages still queued when it stops.
package transitsim
