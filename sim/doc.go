// Package sim wires a seeded network into a running simulation: one
// agent goroutine per entity, optional broker messaging with per-entity
// adapters, and a coordinator owning startup and drain-and-stop
// shutdown. Agents are never supervised or restarted; a halted agent
// stays halted until the run ends.
package sim
