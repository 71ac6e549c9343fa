// Package seed builds the entity networks the simulation runs on.
// A scenario is a named topology: stations, stops, intersections,
// routes chained into lines, buses, and passengers with destinations.
// The resulting Network indexes every entity by id and serves as the
// directory the broker adapters resolve message payloads against.
package seed
