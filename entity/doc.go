// Package entity defines the passive relational model of the transit
// network: graph nodes (stations, stops, intersections), ordered paths
// (routes), groupings (lines), and the mobile actors (buses, passengers)
// that agents drive.
//
// # Ownership and lifecycle
//
// All entities are created once from the seeded topology and live for the
// whole run. Routes and lines are immutable after construction; nodes,
// stops, buses, and passengers carry their own locks and are safe for
// concurrent use by multiple agents.
//
// # Lock ordering
//
// Compound mutations that span entities (boarding, alighting) go through
// Board and Alight, which acquire locks in the fixed order
//
//	stop -> bus -> passenger
//
// Node relation locks (connections, owned stops, route registration) are
// leaf locks: they may be taken while holding any entity state lock but
// never the other way around. Locks spanning two peers of the same type
// (node-to-node connection, stop-to-stop neighboring) are acquired in ID
// order.
package entity
