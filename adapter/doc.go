// Package adapter bridges entity agents and the message broker. Each
// bus and each stop gets an adapter that publishes the events its
// entity produces and reacts to the kinds it subscribes to, so entities
// coordinate through messages instead of direct references.
//
// Adapters ignore messages they published themselves, validate payload
// shape before dispatching, and derive follow-up messages: a stop turns
// cached bus capacity into boarding requests for its waiting
// passengers, and a bus answers a boarding request by performing the
// boarding and publishing the confirmation.
package adapter
