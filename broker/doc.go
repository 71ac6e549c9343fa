// Package broker implements the in-process publish/subscribe bus the
// simulation communicates over.
//
// Messages carry a typed payload for one of a fixed set of kinds
// (bus arrivals and departures, passenger boarding and alighting,
// route, schedule and capacity updates, stop and station status, and
// system alerts). Publishing is non-blocking: messages enter a single
// global FIFO queue and a dedicated consumer goroutine delivers each
// message synchronously to the subscribers of its kind, in subscription
// order. Delivery is at-most-once; a subscriber that returns an error
// or panics is logged and skipped without affecting other subscribers
// or later messages.
//
// The broker is an injected dependency, not a process singleton. Stop
// joins the consumer within a bounded timeout and discards whatever is
// still queued, reporting the dropped count.
package broker
