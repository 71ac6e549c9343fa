// Package errors provides standardized error handling for transitsim
// components.
//
// # Overview
//
// The package implements a three-class error classification: Transient
// (an agent cycle failed but the loop should continue after backoff),
// Invalid (bad input or message payload, do not retry), and Fatal
// (unrecoverable, stop the agent or abort startup).
//
// Classification drives the two recovery policies the simulation has:
// per-agent cycle errors are logged and the loop continues, while
// initialization failures (missing prerequisite entities, invalid route
// geometry) abort the run.
//
// # Quick start
//
// Return standard error variables for known conditions:
//
//	if bus.Route() == nil {
//	    return errors.ErrNoRouteAssigned
//	}
//
// Wrap errors with component context:
//
//	if err := network.Validate(); err != nil {
//	    return errors.WrapFatal(err, "seed", "Build", "topology validation")
//	}
//
// Check classification when deciding how to recover:
//
//	if errors.IsFatal(err) {
//	    return err // stop this agent
//	}
//	// log and continue after backoff
package errors
