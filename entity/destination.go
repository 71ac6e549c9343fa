package entity

// Destination is the tagged target of a passenger's trip: either a
// specific stop or a whole station (any of its stops satisfies the trip).
type Destination struct {
	stop    *Stop
	station *Station
}

// StopDestination targets a specific stop
func StopDestination(s *Stop) Destination {
	return Destination{stop: s}
}

// StationDestination targets any stop of a station
func StationDestination(st *Station) Destination {
	return Destination{station: st}
}

// IsZero reports whether no destination is set
func (d Destination) IsZero() bool {
	return d.stop == nil && d.station == nil
}

// ResolvedStops returns the concrete stops satisfying the destination
func (d Destination) ResolvedStops() []*Stop {
	switch {
	case d.stop != nil:
		return []*Stop{d.stop}
	case d.station != nil:
		return d.station.Stops()
	default:
		return nil
	}
}

// Contains reports whether arriving at s completes the trip
func (d Destination) Contains(s *Stop) bool {
	if s == nil {
		return false
	}
	for _, stop := range d.ResolvedStops() {
		if stop == s {
			return true
		}
	}
	return false
}

// Name returns the destination's display name
func (d Destination) Name() string {
	switch {
	case d.stop != nil:
		return d.stop.Name
	case d.station != nil:
		return d.station.Name
	default:
		return "none"
	}
}

// NodeID returns the identifier of the destination node
func (d Destination) NodeID() string {
	switch {
	case d.stop != nil:
		return d.stop.ID
	case d.station != nil:
		return d.station.ID
	default:
		return ""
	}
}
