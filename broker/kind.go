package broker

// Kind identifies the event type a message carries. Subscriptions and
// delivery are keyed by kind.
type Kind string

const (
	// KindBusArrival is published when a bus reaches a stop
	KindBusArrival Kind = "bus_arrival"
	// KindBusDeparture is published when a bus leaves a stop
	KindBusDeparture Kind = "bus_departure"
	// KindPassengerBoarding covers boarding requests and confirmations
	KindPassengerBoarding Kind = "passenger_boarding"
	// KindPassengerAlighting is published when a passenger steps off
	KindPassengerAlighting Kind = "passenger_alighting"
	// KindRouteUpdate announces a route entering or leaving service
	KindRouteUpdate Kind = "route_update"
	// KindScheduleUpdate pushes stop times or frequency to a bus
	KindScheduleUpdate Kind = "schedule_update"
	// KindStopStatus reports a stop's occupancy and waiting counts
	KindStopStatus Kind = "stop_status"
	// KindStationStatus reports aggregate counts across a station
	KindStationStatus Kind = "station_status"
	// KindCapacityUpdate reports a bus's remaining seats
	KindCapacityUpdate Kind = "capacity_update"
	// KindSystemAlert carries operator-level notices
	KindSystemAlert Kind = "system_alert"
)

// Kinds returns every message kind the broker routes
func Kinds() []Kind {
	return []Kind{
		KindBusArrival,
		KindBusDeparture,
		KindPassengerBoarding,
		KindPassengerAlighting,
		KindRouteUpdate,
		KindScheduleUpdate,
		KindStopStatus,
		KindStationStatus,
		KindCapacityUpdate,
		KindSystemAlert,
	}
}

// Valid reports whether k is a known message kind
func (k Kind) Valid() bool {
	switch k {
	case KindBusArrival, KindBusDeparture,
		KindPassengerBoarding, KindPassengerAlighting,
		KindRouteUpdate, KindScheduleUpdate,
		KindStopStatus, KindStationStatus,
		KindCapacityUpdate, KindSystemAlert:
		return true
	}
	return false
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}
