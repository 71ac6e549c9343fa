package broker

import (
	"fmt"
	"time"

	"github.com/c360/transitsim/errors"
)

// Payload is the typed body of a message. Each kind has exactly one
// payload type; Validate enforces the fields that kind requires.
type Payload interface {
	Kind() Kind
	Validate() error
}

// Boarding status values carried by PassengerBoarding payloads.
const (
	// BoardingRequested is sent by a stop on behalf of a waiting passenger
	BoardingRequested = "requested"
	// BoardingConfirmed is sent by the bus after the passenger is aboard
	BoardingConfirmed = "confirmed"
)

func invalidPayload(kind Kind, field string) error {
	return errors.WrapInvalid(
		fmt.Errorf("%s payload missing %s: %w", kind, field, errors.ErrInvalidPayload),
		"broker", "Validate", "payload check")
}

// BusArrival reports a bus reaching a stop.
type BusArrival struct {
	BusID      string `json:"bus_id"`
	BusName    string `json:"bus_name,omitempty"`
	StopID     string `json:"stop_id"`
	StopName   string `json:"stop_name,omitempty"`
	RouteID    string `json:"route_id,omitempty"`
	Admitted   bool   `json:"admitted"`
	Passengers int    `json:"passengers"`
}

// Kind implements Payload
func (BusArrival) Kind() Kind { return KindBusArrival }

// Validate implements Payload
func (p BusArrival) Validate() error {
	if p.BusID == "" {
		return invalidPayload(KindBusArrival, "bus_id")
	}
	if p.StopID == "" {
		return invalidPayload(KindBusArrival, "stop_id")
	}
	return nil
}

// BusDeparture reports a bus leaving a stop for the next one. Wrapped is
// set when the departure closes a route lap and the service restarts at
// the route's first stop.
type BusDeparture struct {
	BusID      string `json:"bus_id"`
	BusName    string `json:"bus_name,omitempty"`
	StopID     string `json:"stop_id"`
	StopName   string `json:"stop_name,omitempty"`
	RouteID    string `json:"route_id,omitempty"`
	NextStopID string `json:"next_stop_id,omitempty"`
	Wrapped    bool   `json:"wrapped,omitempty"`
}

// Kind implements Payload
func (BusDeparture) Kind() Kind { return KindBusDeparture }

// Validate implements Payload
func (p BusDeparture) Validate() error {
	if p.BusID == "" {
		return invalidPayload(KindBusDeparture, "bus_id")
	}
	if p.StopID == "" {
		return invalidPayload(KindBusDeparture, "stop_id")
	}
	return nil
}

// PassengerBoarding carries a boarding request from a stop or a boarding
// confirmation from a bus, distinguished by Status.
type PassengerBoarding struct {
	PassengerID   string `json:"passenger_id"`
	PassengerName string `json:"passenger_name,omitempty"`
	BusID         string `json:"bus_id"`
	StopID        string `json:"stop_id"`
	Status        string `json:"status"`
}

// Kind implements Payload
func (PassengerBoarding) Kind() Kind { return KindPassengerBoarding }

// Validate implements Payload
func (p PassengerBoarding) Validate() error {
	if p.PassengerID == "" {
		return invalidPayload(KindPassengerBoarding, "passenger_id")
	}
	if p.BusID == "" {
		return invalidPayload(KindPassengerBoarding, "bus_id")
	}
	if p.Status != BoardingRequested && p.Status != BoardingConfirmed {
		return invalidPayload(KindPassengerBoarding, "status")
	}
	return nil
}

// PassengerAlighting reports a passenger stepping off a bus. Arrived is
// set when the stop completed the passenger's trip.
type PassengerAlighting struct {
	PassengerID   string `json:"passenger_id"`
	PassengerName string `json:"passenger_name,omitempty"`
	BusID         string `json:"bus_id"`
	StopID        string `json:"stop_id"`
	Arrived       bool   `json:"arrived"`
}

// Kind implements Payload
func (PassengerAlighting) Kind() Kind { return KindPassengerAlighting }

// Validate implements Payload
func (p PassengerAlighting) Validate() error {
	if p.PassengerID == "" {
		return invalidPayload(KindPassengerAlighting, "passenger_id")
	}
	if p.BusID == "" {
		return invalidPayload(KindPassengerAlighting, "bus_id")
	}
	return nil
}

// RouteUpdate announces a route entering or leaving service.
type RouteUpdate struct {
	RouteID string `json:"route_id"`
	Active  bool   `json:"active"`
	Reason  string `json:"reason,omitempty"`
}

// Kind implements Payload
func (RouteUpdate) Kind() Kind { return KindRouteUpdate }

// Validate implements Payload
func (p RouteUpdate) Validate() error {
	if p.RouteID == "" {
		return invalidPayload(KindRouteUpdate, "route_id")
	}
	return nil
}

// ScheduleUpdate pushes stop times or a new headway to a bus.
type ScheduleUpdate struct {
	BusID     string        `json:"bus_id"`
	StopID    string        `json:"stop_id,omitempty"`
	Arrival   string        `json:"arrival,omitempty"`
	Departure string        `json:"departure,omitempty"`
	Frequency time.Duration `json:"frequency,omitempty"`
}

// Kind implements Payload
func (ScheduleUpdate) Kind() Kind { return KindScheduleUpdate }

// Validate implements Payload
func (p ScheduleUpdate) Validate() error {
	if p.BusID == "" {
		return invalidPayload(KindScheduleUpdate, "bus_id")
	}
	if p.StopID == "" && p.Frequency == 0 {
		return invalidPayload(KindScheduleUpdate, "stop_id or frequency")
	}
	return nil
}

// StopStatus reports a stop's occupancy and waiting counts.
type StopStatus struct {
	StopID   string `json:"stop_id"`
	StopName string `json:"stop_name,omitempty"`
	Occupied bool   `json:"occupied"`
	Waiting  int    `json:"waiting"`
	Queued   int    `json:"queued"`
}

// Kind implements Payload
func (StopStatus) Kind() Kind { return KindStopStatus }

// Validate implements Payload
func (p StopStatus) Validate() error {
	if p.StopID == "" {
		return invalidPayload(KindStopStatus, "stop_id")
	}
	return nil
}

// StationStatus reports aggregate counts across a station's stops.
type StationStatus struct {
	StationID   string `json:"station_id"`
	StationName string `json:"station_name,omitempty"`
	Passengers  int    `json:"passengers"`
	Waiting     int    `json:"waiting"`
}

// Kind implements Payload
func (StationStatus) Kind() Kind { return KindStationStatus }

// Validate implements Payload
func (p StationStatus) Validate() error {
	if p.StationID == "" {
		return invalidPayload(KindStationStatus, "station_id")
	}
	return nil
}

// CapacityUpdate reports a bus's remaining seats at a stop.
type CapacityUpdate struct {
	BusID     string `json:"bus_id"`
	StopID    string `json:"stop_id,omitempty"`
	Available int    `json:"available"`
	Full      bool   `json:"full"`
}

// Kind implements Payload
func (CapacityUpdate) Kind() Kind { return KindCapacityUpdate }

// Validate implements Payload
func (p CapacityUpdate) Validate() error {
	if p.BusID == "" {
		return invalidPayload(KindCapacityUpdate, "bus_id")
	}
	if p.Available < 0 {
		return invalidPayload(KindCapacityUpdate, "available")
	}
	return nil
}

// SystemAlert carries an operator-level notice to every subscriber of
// the kind.
type SystemAlert struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

// Kind implements Payload
func (SystemAlert) Kind() Kind { return KindSystemAlert }

// Validate implements Payload
func (p SystemAlert) Validate() error {
	if p.Text == "" {
		return invalidPayload(KindSystemAlert, "text")
	}
	return nil
}
