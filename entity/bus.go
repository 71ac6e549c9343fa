package entity

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StopTimes holds the scheduled arrival and departure at one stop.
type StopTimes struct {
	Arrival   string
	Departure string
}

// Bus is a mobile actor serving a route. The passenger collection is
// ordered (boarding order) and never exceeds Capacity.
type Bus struct {
	ID   string
	Name string
	// Type tags the service class (regular, express)
	Type     string
	Capacity int

	mu         sync.Mutex
	passengers []*Passenger
	stop       *Stop
	route      *Route
	schedule   map[string]StopTimes
	frequency  time.Duration
}

// NewBus creates a bus with no route or stop assigned
func NewBus(name, busType string, capacity int) *Bus {
	return &Bus{
		ID:       uuid.NewString(),
		Name:     name,
		Type:     busType,
		Capacity: capacity,
		schedule: make(map[string]StopTimes),
	}
}

// String implements fmt.Stringer
func (b *Bus) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	stopName := "none"
	if b.stop != nil {
		stopName = b.stop.Name
	}
	return fmt.Sprintf("Bus %s (%s): %d/%d passengers at %s",
		b.Name, b.Type, len(b.passengers), b.Capacity, stopName)
}

// CurrentStop returns the stop the bus is currently at
func (b *Bus) CurrentStop() *Stop {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stop
}

// SetCurrentStop moves the bus to a stop
func (b *Bus) SetCurrentStop(s *Stop) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stop = s
}

// Route returns the bus's active route
func (b *Bus) Route() *Route {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.route
}

// SetRoute assigns the bus's active route
func (b *Bus) SetRoute(r *Route) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.route = r
}

// Passengers returns a snapshot of the passengers on board, in boarding order
func (b *Bus) Passengers() []*Passenger {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Passenger, len(b.passengers))
	copy(out, b.passengers)
	return out
}

// PassengerCount returns the number of passengers on board
func (b *Bus) PassengerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.passengers)
}

// AvailableSeats returns the remaining capacity
func (b *Bus) AvailableSeats() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Capacity - len(b.passengers)
}

// IsFull reports whether the bus is at capacity
func (b *Bus) IsFull() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.passengers) >= b.Capacity
}

// CanAccept reports whether count more passengers fit
func (b *Bus) CanAccept(count int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.passengers)+count <= b.Capacity
}

// SetStopSchedule records the scheduled times for a stop
func (b *Bus) SetStopSchedule(stopID string, times StopTimes) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.schedule[stopID] = times
}

// StopSchedule returns the scheduled times for a stop
func (b *Bus) StopSchedule(stopID string) (StopTimes, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	times, ok := b.schedule[stopID]
	return times, ok
}

// SetFrequency records the line frequency for this bus
func (b *Bus) SetFrequency(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frequency = d
}

// Frequency returns the recorded line frequency
func (b *Bus) Frequency() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frequency
}
