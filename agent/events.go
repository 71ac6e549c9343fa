package agent

import (
	"github.com/c360/transitsim/entity"
)

// BusEvents receives the movements and exchanges a bus agent performs.
// The bus adapter implements it to publish broker messages; a nil events
// sink disables reporting without changing agent behavior.
type BusEvents interface {
	Arrived(bus *entity.Bus, stop *entity.Stop, admitted bool)
	Departed(bus *entity.Bus, from, to *entity.Stop, wrapped bool)
	Boarded(bus *entity.Bus, stop *entity.Stop, p *entity.Passenger)
	Alighted(bus *entity.Bus, stop *entity.Stop, p *entity.Passenger, arrived bool)
	RouteSwitched(bus *entity.Bus, from, to *entity.Route)
}

// StopEvents receives stop-side admissions and status changes. The stop
// adapter implements it to publish broker messages.
type StopEvents interface {
	BacklogAdmitted(stop *entity.Stop, bus *entity.Bus)
	StatusChanged(stop *entity.Stop)
}

type noopBusEvents struct{}

func (noopBusEvents) Arrived(*entity.Bus, *entity.Stop, bool)                    {}
func (noopBusEvents) Departed(*entity.Bus, *entity.Stop, *entity.Stop, bool)     {}
func (noopBusEvents) Boarded(*entity.Bus, *entity.Stop, *entity.Passenger)       {}
func (noopBusEvents) Alighted(*entity.Bus, *entity.Stop, *entity.Passenger, bool) {}
func (noopBusEvents) RouteSwitched(*entity.Bus, *entity.Route, *entity.Route)    {}

type noopStopEvents struct{}

func (noopStopEvents) BacklogAdmitted(*entity.Stop, *entity.Bus) {}
func (noopStopEvents) StatusChanged(*entity.Stop)                {}
