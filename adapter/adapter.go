package adapter

import (
	"github.com/c360/transitsim/broker"
	"github.com/c360/transitsim/entity"
)

// MessageBus is the slice of the broker adapters use.
type MessageBus interface {
	Subscribe(id string, handler broker.Handler, kinds ...broker.Kind) error
	Unsubscribe(id string, kinds ...broker.Kind)
	Publish(msg broker.Message) error
}

// Directory resolves entity identifiers carried in message payloads.
// The seed network implements it.
type Directory interface {
	StopByID(id string) (*entity.Stop, bool)
	BusByID(id string) (*entity.Bus, bool)
	RouteByID(id string) (*entity.Route, bool)
	PassengerByID(id string) (*entity.Passenger, bool)
}
