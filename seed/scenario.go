package seed

import (
	"fmt"

	"github.com/c360/transitsim/entity"
	"github.com/c360/transitsim/errors"
)

// Params tunes a scenario build.
type Params struct {
	// AdmitCapacity overrides how many buses each stop serves at once.
	// Zero keeps the scenario default of one.
	AdmitCapacity int
	// Passengers overrides the passenger count. Zero keeps the
	// scenario default.
	Passengers int
}

var scenarios = map[string]func(Params) (*Network, error){
	"downtown": buildDowntown,
	"single":   buildSingle,
}

// Scenarios lists the available scenario names
func Scenarios() []string {
	return []string{"downtown", "single"}
}

// Build constructs and validates the named scenario
func Build(scenario string, p Params) (*Network, error) {
	builder, ok := scenarios[scenario]
	if !ok {
		return nil, errors.WrapFatal(
			fmt.Errorf("unknown scenario %q: %w", scenario, errors.ErrInvalidConfig),
			"seed", "Build", "scenario lookup")
	}
	n, err := builder(p)
	if err != nil {
		return nil, err
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

var categories = []string{"Regular", "Senior", "Student"}

// buildDowntown is the default scenario: two terminal stations joined
// through a central intersection by a two-route line, three buses, and
// riders headed across town.
//
//	West Terminal -> Market St -> Central Cross -> Museum -> East Terminal
func buildDowntown(p Params) (*Network, error) {
	n := newNetwork("downtown")

	west := n.addStation(entity.NewStation("West Terminal"))
	east := n.addStation(entity.NewStation("East Terminal"))
	central := n.addIntersection(entity.NewIntersection("Central Cross"))

	westPlatform := n.addStop(entity.NewStop("West Terminal platform"))
	market := n.addStop(entity.NewStop("Market St"))
	transfer := n.addStop(entity.NewStop("Central Cross transfer"))
	museum := n.addStop(entity.NewStop("Museum"))
	eastPlatform := n.addStop(entity.NewStop("East Terminal platform"))

	west.AttachStop(westPlatform)
	central.AttachStop(transfer)
	east.AttachStop(eastPlatform)

	west.Connect(&central.Node)
	central.Connect(&east.Node)

	if p.AdmitCapacity > 0 {
		for _, s := range n.Stops {
			s.AdmitCapacity = p.AdmitCapacity
		}
	}

	westPlatform.AddNeighbor(market)
	market.AddNeighbor(transfer)
	transfer.AddNeighbor(museum)
	museum.AddNeighbor(eastPlatform)

	outbound, err := entity.NewRoute(
		[]*entity.Stop{westPlatform, market, transfer}, &west.Node, &central.Node)
	if err != nil {
		return nil, err
	}
	n.addRoute(outbound)

	crosstown, err := entity.NewRoute(
		[]*entity.Stop{transfer, museum, eastPlatform}, &central.Node, &east.Node)
	if err != nil {
		return nil, err
	}
	n.addRoute(crosstown)

	line, err := entity.NewLine("Crosstown", []*entity.Route{outbound, crosstown}, west, east)
	if err != nil {
		return nil, err
	}
	n.addLine(line)

	for i, name := range []string{"101", "102", "103"} {
		bus := entity.NewBus(name, "regular", 20)
		if i == 2 {
			bus = entity.NewBus(name, "mini", 8)
		}
		bus.SetRoute(outbound)
		line.AssignBus(bus)
		n.addBus(bus)
	}

	count := p.Passengers
	if count <= 0 {
		count = 8
	}
	origins := []*entity.Stop{westPlatform, market, transfer, museum}
	for i := 0; i < count; i++ {
		var dest entity.Destination
		if i%3 == 0 {
			dest = entity.StationDestination(east)
		} else if i%3 == 1 {
			dest = entity.StopDestination(museum)
		} else {
			dest = entity.StopDestination(eastPlatform)
		}

		origin := origins[i%len(origins)]
		// Riders already at or past their target start further back
		if dest.Contains(origin) {
			origin = westPlatform
		}

		rider := entity.NewPassenger(
			fmt.Sprintf("rider-%02d", i+1), categories[i%len(categories)], dest)
		if err := origin.AddPassenger(rider); err != nil {
			return nil, err
		}
		n.addPassenger(rider)
	}

	return n, nil
}

// buildSingle is the smallest useful scenario: one route, one bus, one
// rider. Used for smoke runs and demos.
func buildSingle(p Params) (*Network, error) {
	n := newNetwork("single")

	origin := n.addStation(entity.NewStation("Origin"))
	terminus := n.addStation(entity.NewStation("Terminus"))

	a := n.addStop(entity.NewStop("Origin platform"))
	b := n.addStop(entity.NewStop("Midway"))
	c := n.addStop(entity.NewStop("Terminus platform"))

	origin.AttachStop(a)
	terminus.AttachStop(c)
	origin.Connect(&terminus.Node)

	if p.AdmitCapacity > 0 {
		for _, s := range n.Stops {
			s.AdmitCapacity = p.AdmitCapacity
		}
	}

	a.AddNeighbor(b)
	b.AddNeighbor(c)

	route, err := entity.NewRoute([]*entity.Stop{a, b, c}, &origin.Node, &terminus.Node)
	if err != nil {
		return nil, err
	}
	n.addRoute(route)

	line, err := entity.NewLine("Shuttle", []*entity.Route{route}, origin, terminus)
	if err != nil {
		return nil, err
	}
	n.addLine(line)

	bus := entity.NewBus("201", "regular", 20)
	bus.SetRoute(route)
	line.AssignBus(bus)
	n.addBus(bus)

	count := p.Passengers
	if count <= 0 {
		count = 1
	}
	for i := 0; i < count; i++ {
		rider := entity.NewPassenger(
			fmt.Sprintf("rider-%02d", i+1), categories[i%len(categories)],
			entity.StationDestination(terminus))
		if err := a.AddPassenger(rider); err != nil {
			return nil, err
		}
		n.addPassenger(rider)
	}

	return n, nil
}
