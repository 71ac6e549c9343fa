package entity

// Station is a terminal grouping of stops where lines begin and end.
// Every station owns at least one stop.
type Station struct {
	Node
}

// NewStation creates a named station with no stops attached yet
func NewStation(name string) *Station {
	return &Station{Node: newNode(name, KindStation)}
}

// TotalPassengers sums the passengers present across the station's stops
func (st *Station) TotalPassengers() int {
	total := 0
	for _, s := range st.Stops() {
		total += len(s.Present())
	}
	return total
}

// TotalWaiting sums the waiting passengers across the station's stops
func (st *Station) TotalWaiting() int {
	total := 0
	for _, s := range st.Stops() {
		total += s.WaitingCount()
	}
	return total
}
