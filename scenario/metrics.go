package scenario

import "math"

// Metrics are the comfort and economics figures shown next to the heat map:
// field mean, standard deviation (lower = more even = more comfortable) and
// billed energy.
type Metrics struct {
	Mean      float64   `json:"mean"`       // °C over all rooms
	StdDev    float64   `json:"std_dev"`    // °C
	EnergyKWh float64   `json:"energy_kwh"` // billed across all sources
	RoomMeans []float64 `json:"room_means"` // °C per room
}

// JoulesToKWh converts the solver's energy counter to billing units.
func JoulesToKWh(j float64) float64 {
	return j / 3.6e6
}

func (s *Scenario) Metrics() Metrics {
	m := Metrics{RoomMeans: make([]float64, len(s.Rooms))}
	sum, n := 0.0, 0
	for i, g := range s.Rooms {
		vals := g.Values()
		roomSum := 0.0
		for _, t := range vals {
			roomSum += t
		}
		m.RoomMeans[i] = roomSum / float64(len(vals))
		sum += roomSum
		n += len(vals)
	}
	m.Mean = sum / float64(n)
	varSum := 0.0
	for _, g := range s.Rooms {
		for _, t := range g.Values() {
			d := t - m.Mean
			varSum += d * d
		}
	}
	m.StdDev = math.Sqrt(varSum / float64(n))
	m.EnergyKWh = JoulesToKWh(s.Stepper.State().TotalEnergy)
	return m
}
