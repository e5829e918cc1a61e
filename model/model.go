package model

// Shared data vocabulary for the grid, the stepper, the scenario builders
// and the websocket layer.

// CellKind classifies a single grid cell.
type CellKind uint8

const (
	Interior CellKind = iota
	Wall
	Window
	HeatSource
)

func (k CellKind) String() string {
	switch k {
	case Interior:
		return "interior"
	case Wall:
		return "wall"
	case Window:
		return "window"
	case HeatSource:
		return "heat_source"
	}
	return "unknown"
}

// Material holds the physical parameters looked up per cell kind.
type Material struct {
	Diffusivity         float64 `json:"diffusivity"`          // m²/s
	BoundaryCoefficient float64 `json:"boundary_coefficient"` // 1/s, Newton cooling toward the exterior
}

// MaterialSet is the read-only constants table handed to the solver at
// scenario-build time. Heat-source cells are air with power injected on top.
type MaterialSet struct {
	Air    Material `json:"air"`
	Wall   Material `json:"wall"`
	Window Material `json:"window"`

	// CellHeatCapacity is mass*specific heat of one cell of air, J/K.
	// It converts injected power into a temperature increment per step.
	CellHeatCapacity float64 `json:"cell_heat_capacity"`
}

func (m MaterialSet) ByKind(k CellKind) Material {
	switch k {
	case Wall:
		return m.Wall
	case Window:
		return m.Window
	}
	return m.Air
}

func (m MaterialSet) MaxDiffusivity() float64 {
	max := m.Air.Diffusivity
	if m.Wall.Diffusivity > max {
		max = m.Wall.Diffusivity
	}
	if m.Window.Diffusivity > max {
		max = m.Window.Diffusivity
	}
	return max
}

// GridSpec fixes the discretization shared by every room of a scenario.
type GridSpec struct {
	Dx float64 `json:"dx"` // cell spacing, m
	Dt float64 `json:"dt"` // time increment, s

	// Workers > 1 lets the stepper sweep row bands concurrently.
	Workers int `json:"workers"`
}

// Side of a room, used to place windows.
type Side uint8

const (
	SideNone Side = iota
	SideLeft
	SideRight
	SideTop
	SideBottom
)

// Rect is a cell-indexed rectangle: Rows x Cols cells starting at (Row, Col).
type Rect struct {
	Row  int `json:"row"`
	Col  int `json:"col"`
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

func (r Rect) IsZero() bool {
	return r.Rows == 0 || r.Cols == 0
}

// Span is a run of cells along one side, inclusive of From, exclusive of To.
type Span struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Thermostat gates the heat sources of one room: they inject (and bill
// energy) only while the mean temperature over the sensor region is below
// Target. A zero Sensor rect means the whole room is sensed.
type Thermostat struct {
	Target float64 `json:"target"`
	Sensor Rect    `json:"sensor"`
}

// RoomConfig describes a single room of a scenario.
type RoomConfig struct {
	Rows, Cols int

	InitialTemperature  float64
	ExteriorTemperature float64

	// Heater is the radiator rectangle; its power is split evenly over the
	// covered cells. A zero rect means the room is unheated.
	Heater      Rect
	HeaterPower float64 // W

	WindowSide Side
	WindowSpan Span

	Thermostat *Thermostat
}

// SourceKey identifies one heat-source cell across the rooms of a scenario.
type SourceKey struct {
	Room int `json:"room"`
	Row  int `json:"row"`
	Col  int `json:"col"`
}

// SimulationState is the solver state exposed to the presentation layer.
type SimulationState struct {
	ElapsedTime  float64               `json:"elapsed_time"` // s
	Steps        int                   `json:"steps"`
	Converged    bool                  `json:"converged"`
	MaxDelta     float64               `json:"max_delta"` // largest per-cell change of the last step
	TotalEnergy  float64               `json:"total_energy"` // J
	SourceEnergy map[SourceKey]float64 `json:"-"`
}

// Env carries the scenario settings sent by the UI client.
type Env struct {
	Preset              string  `json:"preset"` // "", "cooperation", "parasitism", "isolation"
	ExteriorTemperature float64 `json:"exterior_temperature"`
	InitialTemperature  float64 `json:"initial_temperature"`
	ThermostatTarget    float64 `json:"thermostat_target"`
	HeaterPower         float64 `json:"heater_power"`
	RadiatorOffset      int     `json:"radiator_offset"` // cells between window wall and radiator
	SimulationHours     float64 `json:"simulation_hours"`
}

// Msg is the envelope for frontend/backend websocket messages.
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}
