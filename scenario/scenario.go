package scenario

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/calculator"
	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/grid"
	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/model"
)

// Snapshot frames retained per room for replay.
const historyCapacity = 120

// Scenario owns the grids of one simulation session and the stepper
// advancing them. It is rebuilt from scratch whenever the configuration
// changes; nothing is reused across sessions.
type Scenario struct {
	Spec      model.GridSpec
	Rooms     []*grid.Grid
	Stepper   *calculator.Stepper
	Histories []*grid.History
}

// BuildSingleRoom assembles the radiator-versus-window room: walls all
// around, a window span on one side, one radiator rectangle.
func BuildSingleRoom(spec model.GridSpec, cfg model.RoomConfig, mats model.MaterialSet) (*Scenario, error) {
	g, err := buildRoomGrid(cfg)
	if err != nil {
		return nil, err
	}
	rooms := []calculator.Room{{
		Grid:                g,
		ExteriorTemperature: cfg.ExteriorTemperature,
		Thermostat:          cfg.Thermostat,
	}}
	st, err := calculator.NewStepper(stepperConfig(spec, mats), rooms, nil)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"rows":     cfg.Rows,
		"cols":     cfg.Cols,
		"exterior": cfg.ExteriorTemperature,
		"power":    cfg.HeaterPower,
	}).Info("single room built")
	return newScenario(spec, []*grid.Grid{g}, st), nil
}

// BuildThreeRoomRow assembles three side-by-side apartments whose two
// internal walls are coupled boundaries: heat leaks between neighbours with
// the wall coefficient instead of escaping to the exterior. Each room keeps
// its own heater, thermostat and exterior settings.
func BuildThreeRoomRow(spec model.GridSpec, cfgs [3]model.RoomConfig, mats model.MaterialSet) (*Scenario, error) {
	for i := 1; i < len(cfgs); i++ {
		if cfgs[i].Rows != cfgs[0].Rows {
			return nil, fmt.Errorf("%w: shared wall needs matching cell counts, got %d vs %d",
				calculator.ErrInvalidTopology, cfgs[0].Rows, cfgs[i].Rows)
		}
	}
	grids := make([]*grid.Grid, 0, len(cfgs))
	rooms := make([]calculator.Room, 0, len(cfgs))
	for _, cfg := range cfgs {
		g, err := buildRoomGrid(cfg)
		if err != nil {
			return nil, err
		}
		grids = append(grids, g)
		rooms = append(rooms, calculator.Room{
			Grid:                g,
			ExteriorTemperature: cfg.ExteriorTemperature,
			Thermostat:          cfg.Thermostat,
		})
	}
	couplings := []calculator.Coupling{
		{Left: 0, Right: 1, Coefficient: mats.Wall.BoundaryCoefficient},
		{Left: 1, Right: 2, Coefficient: mats.Wall.BoundaryCoefficient},
	}
	st, err := calculator.NewStepper(stepperConfig(spec, mats), rooms, couplings)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"rooms":    len(cfgs),
		"coupling": mats.Wall.BoundaryCoefficient,
	}).Info("three-room row built")
	return newScenario(spec, grids, st), nil
}

func newScenario(spec model.GridSpec, grids []*grid.Grid, st *calculator.Stepper) *Scenario {
	hs := make([]*grid.History, len(grids))
	for i := range hs {
		hs[i] = grid.NewHistory(historyCapacity)
	}
	return &Scenario{Spec: spec, Rooms: grids, Stepper: st, Histories: hs}
}

func stepperConfig(spec model.GridSpec, mats model.MaterialSet) calculator.Config {
	return calculator.Config{
		Dx:        spec.Dx,
		Dt:        spec.Dt,
		Materials: mats,
		Workers:   spec.Workers,
	}
}

// buildRoomGrid creates the grid and classifies its cells: border walls, the
// window span, the radiator rectangle with power split evenly over it.
func buildRoomGrid(cfg model.RoomConfig) (*grid.Grid, error) {
	g, err := grid.New(cfg.Rows, cfg.Cols, cfg.InitialTemperature)
	if err != nil {
		return nil, err
	}
	for c := 0; c < cfg.Cols; c++ {
		g.SetCellKind(0, c, model.Wall)
		g.SetCellKind(cfg.Rows-1, c, model.Wall)
	}
	for r := 0; r < cfg.Rows; r++ {
		g.SetCellKind(r, 0, model.Wall)
		g.SetCellKind(r, cfg.Cols-1, model.Wall)
	}
	if cfg.WindowSide != model.SideNone {
		for i := cfg.WindowSpan.From; i < cfg.WindowSpan.To; i++ {
			r, c := 0, 0
			switch cfg.WindowSide {
			case model.SideLeft:
				r, c = i, 0
			case model.SideRight:
				r, c = i, cfg.Cols-1
			case model.SideTop:
				r, c = 0, i
			case model.SideBottom:
				r, c = cfg.Rows-1, i
			}
			if err := g.SetCellKind(r, c, model.Window); err != nil {
				return nil, err
			}
		}
	}
	if !cfg.Heater.IsZero() {
		per := cfg.HeaterPower / float64(cfg.Heater.Rows*cfg.Heater.Cols)
		for r := cfg.Heater.Row; r < cfg.Heater.Row+cfg.Heater.Rows; r++ {
			for c := cfg.Heater.Col; c < cfg.Heater.Col+cfg.Heater.Cols; c++ {
				if err := g.ApplyHeatSource(r, c, per); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}

// Step advances the session by one dt and records the new frames.
func (s *Scenario) Step() (model.SimulationState, error) {
	st, err := s.Stepper.Step()
	if err != nil {
		return st, err
	}
	s.Record()
	return st, nil
}

// RunUntil drives the stepper to steady state or maxSteps, then records the
// final frames.
func (s *Scenario) RunUntil(maxSteps int, tolerance float64) (model.SimulationState, error) {
	st, err := s.Stepper.RunUntil(maxSteps, tolerance)
	s.Record()
	return st, err
}

// Record pushes the current snapshot of every room into its history ring.
func (s *Scenario) Record() {
	for i, g := range s.Rooms {
		s.Histories[i].Push(g.Snapshot())
	}
}

// Snapshots returns an independent copy of every room's field.
func (s *Scenario) Snapshots() [][][]float64 {
	out := make([][][]float64, len(s.Rooms))
	for i, g := range s.Rooms {
		out[i] = g.Snapshot()
	}
	return out
}

func (s *Scenario) State() model.SimulationState {
	return s.Stepper.State()
}

func (s *Scenario) Close() {
	s.Stepper.Close()
}
