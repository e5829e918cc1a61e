package calculator

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/grid"
	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/model"
)

var (
	// ErrUnstableConfiguration rejects parameters violating the explicit
	// scheme's stability bound dt*alpha/dx^2 <= 0.25. An unstable scheme is
	// never run and dt is never clamped silently.
	ErrUnstableConfiguration = errors.New("calculator: unstable configuration (dt*alpha/dx^2 > 0.25)")

	// ErrNumericalDivergence reports a non-finite temperature appearing
	// mid-simulation. Fatal: the stepper refuses further steps.
	ErrNumericalDivergence = errors.New("calculator: numerical divergence (NaN or Inf in field)")

	// ErrInvalidTopology rejects coupled rooms whose shared edges have
	// mismatched cell counts.
	ErrInvalidTopology = errors.New("calculator: invalid topology")
)

// Room is one grid together with its surroundings: the exterior temperature
// its outer walls cool toward and an optional thermostat gating its sources.
type Room struct {
	Grid                *grid.Grid
	ExteriorTemperature float64
	Thermostat          *model.Thermostat
}

// Coupling joins the rightmost column of room Left to the leftmost column of
// room Right, row by row. Both sides of the shared wall exchange heat with
// the same coefficient, so no energy is created or lost at the boundary.
type Coupling struct {
	Left, Right int
	Coefficient float64 // 1/s
}

// Config fixes the discretization and material table of a stepper.
type Config struct {
	Dx        float64
	Dt        float64
	Materials model.MaterialSet

	// Workers > 1 parallelizes each sweep across row bands. Externally the
	// stepper stays synchronous either way.
	Workers int
}

// Stepper advances one or more coupled rooms by fixed time increments using
// the explicit 5-point finite-difference scheme. All reads of a step come
// from the pre-step fields; writes go to fresh buffers committed by a swap
// once every room has been swept.
type Stepper struct {
	cfg   Config
	rooms []Room

	next   [][]float64 // write buffers, one per room
	energy [][]float64 // cumulative power*dt per cell, J
	heatOn []bool      // thermostat verdict for the current step

	// factor[kind] = alpha(kind) * dt / dx^2
	factor [4]float64

	coupledLeft, coupledRight []int // peer room index, -1 when exterior
	coefLeft, coefRight       []float64

	state    model.SimulationState
	diverged bool

	exec *executor
}

type sweepResult struct {
	maxDelta float64
	finite   bool
}

// NewStepper validates the configuration and topology. Stability is checked
// against the largest diffusivity of the material table; violating it fails
// hard with ErrUnstableConfiguration.
func NewStepper(cfg Config, rooms []Room, couplings []Coupling) (*Stepper, error) {
	if len(rooms) == 0 {
		return nil, fmt.Errorf("calculator: no rooms")
	}
	if cfg.Dx <= 0 || cfg.Dt <= 0 {
		return nil, fmt.Errorf("calculator: dx and dt must be positive")
	}
	if cfg.Materials.CellHeatCapacity <= 0 {
		return nil, fmt.Errorf("calculator: cell heat capacity must be positive")
	}
	r := cfg.Dt * cfg.Materials.MaxDiffusivity() / (cfg.Dx * cfg.Dx)
	if r > 0.25 {
		return nil, fmt.Errorf("%w: dt*alpha/dx^2 = %.4f", ErrUnstableConfiguration, r)
	}
	for _, room := range rooms {
		if room.Grid == nil {
			return nil, fmt.Errorf("calculator: nil grid")
		}
	}
	for _, cp := range couplings {
		if cp.Left < 0 || cp.Left >= len(rooms) || cp.Right < 0 || cp.Right >= len(rooms) || cp.Left == cp.Right {
			return nil, fmt.Errorf("%w: coupling %d<->%d", ErrInvalidTopology, cp.Left, cp.Right)
		}
		if rooms[cp.Left].Grid.Rows() != rooms[cp.Right].Grid.Rows() {
			return nil, fmt.Errorf("%w: shared wall %d<->%d has %d vs %d cells",
				ErrInvalidTopology, cp.Left, cp.Right,
				rooms[cp.Left].Grid.Rows(), rooms[cp.Right].Grid.Rows())
		}
	}
	for _, m := range []model.Material{cfg.Materials.Wall, cfg.Materials.Window} {
		if m.BoundaryCoefficient*cfg.Dt > 1 {
			log.WithFields(log.Fields{
				"coefficient": m.BoundaryCoefficient,
				"dt":          cfg.Dt,
			}).Warn("boundary coefficient overshoots the exterior within one step")
		}
	}
	s := newStepper(cfg, rooms, couplings)
	log.WithFields(log.Fields{
		"rooms":     len(rooms),
		"couplings": len(couplings),
		"dx":        cfg.Dx,
		"dt":        cfg.Dt,
		"stability": r,
	}).Info("stepper configured")
	return s, nil
}

// newStepper wires the struct without validation; NewStepper is the only
// production path in.
func newStepper(cfg Config, rooms []Room, couplings []Coupling) *Stepper {
	s := &Stepper{
		cfg:          cfg,
		rooms:        rooms,
		next:         make([][]float64, len(rooms)),
		energy:       make([][]float64, len(rooms)),
		heatOn:       make([]bool, len(rooms)),
		coupledLeft:  make([]int, len(rooms)),
		coupledRight: make([]int, len(rooms)),
		coefLeft:     make([]float64, len(rooms)),
		coefRight:    make([]float64, len(rooms)),
	}
	for gi, room := range rooms {
		n := room.Grid.Rows() * room.Grid.Cols()
		s.next[gi] = make([]float64, n)
		s.energy[gi] = make([]float64, n)
		s.coupledLeft[gi] = -1
		s.coupledRight[gi] = -1
	}
	for _, cp := range couplings {
		s.coupledRight[cp.Left] = cp.Right
		s.coefRight[cp.Left] = cp.Coefficient
		s.coupledLeft[cp.Right] = cp.Left
		s.coefLeft[cp.Right] = cp.Coefficient
	}
	for k := model.Interior; k <= model.HeatSource; k++ {
		alpha := cfg.Materials.ByKind(k).Diffusivity
		s.factor[k] = alpha * cfg.Dt / (cfg.Dx * cfg.Dx)
	}
	if cfg.Workers > 1 {
		s.exec = newExecutor(cfg.Workers)
		s.exec.run(s)
	}
	return s
}

// Close releases the sweep workers, if any.
func (s *Stepper) Close() {
	if s.exec != nil {
		s.exec.stop()
		s.exec = nil
	}
}

// Step advances every room by one dt and returns the updated state.
func (s *Stepper) Step() (model.SimulationState, error) {
	if s.diverged {
		return s.State(), ErrNumericalDivergence
	}
	for gi := range s.rooms {
		s.heatOn[gi] = s.heatingActive(gi)
	}
	agg := sweepResult{finite: true}
	for gi := range s.rooms {
		var res sweepResult
		if s.exec != nil {
			res = s.exec.dispatch(gi, s.rooms[gi].Grid.Rows())
		} else {
			res = s.sweepRows(gi, 0, s.rooms[gi].Grid.Rows())
		}
		if res.maxDelta > agg.maxDelta {
			agg.maxDelta = res.maxDelta
		}
		agg.finite = agg.finite && res.finite
	}
	// Commit: every buffer is fully written before any field is replaced.
	for gi := range s.rooms {
		s.next[gi] = s.rooms[gi].Grid.SwapValues(s.next[gi])
	}
	s.state.Steps++
	s.state.ElapsedTime += s.cfg.Dt
	s.state.MaxDelta = agg.maxDelta
	if !agg.finite {
		s.diverged = true
		return s.State(), fmt.Errorf("step %d, t=%.3fs: %w", s.state.Steps, s.state.ElapsedTime, ErrNumericalDivergence)
	}
	return s.State(), nil
}

// RunUntil steps until the largest per-cell change of a step drops below
// tolerance or maxSteps is reached. The returned state's Converged flag
// reports which happened.
func (s *Stepper) RunUntil(maxSteps int, tolerance float64) (model.SimulationState, error) {
	logEvery := maxSteps / 10
	for i := 0; i < maxSteps; i++ {
		st, err := s.Step()
		if err != nil {
			return st, err
		}
		if st.MaxDelta < tolerance {
			s.state.Converged = true
			log.WithFields(log.Fields{
				"steps":     s.state.Steps,
				"elapsed":   s.state.ElapsedTime,
				"max_delta": st.MaxDelta,
			}).Info("steady state reached")
			return s.State(), nil
		}
		if logEvery > 0 && (i+1)%logEvery == 0 {
			log.WithFields(log.Fields{
				"steps":     s.state.Steps,
				"max_delta": st.MaxDelta,
			}).Debug("stepping")
		}
	}
	s.state.Converged = false
	return s.State(), nil
}

// State returns a copy of the current simulation state, with the per-source
// cumulative energy keyed by room and cell.
func (s *Stepper) State() model.SimulationState {
	st := s.state
	st.SourceEnergy = make(map[model.SourceKey]float64)
	total := 0.0
	for gi, room := range s.rooms {
		cols := room.Grid.Cols()
		kinds := room.Grid.Kinds()
		for i, e := range s.energy[gi] {
			if kinds[i] != model.HeatSource {
				continue
			}
			st.SourceEnergy[model.SourceKey{Room: gi, Row: i / cols, Col: i % cols}] = e
			total += e
		}
	}
	st.TotalEnergy = total
	return st
}

// heatingActive evaluates room gi's thermostat against the pre-step field.
func (s *Stepper) heatingActive(gi int) bool {
	th := s.rooms[gi].Thermostat
	if th == nil {
		return true
	}
	g := s.rooms[gi].Grid
	rect := th.Sensor
	if rect.IsZero() {
		rect = model.Rect{Rows: g.Rows(), Cols: g.Cols()}
	}
	cur := g.Values()
	cols := g.Cols()
	sum, n := 0.0, 0
	for r := rect.Row; r < rect.Row+rect.Rows && r < g.Rows(); r++ {
		if r < 0 {
			continue
		}
		for c := rect.Col; c < rect.Col+rect.Cols && c < cols; c++ {
			if c < 0 {
				continue
			}
			sum += cur[r*cols+c]
			n++
		}
	}
	if n == 0 {
		return true
	}
	return sum/float64(n) < th.Target
}

// sweepRows computes rows [r0, r1) of room gi from the pre-step fields into
// the room's write buffer. Rows of distinct bands never share cells, so
// bands may run concurrently.
func (s *Stepper) sweepRows(gi, r0, r1 int) sweepResult {
	room := s.rooms[gi]
	g := room.Grid
	rows, cols := g.Rows(), g.Cols()
	cur := g.Values()
	kinds := g.Kinds()
	powers := g.Powers()
	next := s.next[gi]
	dt := s.cfg.Dt
	res := sweepResult{finite: true}

	for r := r0; r < r1; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			t := cur[i]
			k := kinds[i]

			// Missing neighbours contribute the cell's own value (zero
			// flux). The pairwise grouping keeps mirrored cells bitwise
			// identical under reflection.
			up, down, left, right := t, t, t, t
			if r > 0 {
				up = cur[i-cols]
			}
			if r < rows-1 {
				down = cur[i+cols]
			}
			if c > 0 {
				left = cur[i-1]
			}
			if c < cols-1 {
				right = cur[i+1]
			}
			lap := (up + down) + (left + right) - 4*t
			nt := t + s.factor[k]*lap

			switch k {
			case model.HeatSource:
				if s.heatOn[gi] {
					nt += powers[i] * dt / s.cfg.Materials.CellHeatCapacity
					s.energy[gi][i] += powers[i] * dt
				}
			case model.Wall, model.Window:
				if target, coef, ok := s.boundary(gi, r, c, k); ok {
					nt += coef * (target - t) * dt
				}
			}

			next[i] = nt
			if d := math.Abs(nt - t); d > res.maxDelta {
				res.maxDelta = d
			}
			if math.IsNaN(nt) || math.IsInf(nt, 0) {
				res.finite = false
			}
		}
	}
	return res
}

// boundary resolves the Newton-cooling partner of an edge cell: the matching
// cell of a coupled neighbour room on a shared wall, the exterior
// temperature otherwise. Non-edge wall cells get no boundary term.
func (s *Stepper) boundary(gi, r, c int, k model.CellKind) (float64, float64, bool) {
	g := s.rooms[gi].Grid
	rows, cols := g.Rows(), g.Cols()
	if r != 0 && r != rows-1 && c != 0 && c != cols-1 {
		return 0, 0, false
	}
	if c == cols-1 && s.coupledRight[gi] >= 0 {
		peer := s.rooms[s.coupledRight[gi]].Grid
		return peer.Values()[r*peer.Cols()], s.coefRight[gi], true
	}
	if c == 0 && s.coupledLeft[gi] >= 0 {
		peer := s.rooms[s.coupledLeft[gi]].Grid
		return peer.Values()[r*peer.Cols()+peer.Cols()-1], s.coefLeft[gi], true
	}
	return s.rooms[gi].ExteriorTemperature, s.cfg.Materials.ByKind(k).BoundaryCoefficient, true
}
