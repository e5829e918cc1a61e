package grid

import (
	"errors"
	"fmt"

	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/model"
)

var (
	// ErrInvalidDimension rejects grids too small for a 5-point stencil.
	ErrInvalidDimension = errors.New("grid: invalid dimension (need rows >= 2 and cols >= 2)")

	// ErrOutOfBounds rejects cell coordinates outside the grid.
	ErrOutOfBounds = errors.New("grid: cell index out of bounds")
)

// Grid is one room's temperature field with a parallel per-cell
// classification and source-power field. The shape is fixed at construction;
// the temperature values are mutated in place by the stepper.
type Grid struct {
	rows, cols int

	temps []float64        // row-major
	kinds []model.CellKind // same shape as temps
	power []float64        // W, nonzero only for HeatSource cells
}

// New returns a grid with every cell at initialTemperature and classified
// Interior. A finite-difference stencil needs at least one interior
// neighbour on each axis, so rows and cols below 2 are rejected.
func New(rows, cols int, initialTemperature float64) (*Grid, error) {
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, rows, cols)
	}
	g := &Grid{
		rows:  rows,
		cols:  cols,
		temps: make([]float64, rows*cols),
		kinds: make([]model.CellKind, rows*cols),
		power: make([]float64, rows*cols),
	}
	for i := range g.temps {
		g.temps[i] = initialTemperature
	}
	return g, nil
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

func (g *Grid) check(r, c int) error {
	if r < 0 || r >= g.rows || c < 0 || c >= g.cols {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, r, c, g.rows, g.cols)
	}
	return nil
}

// At returns the temperature of cell (r, c).
func (g *Grid) At(r, c int) (float64, error) {
	if err := g.check(r, c); err != nil {
		return 0, err
	}
	return g.temps[r*g.cols+c], nil
}

// SetTemperature overwrites one cell, for initial-condition setup.
func (g *Grid) SetTemperature(r, c int, t float64) error {
	if err := g.check(r, c); err != nil {
		return err
	}
	g.temps[r*g.cols+c] = t
	return nil
}

// SetCellKind assigns the classification of one cell.
func (g *Grid) SetCellKind(r, c int, kind model.CellKind) error {
	if err := g.check(r, c); err != nil {
		return err
	}
	g.kinds[r*g.cols+c] = kind
	return nil
}

// KindAt returns the classification of cell (r, c).
func (g *Grid) KindAt(r, c int) (model.CellKind, error) {
	if err := g.check(r, c); err != nil {
		return 0, err
	}
	return g.kinds[r*g.cols+c], nil
}

// ApplyHeatSource marks cell (r, c) as a heat source of the given power.
// Calling it again on the same cell updates the power without touching the
// kind, so source power may change between steps.
func (g *Grid) ApplyHeatSource(r, c int, power float64) error {
	if err := g.check(r, c); err != nil {
		return err
	}
	i := r*g.cols + c
	g.kinds[i] = model.HeatSource
	g.power[i] = power
	return nil
}

// Snapshot returns an independent copy of the temperature field. The caller
// never observes a partially updated field through it.
func (g *Grid) Snapshot() [][]float64 {
	out := make([][]float64, g.rows)
	for r := 0; r < g.rows; r++ {
		row := make([]float64, g.cols)
		copy(row, g.temps[r*g.cols:(r+1)*g.cols])
		out[r] = row
	}
	return out
}

// Values exposes the row-major backing slice for the solver's sweep.
// Presentation code must use Snapshot instead.
func (g *Grid) Values() []float64 { return g.temps }

// Kinds exposes the row-major classification slice for the solver's sweep.
func (g *Grid) Kinds() []model.CellKind { return g.kinds }

// Powers exposes the row-major source-power slice for the solver's sweep.
func (g *Grid) Powers() []float64 { return g.power }

// SwapValues replaces the backing temperature slice with buf and returns the
// previous one. The stepper uses it to commit a fully written new buffer, so
// no step ever reads a partially updated field.
func (g *Grid) SwapValues(buf []float64) []float64 {
	if len(buf) != len(g.temps) {
		panic("grid: swap buffer size mismatch")
	}
	old := g.temps
	g.temps = buf
	return old
}
