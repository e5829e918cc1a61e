package grid

import (
	"errors"
	"testing"

	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/model"
)

func TestNewRejectsTinyGrids(t *testing.T) {
	for _, dims := range [][2]int{{1, 10}, {10, 1}, {0, 0}, {-3, 5}} {
		if _, err := New(dims[0], dims[1], 20); !errors.Is(err, ErrInvalidDimension) {
			t.Errorf("New(%d, %d): got %v, want ErrInvalidDimension", dims[0], dims[1], err)
		}
	}
	g, err := New(2, 2, 20)
	if err != nil {
		t.Fatalf("New(2, 2): %v", err)
	}
	if g.Rows() != 2 || g.Cols() != 2 {
		t.Errorf("got %dx%d, want 2x2", g.Rows(), g.Cols())
	}
}

func TestNewFillsInitialTemperature(t *testing.T) {
	g, err := New(3, 4, 18.5)
	if err != nil {
		t.Fatal(err)
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			v, err := g.At(r, c)
			if err != nil {
				t.Fatal(err)
			}
			if v != 18.5 {
				t.Fatalf("cell (%d,%d) = %v, want 18.5", r, c, v)
			}
		}
	}
}

func TestOutOfBounds(t *testing.T) {
	g, _ := New(3, 3, 0)
	cases := [][2]int{{3, 0}, {0, 3}, {-1, 0}, {0, -1}}
	for _, rc := range cases {
		if err := g.SetCellKind(rc[0], rc[1], model.Wall); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("SetCellKind(%d,%d): got %v, want ErrOutOfBounds", rc[0], rc[1], err)
		}
		if _, err := g.At(rc[0], rc[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("At(%d,%d): got %v, want ErrOutOfBounds", rc[0], rc[1], err)
		}
		if err := g.ApplyHeatSource(rc[0], rc[1], 100); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("ApplyHeatSource(%d,%d): got %v, want ErrOutOfBounds", rc[0], rc[1], err)
		}
	}
}

func TestApplyHeatSourcePowerUpdate(t *testing.T) {
	g, _ := New(4, 4, 15)
	if err := g.ApplyHeatSource(2, 2, 500); err != nil {
		t.Fatal(err)
	}
	k, _ := g.KindAt(2, 2)
	if k != model.HeatSource {
		t.Fatalf("kind = %v, want heat_source", k)
	}
	// Power may change between steps without touching the kind.
	if err := g.ApplyHeatSource(2, 2, 750); err != nil {
		t.Fatal(err)
	}
	k, _ = g.KindAt(2, 2)
	if k != model.HeatSource {
		t.Fatalf("kind after power update = %v, want heat_source", k)
	}
	if p := g.Powers()[2*4+2]; p != 750 {
		t.Fatalf("power = %v, want 750", p)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	g, _ := New(3, 3, 10)
	snap := g.Snapshot()
	if err := g.SetTemperature(1, 1, 99); err != nil {
		t.Fatal(err)
	}
	if snap[1][1] != 10 {
		t.Fatalf("snapshot changed with the grid: %v", snap[1][1])
	}
	snap[0][0] = -273
	if v, _ := g.At(0, 0); v != 10 {
		t.Fatalf("grid changed with the snapshot: %v", v)
	}
}

func TestSwapValuesCommitsBuffer(t *testing.T) {
	g, _ := New(2, 2, 1)
	buf := []float64{5, 6, 7, 8}
	old := g.SwapValues(buf)
	for _, v := range old {
		if v != 1 {
			t.Fatalf("old buffer corrupted: %v", old)
		}
	}
	if v, _ := g.At(1, 1); v != 8 {
		t.Fatalf("swapped value = %v, want 8", v)
	}
}
