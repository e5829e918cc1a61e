package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	body := `[grid]
dx = 0.2
dt = 0.005
workers = 8

[materials]
air_diffusivity = 0.08
wall_coefficient = 0.3

[defaults]
rows = 24
exterior_temperature = -12.5
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Grid.Dx != 0.2 || cfg.Grid.Dt != 0.005 || cfg.Grid.Workers != 8 {
		t.Fatalf("grid = %+v", cfg.Grid)
	}
	if cfg.Materials.Air.Diffusivity != 0.08 {
		t.Fatalf("air diffusivity = %v", cfg.Materials.Air.Diffusivity)
	}
	if cfg.Materials.Wall.BoundaryCoefficient != 0.3 {
		t.Fatalf("wall coefficient = %v", cfg.Materials.Wall.BoundaryCoefficient)
	}
	if cfg.Defaults.Rows != 24 || cfg.Defaults.ExteriorTemperature != -12.5 {
		t.Fatalf("defaults = %+v", cfg.Defaults)
	}

	// Keys the file omits keep their built-in values.
	d := Default()
	if cfg.Materials.Wall.Diffusivity != d.Materials.Wall.Diffusivity {
		t.Fatalf("wall diffusivity = %v, want default %v", cfg.Materials.Wall.Diffusivity, d.Materials.Wall.Diffusivity)
	}
	if cfg.Defaults.Cols != d.Defaults.Cols || cfg.Defaults.HeaterPower != d.Defaults.HeaterPower {
		t.Fatalf("defaults = %+v, want built-in fallbacks", cfg.Defaults)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.ini")); err == nil {
		t.Fatal("missing file loaded without error")
	}
}

func TestDefaultIsStable(t *testing.T) {
	d := Default()
	// The built-in table must satisfy the explicit-scheme bound itself.
	if r := d.Grid.Dt * d.Materials.MaxDiffusivity() / (d.Grid.Dx * d.Grid.Dx); r > 0.25 {
		t.Fatalf("built-in constants violate the stability bound: r = %v", r)
	}
}
