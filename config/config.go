package config

import (
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/model"
)

// DefaultPath is where the constants table lives relative to the binary.
const DefaultPath = "conf/config.ini"

// Defaults are the scenario parameters the UI starts from.
type Defaults struct {
	Rows, Cols          int
	ExteriorTemperature float64 // °C
	InitialTemperature  float64 // °C
	ThermostatTarget    float64 // °C
	HeaterPower         float64 // W
	SimulationHours     float64
	ConvergenceTol      float64
}

// Config is the physical-constants table plus scenario defaults. It is
// loaded once and passed explicitly into scenario building; the solver
// never reads it as ambient state.
type Config struct {
	Grid      model.GridSpec
	Materials model.MaterialSet
	Defaults  Defaults
}

// Default returns the built-in table, used when no ini file is present.
func Default() *Config {
	return &Config{
		Grid: model.GridSpec{Dx: 0.1, Dt: 0.01, Workers: 4},
		Materials: model.MaterialSet{
			Air:              model.Material{Diffusivity: 0.05},
			Wall:             model.Material{Diffusivity: 0.005, BoundaryCoefficient: 0.1},
			Window:           model.Material{Diffusivity: 0.005, BoundaryCoefficient: 0.2},
			CellHeatCapacity: 1000,
		},
		Defaults: Defaults{
			Rows: 40, Cols: 40,
			ExteriorTemperature: -5,
			InitialTemperature:  15,
			ThermostatTarget:    21,
			HeaterPower:         1500,
			SimulationHours:     6,
			ConvergenceTol:      1e-4,
		},
	}
}

// Load reads the constants table from an ini file, falling back to the
// built-in value for any missing key.
func Load(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	d := Default()
	cfg := &Config{
		Grid: model.GridSpec{
			Dx:      file.Section("grid").Key("dx").MustFloat64(d.Grid.Dx),
			Dt:      file.Section("grid").Key("dt").MustFloat64(d.Grid.Dt),
			Workers: file.Section("grid").Key("workers").MustInt(d.Grid.Workers),
		},
		Materials: model.MaterialSet{
			Air: model.Material{
				Diffusivity: file.Section("materials").Key("air_diffusivity").MustFloat64(d.Materials.Air.Diffusivity),
			},
			Wall: model.Material{
				Diffusivity:         file.Section("materials").Key("wall_diffusivity").MustFloat64(d.Materials.Wall.Diffusivity),
				BoundaryCoefficient: file.Section("materials").Key("wall_coefficient").MustFloat64(d.Materials.Wall.BoundaryCoefficient),
			},
			Window: model.Material{
				Diffusivity:         file.Section("materials").Key("window_diffusivity").MustFloat64(d.Materials.Window.Diffusivity),
				BoundaryCoefficient: file.Section("materials").Key("window_coefficient").MustFloat64(d.Materials.Window.BoundaryCoefficient),
			},
			CellHeatCapacity: file.Section("materials").Key("cell_heat_capacity").MustFloat64(d.Materials.CellHeatCapacity),
		},
		Defaults: Defaults{
			Rows:                file.Section("defaults").Key("rows").MustInt(d.Defaults.Rows),
			Cols:                file.Section("defaults").Key("cols").MustInt(d.Defaults.Cols),
			ExteriorTemperature: file.Section("defaults").Key("exterior_temperature").MustFloat64(d.Defaults.ExteriorTemperature),
			InitialTemperature:  file.Section("defaults").Key("initial_temperature").MustFloat64(d.Defaults.InitialTemperature),
			ThermostatTarget:    file.Section("defaults").Key("thermostat_target").MustFloat64(d.Defaults.ThermostatTarget),
			HeaterPower:         file.Section("defaults").Key("heater_power").MustFloat64(d.Defaults.HeaterPower),
			SimulationHours:     file.Section("defaults").Key("simulation_hours").MustFloat64(d.Defaults.SimulationHours),
			ConvergenceTol:      file.Section("defaults").Key("convergence_tolerance").MustFloat64(d.Defaults.ConvergenceTol),
		},
	}
	return cfg, nil
}
