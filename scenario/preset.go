package scenario

import (
	"fmt"

	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/model"
)

// Preset names the neighbour-behaviour variants of the three-apartment row.
type Preset string

const (
	// PresetCooperation heats all three apartments.
	PresetCooperation Preset = "cooperation"
	// PresetParasitism heats only the outer neighbours; the middle
	// apartment lives off the heat leaking through its shared walls.
	PresetParasitism Preset = "parasitism"
	// PresetIsolation heats only the middle apartment, which then also
	// warms the cold neighbours through the shared walls.
	PresetIsolation Preset = "isolation"
)

func ParsePreset(s string) (Preset, error) {
	switch Preset(s) {
	case PresetCooperation, PresetParasitism, PresetIsolation:
		return Preset(s), nil
	}
	return "", fmt.Errorf("scenario: unknown preset %q", s)
}

func (p Preset) heated() [3]bool {
	switch p {
	case PresetParasitism:
		return [3]bool{true, false, true}
	case PresetIsolation:
		return [3]bool{false, true, false}
	}
	return [3]bool{true, true, true}
}

// BuildPreset derives the three room configurations from one base room and
// assembles the row. Unheated rooms lose their radiator and thermostat;
// exterior windows are dropped so the shared-wall exchange dominates.
func BuildPreset(p Preset, spec model.GridSpec, base model.RoomConfig, mats model.MaterialSet) (*Scenario, error) {
	heated := p.heated()
	var cfgs [3]model.RoomConfig
	for i := range cfgs {
		cfg := base
		cfg.WindowSide = model.SideNone
		cfg.WindowSpan = model.Span{}
		if !heated[i] {
			cfg.Heater = model.Rect{}
			cfg.HeaterPower = 0
			cfg.Thermostat = nil
		}
		cfgs[i] = cfg
	}
	return BuildThreeRoomRow(spec, cfgs, mats)
}
