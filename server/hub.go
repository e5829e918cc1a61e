package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/calculator"
	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/config"
	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/model"
	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/scenario"
)

// TemperatureData is the payload pushed to the UI after a run or on each
// periodic tick: fields per room plus the derived scalars.
type TemperatureData struct {
	Rooms       [][][]float64    `json:"rooms"`
	ElapsedTime float64          `json:"elapsed_time"`
	Steps       int              `json:"steps"`
	Converged   bool             `json:"converged"`
	Metrics     scenario.Metrics `json:"metrics"`
}

// Hub maintains one client's simulation session: requests come in over msg,
// replies and periodic snapshots go back out through the response loop.
type Hub struct {
	cfg     *config.Config
	sc      *scenario.Scenario
	calcHub *calculator.CalcHub
	conn    *websocket.Conn
	env     model.Env // resolved settings of the active session

	// request
	msg chan model.Msg
	// response
	envSet   chan model.Msg
	finished chan model.Msg
	stopped  chan model.Msg

	done      chan struct{}
	closeOnce sync.Once
}

func NewHub(cfg *config.Config) *Hub {
	return &Hub{
		cfg:      cfg,
		calcHub:  calculator.NewCalcHub(),
		msg:      make(chan model.Msg, 10),
		envSet:   make(chan model.Msg, 10),
		finished: make(chan model.Msg, 10),
		stopped:  make(chan model.Msg, 10),
		done:     make(chan struct{}),
	}
}

// close ends the session: any periodic run, both handler loops and the
// scenario's workers.
func (h *Hub) close() {
	h.closeOnce.Do(func() {
		h.calcHub.StopSignal()
		close(h.done)
		close(h.msg)
		if h.sc != nil {
			h.sc.Close()
		}
	})
}

func (h *Hub) handleRequest() {
	for msg := range h.msg {
		switch msg.Type {
		case "env":
			var env model.Env
			if err := json.Unmarshal([]byte(msg.Content), &env); err != nil {
				log.WithError(err).Error("bad env message")
				continue
			}
			if err := h.applyEnv(env); err != nil {
				log.WithError(err).Error("scenario build failed")
				h.envSet <- model.Msg{Type: "error", Content: err.Error()}
				continue
			}
			h.envSet <- model.Msg{Type: "envSet", Content: "env is set"}
		case "start":
			// Run to steady state, then push the result once.
			go h.runToSteadyState()
		case "run":
			// Periodic mode: keep stepping and push a frame per period
			// until stopped or converged.
			h.calcHub.StartSignal()
			go h.runPeriodically()
		case "stop":
			h.calcHub.StopSignal()
			h.stopped <- model.Msg{Type: "stopped", Content: "stopped"}
		default:
			log.WithField("type", msg.Type).Warn("no such type")
		}
	}
}

func (h *Hub) handleResponse() {
	for {
		select {
		case <-h.done:
			return
		case reply := <-h.envSet:
			h.write(reply)
		case reply := <-h.finished:
			h.write(reply)
		case reply := <-h.stopped:
			h.write(reply)
		case content := <-h.calcHub.PeriodCalcResult:
			h.write(model.Msg{Type: "snapshot", Content: string(content)})
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (h *Hub) write(msg model.Msg) {
	if h.conn == nil {
		return
	}
	if err := h.conn.WriteJSON(&msg); err != nil {
		log.WithError(err).Error("write failed")
	}
}

// applyEnv rebuilds the simulation session from the client's settings.
// Changing the configuration always discards the previous state.
func (h *Hub) applyEnv(env model.Env) error {
	d := h.cfg.Defaults
	if env.SimulationHours <= 0 {
		env.SimulationHours = d.SimulationHours
	}
	if env.HeaterPower <= 0 {
		env.HeaterPower = d.HeaterPower
	}
	if env.ThermostatTarget == 0 {
		env.ThermostatTarget = d.ThermostatTarget
	}
	if env.InitialTemperature == 0 {
		env.InitialTemperature = d.InitialTemperature
	}
	if env.ExteriorTemperature == 0 {
		env.ExteriorTemperature = d.ExteriorTemperature
	}

	rows, cols := d.Rows, d.Cols
	base := model.RoomConfig{
		Rows:                rows,
		Cols:                cols,
		InitialTemperature:  env.InitialTemperature,
		ExteriorTemperature: env.ExteriorTemperature,
		HeaterPower:         env.HeaterPower,
		// Radiator: a two-cell-wide column centered vertically, offset from
		// the window wall by the requested number of cells.
		Heater: model.Rect{
			Row:  rows/2 - rows/8,
			Col:  1 + env.RadiatorOffset,
			Rows: rows / 4,
			Cols: 2,
		},
		Thermostat: &model.Thermostat{Target: env.ThermostatTarget},
	}

	var (
		sc  *scenario.Scenario
		err error
	)
	if env.Preset == "" {
		// Problem 1: window on the left wall, middle half of its height.
		base.WindowSide = model.SideLeft
		base.WindowSpan = model.Span{From: rows / 4, To: rows - rows/4}
		sc, err = scenario.BuildSingleRoom(h.cfg.Grid, base, h.cfg.Materials)
	} else {
		var p scenario.Preset
		p, err = scenario.ParsePreset(env.Preset)
		if err == nil {
			sc, err = scenario.BuildPreset(p, h.cfg.Grid, base, h.cfg.Materials)
		}
	}
	if err != nil {
		return err
	}
	if h.sc != nil {
		h.sc.Close()
	}
	h.sc = sc
	h.env = env
	return nil
}

// maxSteps converts the configured simulation hours to step count.
func (h *Hub) maxSteps() int {
	return int(h.env.SimulationHours * 3600 / h.cfg.Grid.Dt)
}

func (h *Hub) runToSteadyState() {
	if h.sc == nil {
		h.finished <- model.Msg{Type: "error", Content: "no scenario configured"}
		return
	}
	st, err := h.sc.RunUntil(h.maxSteps(), h.cfg.Defaults.ConvergenceTol)
	if err != nil {
		h.finished <- model.Msg{Type: "error", Content: err.Error()}
		return
	}
	log.WithFields(log.Fields{
		"steps":     st.Steps,
		"converged": st.Converged,
	}).Info("run finished")
	content, err := json.Marshal(h.buildData())
	if err != nil {
		log.WithError(err).Error("marshal result")
		return
	}
	h.finished <- model.Msg{Type: "finished", Content: string(content)}
}

// runPeriodically advances one simulated second per tick and pushes the
// tick's snapshot payload.
func (h *Hub) runPeriodically() {
	if h.sc == nil {
		return
	}
	stop := h.calcHub.Done()
	if stop == nil {
		return
	}
	perTick := int(1 / h.cfg.Grid.Dt)
	if perTick < 1 {
		perTick = 1
	}
	for {
		select {
		case <-stop:
			return
		default:
		}
		converged := false
		for i := 0; i < perTick; i++ {
			st, err := h.sc.Stepper.Step()
			if err != nil {
				log.WithError(err).Error("step failed")
				return
			}
			if st.MaxDelta < h.cfg.Defaults.ConvergenceTol {
				converged = true
				break
			}
		}
		h.sc.Record()
		// The payload is built here, between steps, so the response loop
		// never touches the live solver buffers.
		content, err := json.Marshal(h.buildData())
		if err != nil {
			log.WithError(err).Error("marshal snapshot")
			return
		}
		select {
		case h.calcHub.PeriodCalcResult <- content:
		case <-stop:
			return
		}
		if converged {
			return
		}
	}
}

func (h *Hub) buildData() TemperatureData {
	st := h.sc.State()
	return TemperatureData{
		Rooms:       h.sc.Snapshots(),
		ElapsedTime: st.ElapsedTime,
		Steps:       st.Steps,
		Converged:   st.Converged,
		Metrics:     h.sc.Metrics(),
	}
}
