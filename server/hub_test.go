package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/config"
	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/model"
)

func TestApplyEnvBuildsSingleRoom(t *testing.T) {
	h := NewHub(config.Default())
	defer h.close()

	if err := h.applyEnv(model.Env{ExteriorTemperature: -5}); err != nil {
		t.Fatal(err)
	}
	if h.sc == nil || len(h.sc.Rooms) != 1 {
		t.Fatalf("expected one room, got %+v", h.sc)
	}
	g := h.sc.Rooms[0]
	if g.Rows() != 40 || g.Cols() != 40 {
		t.Fatalf("room is %dx%d, want the configured 40x40", g.Rows(), g.Cols())
	}
	// Window occupies the middle half of the left wall.
	if k, _ := g.KindAt(20, 0); k != model.Window {
		t.Fatalf("(20,0) = %v, want Window", k)
	}
	if k, _ := g.KindAt(5, 0); k != model.Wall {
		t.Fatalf("(5,0) = %v, want Wall", k)
	}
	// Radiator column sits one cell off the window wall by default.
	if k, _ := g.KindAt(15, 1); k != model.HeatSource {
		t.Fatalf("(15,1) = %v, want HeatSource", k)
	}
	// Unset hours fall back to the configured default.
	if want := int(6 * 3600 / 0.01); h.maxSteps() != want {
		t.Fatalf("maxSteps = %d, want %d", h.maxSteps(), want)
	}
}

func TestApplyEnvDefaultsExteriorTemperature(t *testing.T) {
	h := NewHub(config.Default())
	defer h.close()

	if err := h.applyEnv(model.Env{}); err != nil {
		t.Fatal(err)
	}
	if got := h.env.ExteriorTemperature; got != -5 {
		t.Fatalf("exterior = %v, want the configured default -5", got)
	}
}

func TestApplyEnvBuildsPresetRow(t *testing.T) {
	h := NewHub(config.Default())
	defer h.close()

	if err := h.applyEnv(model.Env{Preset: "parasitism"}); err != nil {
		t.Fatal(err)
	}
	if len(h.sc.Rooms) != 3 {
		t.Fatalf("expected three rooms, got %d", len(h.sc.Rooms))
	}
	// Presets drop the exterior window.
	for i, g := range h.sc.Rooms {
		for r := 0; r < g.Rows(); r++ {
			if k, _ := g.KindAt(r, 0); k == model.Window {
				t.Fatalf("room %d kept a window at (%d,0)", i, r)
			}
		}
	}

	if err := h.applyEnv(model.Env{Preset: "freeloading"}); err == nil {
		t.Fatal("unknown preset accepted")
	}
}

func TestApplyEnvReplacesScenario(t *testing.T) {
	h := NewHub(config.Default())
	defer h.close()

	if err := h.applyEnv(model.Env{}); err != nil {
		t.Fatal(err)
	}
	first := h.sc
	if err := h.applyEnv(model.Env{Preset: "isolation"}); err != nil {
		t.Fatal(err)
	}
	if h.sc == first {
		t.Fatal("env change kept the old session")
	}
}

func TestEnvRequestRepliesEnvSet(t *testing.T) {
	h := NewHub(config.Default())
	defer h.close()
	go h.handleRequest()

	content, err := json.Marshal(model.Env{HeaterPower: 800})
	if err != nil {
		t.Fatal(err)
	}
	h.msg <- model.Msg{Type: "env", Content: string(content)}
	select {
	case reply := <-h.envSet:
		if reply.Type != "envSet" {
			t.Fatalf("reply type = %q, want envSet", reply.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no reply to env request")
	}

	// A broken payload is logged and dropped, not applied.
	h.msg <- model.Msg{Type: "env", Content: "{"}
	h.msg <- model.Msg{Type: "stop"}
	select {
	case reply := <-h.stopped:
		if reply.Type != "stopped" {
			t.Fatalf("reply type = %q, want stopped", reply.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no reply to stop request")
	}
}

// A stop request must end a periodic run even when the runner is mid-tick or
// blocked handing over a snapshot; the step counter freezes once it returns.
func TestStopEndsPeriodicRun(t *testing.T) {
	h := NewHub(config.Default())
	defer h.close()

	if err := h.applyEnv(model.Env{}); err != nil {
		t.Fatal(err)
	}
	h.calcHub.StartSignal()
	exited := make(chan struct{})
	go func() {
		h.runPeriodically()
		close(exited)
	}()

	// Let it step at least one tick, then stop without draining pushes.
	time.Sleep(20 * time.Millisecond)
	h.calcHub.StopSignal()
	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("periodic run kept going after stop")
	}
	before := h.sc.State().Steps
	time.Sleep(50 * time.Millisecond)
	if after := h.sc.State().Steps; after != before {
		t.Fatalf("still stepping after stop: %d -> %d", before, after)
	}
}

// Periodic pushes carry a payload marshaled between steps, so the receiver
// never reads the live solver state.
func TestPeriodicPushCarriesPayload(t *testing.T) {
	h := NewHub(config.Default())
	defer h.close()

	if err := h.applyEnv(model.Env{}); err != nil {
		t.Fatal(err)
	}
	h.calcHub.StartSignal()
	go h.runPeriodically()
	defer h.calcHub.StopSignal()

	var content []byte
	select {
	case content = <-h.calcHub.PeriodCalcResult:
	case <-time.After(5 * time.Second):
		t.Fatal("no periodic push")
	}
	var data TemperatureData
	if err := json.Unmarshal(content, &data); err != nil {
		t.Fatalf("push payload not a snapshot: %v", err)
	}
	if len(data.Rooms) != 1 || len(data.Rooms[0]) != 40 || len(data.Rooms[0][0]) != 40 {
		t.Fatalf("payload shape wrong: %+v", data.Rooms)
	}
	if data.Steps < 1 {
		t.Fatalf("payload steps = %d", data.Steps)
	}
}

// Closing the hub must terminate both handler loops; a finished connection
// may not leave goroutines behind.
func TestCloseEndsHandlerLoops(t *testing.T) {
	h := NewHub(config.Default())

	requestExited := make(chan struct{})
	go func() {
		h.handleRequest()
		close(requestExited)
	}()
	responseExited := make(chan struct{})
	go func() {
		h.handleResponse()
		close(responseExited)
	}()

	h.close()
	for name, exited := range map[string]chan struct{}{
		"request":  requestExited,
		"response": responseExited,
	} {
		select {
		case <-exited:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s loop still running after close", name)
		}
	}
}

func TestBuildData(t *testing.T) {
	h := NewHub(config.Default())
	defer h.close()

	if err := h.applyEnv(model.Env{}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := h.sc.Step(); err != nil {
			t.Fatal(err)
		}
	}
	data := h.buildData()
	if len(data.Rooms) != 1 || len(data.Rooms[0]) != 40 || len(data.Rooms[0][0]) != 40 {
		t.Fatalf("snapshot shape wrong: %d rooms", len(data.Rooms))
	}
	if data.Steps != 3 {
		t.Fatalf("steps = %d, want 3", data.Steps)
	}
	if len(data.Metrics.RoomMeans) != 1 {
		t.Fatalf("metrics cover %d rooms", len(data.Metrics.RoomMeans))
	}
}
