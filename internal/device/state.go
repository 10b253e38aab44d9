package device

import (
	"github.com/smazurov/rgbnode/internal/profile"
)

// State is a read-only copy of the device state.
type State struct {
	Config    profile.Config `json:"config" doc:"Active configuration"`
	Profiles  profile.Table  `json:"profiles" doc:"Profile table, indexed by slot"`
	Labels    []string       `json:"labels" doc:"Selector caption of every slot"`
	Look      string         `json:"look" enum:"off,solid,rainbow" doc:"What the strip shows"`
	Animation AnimationState `json:"animation" doc:"Rainbow animation clock"`
	Records   []RecordState  `json:"records" doc:"Persisted records"`
}

// AnimationState describes the animation clock.
type AnimationState struct {
	Running  bool  `json:"running" doc:"Whether the clock is armed"`
	PeriodMs int64 `json:"period_ms" example:"10" doc:"Frame period in milliseconds"`
	Phase    uint8 `json:"phase" doc:"Current rainbow seed"`
}

// RecordState describes one persisted record.
type RecordState struct {
	Name    string `json:"name" example:"config.dat" doc:"Record file name"`
	Pending bool   `json:"pending" doc:"Whether changes are waiting to be written"`
}

// Snapshot copies the current state.
func (d *Device) Snapshot() State {
	st := State{
		Config:   d.cfg,
		Profiles: d.table,
		Labels:   d.table.Labels(),
		Look:     lookName(d.last),
		Animation: AnimationState{
			Running:  d.anim.Running(),
			PeriodMs: d.anim.Period().Milliseconds(),
			Phase:    d.anim.Phase(),
		},
	}
	for _, rec := range d.records() {
		st.Records = append(st.Records, RecordState{Name: rec.Name(), Pending: rec.Pending()})
	}
	return st
}
