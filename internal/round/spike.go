package round

import "github.com/phil-holland/spike-round-sim/internal/timeline"

// SpikePhase is the single state token of the round objective
type SpikePhase string

const (
	SpikeCarried   SpikePhase = "carried"
	SpikeDropped   SpikePhase = "dropped"
	SpikePlanting  SpikePhase = "planting"
	SpikePlanted   SpikePhase = "planted"
	SpikeDefusing  SpikePhase = "defusing"
	SpikeDefused   SpikePhase = "defused"
	SpikeDetonated SpikePhase = "detonated"
)

// Armed returns true while the post-plant clock is running
func (p SpikePhase) Armed() bool {
	return p == SpikePlanted || p == SpikeDefusing
}

// Spike holds the objective state. Which fields are meaningful depends on
// the phase: Holder while carried or planting, Location while dropped, Site
// and PlantedAt from the plant onwards, Defuser while defusing.
type Spike struct {
	Phase     SpikePhase        `json:"phase"`
	Holder    timeline.PlayerID `json:"holder,omitempty"`
	Location  string            `json:"location,omitempty"`
	Site      timeline.Site     `json:"site,omitempty"`
	Planter   timeline.PlayerID `json:"planter,omitempty"`
	PlantedAt int64             `json:"plantedAt,omitempty"`
	Defuser   timeline.PlayerID `json:"defuser,omitempty"`
	// ActionStart is when the current plant or defuse began
	ActionStart int64 `json:"actionStart,omitempty"`
	// Checkpoint is set once a defuse has passed the halfway mark; the next
	// defuse only needs to cover the second half
	Checkpoint bool `json:"checkpoint,omitempty"`
}

type edge struct {
	from SpikePhase
	kind timeline.Kind
}

// transitions is the complete spike graph. Anything not listed is illegal.
var transitions = map[edge]SpikePhase{
	{SpikeCarried, timeline.KindPlantStart}:       SpikePlanting,
	{SpikePlanting, timeline.KindPlantInterrupt}:  SpikeCarried,
	{SpikePlanting, timeline.KindPlantComplete}:   SpikePlanted,
	{SpikeCarried, timeline.KindSpikeDrop}:        SpikeDropped,
	{SpikeDropped, timeline.KindSpikePickup}:      SpikeCarried,
	{SpikePlanted, timeline.KindDefuseStart}:      SpikeDefusing,
	{SpikeDefusing, timeline.KindDefuseInterrupt}: SpikePlanted,
	{SpikeDefusing, timeline.KindDefuseComplete}:  SpikeDefused,
	{SpikePlanted, timeline.KindSpikeDetonation}:  SpikeDetonated,
}

// Transition returns the phase a spike event moves the spike to, and false if
// the event is not a legal edge out of the given phase
func Transition(from SpikePhase, kind timeline.Kind) (SpikePhase, bool) {
	to, ok := transitions[edge{from, kind}]
	return to, ok
}

// IsSpikeEvent returns true for the event kinds that move the spike
func IsSpikeEvent(kind timeline.Kind) bool {
	switch kind {
	case timeline.KindPlantStart, timeline.KindPlantInterrupt, timeline.KindPlantComplete,
		timeline.KindDefuseStart, timeline.KindDefuseInterrupt, timeline.KindDefuseComplete,
		timeline.KindSpikeDrop, timeline.KindSpikePickup, timeline.KindSpikeDetonation:
		return true
	}
	return false
}
