package impact

import "github.com/phil-holland/spike-round-sim/internal/timeline"

// GameState holds the round state information used for model
// training/inference
type GameState struct {
	AliveAttackers      int     `json:"aliveAttackers"`
	AliveDefenders      int     `json:"aliveDefenders"`
	MeanHealthAttackers float64 `json:"meanHealthAttackers"`
	MeanHealthDefenders float64 `json:"meanHealthDefenders"`
	MeanValueAttackers  float64 `json:"meanValueAttackers"`
	MeanValueDefenders  float64 `json:"meanValueDefenders"`
	// RoundTime counts seconds since the round started, or since the plant
	// once the spike is down
	RoundTime    float64 `json:"roundTime"`
	SpikePlanted bool    `json:"spikePlanted"`
	SpikeDefused bool    `json:"spikeDefused"`
}

// State holds the game state straight after a single timeline event
type State struct {
	EventID   int       `json:"eventId"`
	Timestamp int64     `json:"timestamp"`
	Type      string    `json:"type"`
	GameState GameState `json:"gameState"`
	Tags      []Tag     `json:"tags"`
	// RoundWinner is 1 if the attackers won the round, 0 otherwise
	RoundWinner uint `json:"roundWinner"`
}

// Tag credits a player with an action at a state
type Tag struct {
	Action string            `json:"action"`
	Player timeline.PlayerID `json:"player"`
}

// Rating holds the impact rating of a single round
type Rating struct {
	Metadata           Metadata            `json:"metadata"`
	Players            []PlayerRating      `json:"players"`
	RatingChanges      []RatingChange      `json:"ratingChanges"`
	OutcomePredictions []OutcomePrediction `json:"outcomePredictions"`
}

// Metadata holds all the metadata (version etc.) for a rating
type Metadata struct {
	Version string `json:"version"`
}

// PlayerRating holds rating summary data for a single player
type PlayerRating struct {
	Player          timeline.PlayerID `json:"player"`
	Side            timeline.Side     `json:"side"`
	TotalRating     float64           `json:"totalRating"`
	RatingBreakdown RatingBreakdown   `json:"ratingBreakdown"`
}

// RatingChange holds data describing an individual rating change
type RatingChange struct {
	EventID   int               `json:"eventId"`
	Timestamp int64             `json:"timestamp"`
	Player    timeline.PlayerID `json:"player"`
	Change    float64           `json:"change"`
	Action    string            `json:"action"`
}

// OutcomePrediction holds the attackers' predicted chance of winning the
// round after an event
type OutcomePrediction struct {
	EventID           int     `json:"eventId"`
	Timestamp         int64   `json:"timestamp"`
	OutcomePrediction float64 `json:"outcomePrediction"`
}

// RatingBreakdown holds data to describe how a rating is broken down into
// constituent actions
type RatingBreakdown struct {
	DamageRating      float64 `json:"damageRating"`
	FlashAssistRating float64 `json:"flashAssistRating"`
	TradeDamageRating float64 `json:"tradeDamageRating"`
	DefuseRating      float64 `json:"defuseRating"`
	HurtRating        float64 `json:"hurtRating"`
	AliveRating       float64 `json:"aliveRating"`
}

// add credits a change to the breakdown field of an action
func (b *RatingBreakdown) add(action string, change float64) {
	switch action {
	case ActionDamage:
		b.DamageRating += change
	case ActionFlashAssist:
		b.FlashAssistRating += change
	case ActionTradeDamage:
		b.TradeDamageRating += change
	case ActionDefuse, ActionDefusedOn:
		b.DefuseRating += change
	case ActionHurt:
		b.HurtRating += change
	case ActionAlive:
		b.AliveRating += change
	}
}
