package summary

import "github.com/phil-holland/spike-round-sim/internal/timeline"

// PlayerInfo holds the static metadata of one competitor
type PlayerInfo struct {
	ID    timeline.PlayerID `json:"id"`
	Name  string            `json:"name"`
	Side  timeline.Side     `json:"side"`
	Agent string            `json:"agent"`
}

// Summary holds every statistic derived from a single round timeline
type Summary struct {
	Winner     timeline.Side         `json:"winner"`
	Condition  timeline.WinCondition `json:"condition"`
	Duration   int64                 `json:"duration"`
	FirstBlood *FirstBlood           `json:"firstBlood,omitempty"`
	Spike      Spike                 `json:"spike"`
	Clutch     *Clutch               `json:"clutch,omitempty"`
	Totals     Totals                `json:"totals"`
	Players    []PlayerStats         `json:"players"`
}

// FirstBlood holds the earliest kill of the round
type FirstBlood struct {
	EventID   int               `json:"eventId"`
	Timestamp int64             `json:"timestamp"`
	Killer    timeline.PlayerID `json:"killer"`
	Victim    timeline.PlayerID `json:"victim"`
	Weapon    string            `json:"weapon"`
	Headshot  bool              `json:"headshot"`
	Side      timeline.Side     `json:"side"`
}

// Spike holds the objective facts of the round
type Spike struct {
	Planted        bool              `json:"planted"`
	Site           timeline.Site     `json:"site,omitempty"`
	Planter        timeline.PlayerID `json:"planter,omitempty"`
	PlantTime      int64             `json:"plantTime,omitempty"`
	PlantAttempts  int               `json:"plantAttempts"`
	Defused        bool              `json:"defused"`
	Defuser        timeline.PlayerID `json:"defuser,omitempty"`
	DefuseTime     int64             `json:"defuseTime,omitempty"`
	DefuseAttempts int               `json:"defuseAttempts"`
	Detonated      bool              `json:"detonated"`
	Drops          int               `json:"drops"`
}

// Clutch holds the first point in the round where one player was left alone
// against two or more opponents
type Clutch struct {
	Player    timeline.PlayerID `json:"player"`
	Side      timeline.Side     `json:"side"`
	Situation string            `json:"situation"`
	Opponents int               `json:"opponents"`
	Start     int64             `json:"start"`
	// Kills counts the kills the clutching player made from the start onwards
	Kills    int  `json:"kills"`
	Survived bool `json:"survived"`
	Won      bool `json:"won"`
}

// Totals holds round-wide combat and utility aggregates
type Totals struct {
	Kills       int `json:"kills"`
	Headshots   int `json:"headshots"`
	Damage      int `json:"damage"`
	TradeKills  int `json:"tradeKills"`
	AbilityUses int `json:"abilityUses"`
	Heals       int `json:"heals"`
	HealAmount  int `json:"healAmount"`
}

// PlayerStats holds the per-player view of a round
type PlayerStats struct {
	PlayerInfo
	Kills         int  `json:"kills"`
	Deaths        int  `json:"deaths"`
	Assists       int  `json:"assists"`
	Headshots     int  `json:"headshots"`
	TradeKills    int  `json:"tradeKills"`
	DamageDealt   int  `json:"damageDealt"`
	DamageTaken   int  `json:"damageTaken"`
	AbilitiesUsed int  `json:"abilitiesUsed"`
	HealingDone   int  `json:"healingDone"`
	Survived      bool `json:"survived"`
	FirstKill     bool `json:"firstKill"`
	FirstDeath    bool `json:"firstDeath"`
}
