package summary

import "github.com/phil-holland/spike-round-sim/internal/timeline"

// RoundsToWin is the regulation score a team needs to take a match
const RoundsToWin = 13

// MatchFinished returns true if a score ends a match played to roundsToWin.
// Once both teams reach roundsToWin-1 the match goes to overtime, which is
// played until one team leads by two.
func MatchFinished(score1 int, score2 int, roundsToWin int) bool {
	overtime := roundsToWin - 1
	if score1 >= overtime && score2 >= overtime {
		return score1-score2 >= 2 || score2-score1 >= 2
	}
	return score1 >= roundsToWin || score2 >= roundsToWin
}

// PlayerTotals holds one player's stats accumulated across rounds
type PlayerTotals struct {
	PlayerInfo
	Rounds         int `json:"rounds"`
	Kills          int `json:"kills"`
	Deaths         int `json:"deaths"`
	Assists        int `json:"assists"`
	Headshots      int `json:"headshots"`
	TradeKills     int `json:"tradeKills"`
	DamageDealt    int `json:"damageDealt"`
	DamageTaken    int `json:"damageTaken"`
	HealingDone    int `json:"healingDone"`
	RoundsSurvived int `json:"roundsSurvived"`
	FirstKills     int `json:"firstKills"`
	FirstDeaths    int `json:"firstDeaths"`
	Clutches       int `json:"clutches"`
	ClutchesWon    int `json:"clutchesWon"`
}

// ADR returns the average damage dealt per round
func (p PlayerTotals) ADR() float64 {
	if p.Rounds == 0 {
		return 0
	}
	return float64(p.DamageDealt) / float64(p.Rounds)
}

// KPR returns the average kills per round
func (p PlayerTotals) KPR() float64 {
	if p.Rounds == 0 {
		return 0
	}
	return float64(p.Kills) / float64(p.Rounds)
}

// HeadshotRate returns the share of kills that were headshots
func (p PlayerTotals) HeadshotRate() float64 {
	if p.Kills == 0 {
		return 0
	}
	return float64(p.Headshots) / float64(p.Kills)
}

// Match accumulates round summaries into per-player match statistics. Sides
// are kept as played: there is no notion of teams swapping here.
type Match struct {
	Rounds     int                           `json:"rounds"`
	Wins       map[timeline.Side]int         `json:"wins"`
	Conditions map[timeline.WinCondition]int `json:"conditions"`

	totals map[timeline.PlayerID]*PlayerTotals
	order  []timeline.PlayerID
}

// NewMatch returns an empty aggregate
func NewMatch() *Match {
	return &Match{
		Wins:       make(map[timeline.Side]int),
		Conditions: make(map[timeline.WinCondition]int),
		totals:     make(map[timeline.PlayerID]*PlayerTotals),
	}
}

// Add folds a round summary into the aggregate
func (m *Match) Add(s Summary) {
	m.Rounds++
	m.Wins[s.Winner]++
	m.Conditions[s.Condition]++

	for _, ps := range s.Players {
		t, ok := m.totals[ps.ID]
		if !ok {
			t = &PlayerTotals{PlayerInfo: ps.PlayerInfo}
			m.totals[ps.ID] = t
			m.order = append(m.order, ps.ID)
		}
		t.Rounds++
		t.Kills += ps.Kills
		t.Deaths += ps.Deaths
		t.Assists += ps.Assists
		t.Headshots += ps.Headshots
		t.TradeKills += ps.TradeKills
		t.DamageDealt += ps.DamageDealt
		t.DamageTaken += ps.DamageTaken
		t.HealingDone += ps.HealingDone
		if ps.Survived {
			t.RoundsSurvived++
		}
		if ps.FirstKill {
			t.FirstKills++
		}
		if ps.FirstDeath {
			t.FirstDeaths++
		}
	}

	if c := s.Clutch; c != nil {
		if t, ok := m.totals[c.Player]; ok {
			t.Clutches++
			if c.Won {
				t.ClutchesWon++
			}
		}
	}
}

// Players returns the accumulated totals in order of first appearance
func (m *Match) Players() []PlayerTotals {
	out := make([]PlayerTotals, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.totals[id])
	}
	return out
}
