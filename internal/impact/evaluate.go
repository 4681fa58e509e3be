package impact

import (
	"fmt"

	"github.com/dmitryikh/leaves"
	"github.com/phil-holland/spike-round-sim/internal/round"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

//go:generate go tool mockgen -destination=./mocks/predictor_mock.go -package=mocks . Predictor

// Predictor produces the attackers' chance of winning from dense rows of
// game state features
type Predictor interface {
	PredictDense(vals []float64, nrows int, ncols int, predictions []float64, nEstimators int, nThreads int) error
	NFeatures() int
}

// Features is the number of columns in each row passed to a Predictor
const Features = 9

// LoadModel loads a LightGBM model from a text model file
func LoadModel(path string) (Predictor, error) {
	model, err := leaves.LGEnsembleFromFile(path, true)
	if err != nil {
		return nil, fmt.Errorf("loading model %q: %w", path, err)
	}
	if model.NFeatures() != Features {
		return nil, fmt.Errorf("model %q expects %d features, want %d", path, model.NFeatures(), Features)
	}
	return model, nil
}

// Evaluate rates every player's impact on a round from the outcome
// prediction change across its states. Positive changes favour the
// attackers; each change is split between the players tagged on its state.
func Evaluate(states []State, players []round.PlayerState, predictor Predictor) (Rating, error) {
	if n := predictor.NFeatures(); n != Features {
		return Rating{}, fmt.Errorf("predictor expects %d features, want %d", n, Features)
	}

	// build the input float slice
	cols := Features
	input := make([]float64, len(states)*cols)
	for idx, state := range states {
		features(state.GameState, input[idx*cols:(idx+1)*cols])
	}

	preds := make([]float64, len(states))
	if len(states) > 0 {
		if err := predictor.PredictDense(input, len(states), cols, preds, 0, 1); err != nil {
			return Rating{}, fmt.Errorf("predicting outcomes: %w", err)
		}
	}

	e := &evaluation{
		sides: make(map[timeline.PlayerID]timeline.Side, len(players)),
		rating: Rating{
			Metadata:           Metadata{Version: Version},
			Players:            []PlayerRating{},
			RatingChanges:      []RatingChange{},
			OutcomePredictions: []OutcomePrediction{},
		},
		breakdowns: make(map[timeline.PlayerID]*RatingBreakdown, len(players)),
	}
	for _, p := range players {
		e.sides[p.ID] = p.Side
		e.breakdowns[p.ID] = &RatingBreakdown{}
	}

	var lastPred float64
	for idx, state := range states {
		pred := clamp(preds[idx])

		// the outcome is known once the round ends or the spike goes off
		switch timeline.Kind(state.Type) {
		case timeline.KindRoundEnd:
			pred = float64(state.RoundWinner)
		case timeline.KindSpikeDetonation:
			pred = 1.0
		}

		e.rating.OutcomePredictions = append(e.rating.OutcomePredictions, OutcomePrediction{
			EventID:           state.EventID,
			Timestamp:         state.Timestamp,
			OutcomePrediction: pred,
		})

		// the round start state only sets the baseline
		if idx > 0 {
			e.credit(state, pred-lastPred)
		}
		lastPred = pred
	}

	for _, p := range players {
		b := e.breakdowns[p.ID]
		e.rating.Players = append(e.rating.Players, PlayerRating{
			Player:          p.ID,
			Side:            p.Side,
			TotalRating:     b.total(),
			RatingBreakdown: *b,
		})
	}
	return e.rating, nil
}

type evaluation struct {
	sides      map[timeline.PlayerID]timeline.Side
	rating     Rating
	breakdowns map[timeline.PlayerID]*RatingBreakdown
}

// credit splits an attacker-positive change between the players tagged on a
// state
func (e *evaluation) credit(state State, change float64) {
	switch timeline.Kind(state.Type) {
	case timeline.KindDamage:
		e.creditDamage(state, change)
	default:
		// defuse and alive tags share the change evenly within each side
		bySide := map[timeline.Side][]Tag{}
		for _, tag := range state.Tags {
			side, ok := e.sides[tag.Player]
			if !ok {
				continue
			}
			bySide[side] = append(bySide[side], tag)
		}
		for _, side := range []timeline.Side{timeline.SideAttacker, timeline.SideDefender} {
			tags := bySide[side]
			avgChange := change / float64(len(tags))
			for _, tag := range tags {
				e.add(state, tag.Player, tag.Action, avgChange)
			}
		}
	}
}

func (e *evaluation) creditDamage(state State, change float64) {
	var flashingPlayer timeline.PlayerID
	var teamFlash bool
	var damagingPlayer timeline.PlayerID
	var hurtingPlayer timeline.PlayerID
	var tradedPlayers []timeline.PlayerID

	for _, tag := range state.Tags {
		switch tag.Action {
		case ActionFlashAssist:
			flashingPlayer = tag.Player
		case ActionDamage:
			damagingPlayer = tag.Player
		case ActionHurt:
			hurtingPlayer = tag.Player
		case ActionTradeDamage:
			tradedPlayers = append(tradedPlayers, tag.Player)
		}
	}

	if flashingPlayer != "" {
		// was this a teamflash?
		if e.sides[flashingPlayer] == e.sides[hurtingPlayer] {
			teamFlash = true
		}
	}

	splitChange := change
	if flashingPlayer != "" && !teamFlash && damagingPlayer != "" && len(tradedPlayers) > 0 {
		// flash assist + trade damage
		splitChange /= 3.0
	} else if damagingPlayer != "" && len(tradedPlayers) > 0 {
		// just trade damage
		splitChange /= 2.0
	} else if flashingPlayer != "" && !teamFlash && damagingPlayer != "" {
		// just flash assist
		splitChange /= 2.0
	}

	if damagingPlayer != "" {
		e.add(state, damagingPlayer, ActionDamage, splitChange)
	}
	if flashingPlayer != "" && !teamFlash {
		e.add(state, flashingPlayer, ActionFlashAssist, splitChange)
	}
	for _, tp := range tradedPlayers {
		e.add(state, tp, ActionTradeDamage, splitChange/float64(len(tradedPlayers)))
	}

	if hurtingPlayer != "" {
		hurtChange := change
		if flashingPlayer != "" && teamFlash {
			// player was teamflashed
			hurtChange /= 2.0
			e.add(state, flashingPlayer, ActionFlashAssist, hurtChange)
		}
		e.add(state, hurtingPlayer, ActionHurt, hurtChange)
	}
}

// add records a change for a player, flipping its sign for defenders
func (e *evaluation) add(state State, player timeline.PlayerID, action string, change float64) {
	side, ok := e.sides[player]
	if !ok {
		return
	}
	if side == timeline.SideDefender {
		change = -change
	}
	e.rating.RatingChanges = append(e.rating.RatingChanges, RatingChange{
		EventID:   state.EventID,
		Timestamp: state.Timestamp,
		Player:    player,
		Change:    change,
		Action:    action,
	})
	e.breakdowns[player].add(action, change)
}

func (b RatingBreakdown) total() float64 {
	return b.DamageRating + b.FlashAssistRating + b.TradeDamageRating +
		b.DefuseRating + b.HurtRating + b.AliveRating
}

func clamp(p float64) float64 {
	return max(0, min(1, p))
}

func bToF64(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
