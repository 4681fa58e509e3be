package impact

import (
	"strconv"
	"strings"
)

// column is one model feature. Training rows and predictor input share the
// columns slice, so both always see the same feature order.
type column struct {
	name  string
	value func(GameState) float64
	// prec is the number of decimals written to the csv, -1 for counts and flags
	prec int
}

var columns = [Features]column{
	{"aliveAttackers", func(g GameState) float64 { return float64(g.AliveAttackers) }, -1},
	{"aliveDefenders", func(g GameState) float64 { return float64(g.AliveDefenders) }, -1},
	{"spikeDefused", func(g GameState) float64 { return bToF64(g.SpikeDefused) }, -1},
	{"spikePlanted", func(g GameState) float64 { return bToF64(g.SpikePlanted) }, -1},
	{"meanHealthAttackers", func(g GameState) float64 { return g.MeanHealthAttackers }, 4},
	{"meanHealthDefenders", func(g GameState) float64 { return g.MeanHealthDefenders }, 4},
	{"meanValueAttackers", func(g GameState) float64 { return g.MeanValueAttackers }, 4},
	{"meanValueDefenders", func(g GameState) float64 { return g.MeanValueDefenders }, 4},
	{"roundTime", func(g GameState) float64 { return g.RoundTime }, 4},
}

// CSVHeader names the columns written by MakeCSVLine, label first
var CSVHeader = func() string {
	names := []string{"roundWinner"}
	for _, c := range columns {
		names = append(names, c.name)
	}
	return strings.Join(names, ",")
}()

// features writes the model input of a game state into row
func features(g GameState, row []float64) {
	for i, c := range columns {
		row[i] = c.value(g)
	}
}

// MakeCSVLine formats a state as a single model training row
func MakeCSVLine(state *State) string {
	fields := make([]string, 0, Features+1)
	fields = append(fields, strconv.FormatUint(uint64(state.RoundWinner), 10))
	for _, c := range columns {
		fields = append(fields, strconv.FormatFloat(c.value(state.GameState), 'f', c.prec, 64))
	}
	return strings.Join(fields, ",")
}
