package impact

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

const headerRound string = "Side \t Player \t Round Impact (%) \t|\t Damage (%) \t Flash Assists (%) \t Trade Damage (%) \t Defuses (%) \t Damage Recv. (%) \t Alive (%)"
const borderRound string = "---- \t ------ \t ---------------- \t|\t ---------- \t ----------------- \t ---------------- \t ----------- \t ---------------- \t ---------"

const headerOverall string = "Side \t Player \t Average Impact (%) \t|\t Damage (%) \t Flash Assists (%) \t Trade Damage (%) \t Defuses (%) \t Damage Recv. (%) \t Alive (%)"
const borderOverall string = "---- \t ------ \t ------------------ \t|\t ---------- \t ----------------- \t ---------------- \t ----------- \t ---------------- \t ---------"

const entry string = "%s \t %s \t %.3f \t|\t %.3f \t %.3f \t %.3f \t %.3f \t %.3f \t %.3f\n"

// Average folds several round ratings into a single per-player average,
// keeping players in the order they first appear
func Average(ratings []Rating) []PlayerRating {
	var order []timeline.PlayerID
	sums := make(map[timeline.PlayerID]*PlayerRating)
	rounds := make(map[timeline.PlayerID]int)

	for _, r := range ratings {
		for _, p := range r.Players {
			sum, ok := sums[p.Player]
			if !ok {
				sum = &PlayerRating{Player: p.Player, Side: p.Side}
				sums[p.Player] = sum
				order = append(order, p.Player)
			}
			rounds[p.Player]++
			sum.TotalRating += p.TotalRating
			sum.RatingBreakdown.DamageRating += p.RatingBreakdown.DamageRating
			sum.RatingBreakdown.FlashAssistRating += p.RatingBreakdown.FlashAssistRating
			sum.RatingBreakdown.TradeDamageRating += p.RatingBreakdown.TradeDamageRating
			sum.RatingBreakdown.DefuseRating += p.RatingBreakdown.DefuseRating
			sum.RatingBreakdown.HurtRating += p.RatingBreakdown.HurtRating
			sum.RatingBreakdown.AliveRating += p.RatingBreakdown.AliveRating
		}
	}

	out := make([]PlayerRating, 0, len(order))
	for _, id := range order {
		sum := sums[id]
		n := float64(rounds[id])
		out = append(out, PlayerRating{
			Player:      id,
			Side:        sum.Side,
			TotalRating: sum.TotalRating / n,
			RatingBreakdown: RatingBreakdown{
				DamageRating:      sum.RatingBreakdown.DamageRating / n,
				FlashAssistRating: sum.RatingBreakdown.FlashAssistRating / n,
				TradeDamageRating: sum.RatingBreakdown.TradeDamageRating / n,
				DefuseRating:      sum.RatingBreakdown.DefuseRating / n,
				HurtRating:        sum.RatingBreakdown.HurtRating / n,
				AliveRating:       sum.RatingBreakdown.AliveRating / n,
			},
		})
	}
	return out
}

// ReportRound writes a single round's ratings as a table, in percent
func ReportRound(w io.Writer, title string, rating Rating) error {
	return report(w, title, headerRound, borderRound, rating.Players)
}

// ReportOverall writes averaged ratings as a table, in percent
func ReportOverall(w io.Writer, players []PlayerRating) error {
	return report(w, "Overall", headerOverall, borderOverall, players)
}

func report(w io.Writer, title, header, border string, players []PlayerRating) error {
	if _, err := fmt.Fprintf(w, "\n> %s:\n\n", title); err != nil {
		return err
	}

	tabWriter := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tabWriter, header)
	fmt.Fprintln(tabWriter, border)
	for _, p := range players {
		b := p.RatingBreakdown
		fmt.Fprintf(tabWriter, entry, p.Side, p.Player, 100.0*p.TotalRating, 100.0*b.DamageRating,
			100.0*b.FlashAssistRating, 100.0*b.TradeDamageRating, 100.0*b.DefuseRating, 100.0*b.HurtRating, 100.0*b.AliveRating)
	}
	return tabWriter.Flush()
}
