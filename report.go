package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/phil-holland/spike-round-sim/internal/impact"
	"github.com/phil-holland/spike-round-sim/internal/sim"
	"github.com/phil-holland/spike-round-sim/internal/summary"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

const headerRounds string = "Round \t Seed \t Winner \t Condition \t Duration (s) \t Kills \t First Blood \t Clutch \t Warnings"
const borderRounds string = "----- \t ---- \t ------ \t --------- \t ------------ \t ----- \t ----------- \t ------ \t --------"
const entryRounds string = "%d \t %d \t %s \t %s \t %.1f \t %d \t %s \t %s \t %d\n"

const headerPlayers string = "Side \t Player \t Agent \t Kills \t Deaths \t Assists \t ADR \t KPR \t HS (%) \t Clutches"
const borderPlayers string = "---- \t ------ \t ----- \t ----- \t ------ \t ------- \t --- \t --- \t ------ \t --------"
const entryPlayers string = "%s \t %s \t %s \t %d \t %d \t %d \t %.1f \t %.2f \t %.1f \t %d/%d\n"

func printRounds(w io.Writer, results []sim.Result, ratings []impact.Rating) error {
	fmt.Fprintf(w, "\n> Rounds:\n\n")
	tabWriter := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tabWriter, headerRounds)
	fmt.Fprintln(tabWriter, borderRounds)
	for idx, r := range results {
		s := r.Summary
		firstBlood := "-"
		if s.FirstBlood != nil {
			firstBlood = fmt.Sprintf("%s > %s", s.FirstBlood.Killer, s.FirstBlood.Victim)
		}
		clutch := "-"
		if s.Clutch != nil {
			clutch = fmt.Sprintf("%s %s", s.Clutch.Player, s.Clutch.Situation)
			if s.Clutch.Won {
				clutch += " (won)"
			}
		}
		fmt.Fprintf(tabWriter, entryRounds, idx+1, r.Seed, s.Winner, s.Condition,
			float64(s.Duration)/1000, s.Totals.Kills, firstBlood, clutch, len(r.Validation.Warnings))
	}
	tabWriter.Flush()

	for idx, rating := range ratings {
		r := results[idx]
		title := fmt.Sprintf("Round %d [%s, %s]", idx+1, r.Summary.Winner, r.Summary.Condition)
		if err := impact.ReportRound(w, title, rating); err != nil {
			return fmt.Errorf("round %d report: %w", idx+1, err)
		}
	}
	return nil
}

func printMatch(w io.Writer, results []sim.Result, ratings []impact.Rating) error {
	match := summary.NewMatch()
	for _, r := range results {
		match.Add(r.Summary)
	}

	fmt.Fprintf(w, "\n> Match:\n\n")
	fmt.Fprintf(w, "%d rounds played, attackers %d : %d defenders\n", match.Rounds,
		match.Wins[timeline.SideAttacker], match.Wins[timeline.SideDefender])
	for _, c := range []timeline.WinCondition{timeline.WinElimination, timeline.WinSpikeDetonated,
		timeline.WinSpikeDefused, timeline.WinTimeExpired} {
		fmt.Fprintf(w, "  %s: %d\n", c, match.Conditions[c])
	}
	fmt.Fprintf(w, "\n")

	tabWriter := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tabWriter, headerPlayers)
	fmt.Fprintln(tabWriter, borderPlayers)
	for _, p := range match.Players() {
		fmt.Fprintf(tabWriter, entryPlayers, p.Side, p.Name, p.Agent, p.Kills, p.Deaths, p.Assists,
			p.ADR(), p.KPR(), 100.0*p.HeadshotRate(), p.ClutchesWon, p.Clutches)
	}
	tabWriter.Flush()

	if len(ratings) > 0 {
		if err := impact.ReportOverall(w, impact.Average(ratings)); err != nil {
			return fmt.Errorf("overall report: %w", err)
		}
	}
	fmt.Fprintln(w)
	return nil
}
