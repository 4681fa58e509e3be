package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/phil-holland/spike-round-sim/internal/armory"
	"github.com/phil-holland/spike-round-sim/internal/config"
	"github.com/phil-holland/spike-round-sim/internal/export"
	"github.com/phil-holland/spike-round-sim/internal/impact"
	"github.com/phil-holland/spike-round-sim/internal/legacy"
	"github.com/phil-holland/spike-round-sim/internal/lineup"
	"github.com/phil-holland/spike-round-sim/internal/sim"
	flag "github.com/spf13/pflag"
)

func usage() {
	fmt.Printf("Usage: spike-round-sim [OPTION]...\n\n")
	fmt.Printf("Simulates spike rounds between two fixed five player lineups, validating every\n")
	fmt.Printf("timeline and printing a round and match report to the console. Timelines,\n")
	fmt.Printf("summaries and validation reports can be written to a JSON document, and game\n")
	fmt.Printf("states to a LightGBM training csv.\n")

	fmt.Printf("\n")
	flag.PrintDefaults()
	fmt.Printf("\n")
	fmt.Printf("Round timings and driver weights are read from ROUNDSIM_* environment variables.\n\n")
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// simulation flags
	seed := flag.Uint64P("seed", "s", 1, "Seed of the first round, each further round uses\nthe next seed.")
	rounds := flag.IntP("rounds", "n", 1, "Number of rounds to simulate.")
	workers := flag.IntP("workers", "w", runtime.NumCPU(), "Number of rounds simulated in parallel.")
	tick := flag.Int64("tick", 0, "Override the driver tick in milliseconds.")

	// output flags
	outPath := flag.StringP("out", "o", "", "Write every round to a JSON document at this path.")
	pretty := flag.BoolP("pretty", "p", false, "Indent the JSON document.")
	withLegacy := flag.Bool("legacy", false, "Include legacy round records in the JSON document.")
	csvPath := flag.StringP("csv", "c", "", "Write the game state after every event to a LightGBM\ntraining csv at this path.")

	// evaluation flags
	modelPath := flag.StringP("model", "m", "", "The path to a LightGBM_model.txt file. If set, every\nround is given an Impact Rating.")
	verbosity := flag.IntP("verbosity", "v", 1, "Console verbosity level:\n 0 = do not print a report\n 1 = print only the match report\n 2 = print match & per-round reports")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn or error.")
	noProgress := flag.Bool("no-progress", false, "Do not show the progress bar.")

	flag.CommandLine.SortFlags = false
	flag.ErrHelp = fmt.Errorf("version: %s", impact.Version)
	flag.Usage = usage
	flag.Parse()

	if len(flag.Args()) > 0 {
		exitf("unexpected arguments: %s", strings.Join(flag.Args(), " "))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		exitf("invalid log level %q", *logLevel)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.ParseEnv()
	if err != nil {
		exitf("%v", err)
	}
	if flag.CommandLine.Changed("tick") {
		cfg.Driver.Tick = *tick
	}
	if err := cfg.Check(); err != nil {
		exitf("%v", err)
	}

	catalog := armory.DefaultCatalog()
	teams, err := lineup.Standard(catalog)
	if err != nil {
		exitf("%v", err)
	}

	var predictor impact.Predictor
	if *modelPath != "" {
		fmt.Printf("Loading LightGBM model from \"%s\"\n", *modelPath)
		predictor, err = impact.LoadModel(*modelPath)
		if err != nil {
			exitf("LightGBM model not loaded - %v", err)
		}
		fmt.Printf("LightGBM model loaded successfully\n")
	}

	var done func(sim.Result)
	var bar *pb.ProgressBar
	if !*noProgress && *rounds > 1 {
		tmpl := `{{ green "Progress:" }} {{ bar . "[" "#" "#" "." "]"}} {{speed .}} {{percent .}}`
		bar = pb.ProgressBarTemplate(tmpl).Start64(int64(*rounds))
		done = func(sim.Result) { bar.Increment() }
	}

	simulator := sim.New(cfg, catalog, teams, logger)
	results, err := simulator.Batch(context.Background(), *seed, *rounds, *workers, done)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		exitf("%v", err)
	}

	var ratings []impact.Rating
	if predictor != nil || *csvPath != "" {
		ratings, err = rate(results, catalog, predictor, *csvPath)
		if err != nil {
			exitf("%v", err)
		}
	}

	if *outPath != "" {
		if err := writeDocument(*outPath, *seed, results, ratings, *withLegacy, *pretty); err != nil {
			exitf("%v", err)
		}
		fmt.Printf("Output JSON written to: \"%s\"\n", *outPath)
	}

	if *verbosity >= 2 {
		if err := printRounds(os.Stdout, results, ratings); err != nil {
			exitf("%v", err)
		}
	}
	if *verbosity >= 1 {
		if err := printMatch(os.Stdout, results, ratings); err != nil {
			exitf("%v", err)
		}
	}

	invalid := 0
	for _, r := range results {
		if !r.Validation.Valid() {
			invalid++
		}
	}
	if invalid > 0 {
		exitf("%d of %d timelines failed validation", invalid, len(results))
	}
}

// rate rebuilds the game states of every round, writing them as training rows
// if csvPath is set and rating each round if a predictor is loaded
func rate(results []sim.Result, catalog armory.Catalog, predictor impact.Predictor, csvPath string) ([]impact.Rating, error) {
	var csv io.WriteCloser
	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		csv = f
		if _, err := io.WriteString(csv, impact.CSVHeader+"\n"); err != nil {
			return nil, err
		}
	}

	var ratings []impact.Rating
	for _, r := range results {
		states, err := impact.States(r.Events, r.Initial, catalog)
		if err != nil {
			return nil, fmt.Errorf("round %s: %w", r.ID, err)
		}
		if csv != nil {
			for idx := range states {
				if _, err := io.WriteString(csv, impact.MakeCSVLine(&states[idx])+"\n"); err != nil {
					return nil, err
				}
			}
		}
		if predictor != nil {
			rating, err := impact.Evaluate(states, r.Initial, predictor)
			if err != nil {
				return nil, fmt.Errorf("round %s: %w", r.ID, err)
			}
			ratings = append(ratings, rating)
		}
	}
	if csv != nil {
		fmt.Printf("Training csv written to: \"%s\"\n", csvPath)
	}
	return ratings, nil
}

func writeDocument(path string, seed uint64, results []sim.Result, ratings []impact.Rating, withLegacy, pretty bool) error {
	rounds := make([]export.Round, 0, len(results))
	for idx, r := range results {
		out, err := export.NewRound(r.ID.String(), r.Seed, r.Roster, r.Events, r.Summary, r.Validation)
		if err != nil {
			return err
		}
		if withLegacy {
			l := legacy.Flatten(r.Events)
			out.Legacy = &l
		}
		if idx < len(ratings) {
			out.Rating = &ratings[idx]
		}
		rounds = append(rounds, out)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.Write(f, export.NewDocument(seed, rounds), pretty)
}
