package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"dicewars/engine"
	"dicewars/experiments"
	"dicewars/experiments/metrics"
	"dicewars/game"
	"dicewars/meta"
	"dicewars/searcher"
	"dicewars/server"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

func main() {
	mode := flag.String("mode", "play", "One of play, experiment or serve")
	rows := flag.Int("rows", game.DefaultRows, "Board rows")
	cols := flag.Int("cols", game.DefaultCols, "Board columns")
	dice := flag.Int("dice", game.DefaultMaxDice, "Maximum dice per cell on a new board")
	seed := flag.Uint64("seed", meta.DEFAULT_SEED, "Seed of the random source")
	iterations := flag.Int("iterations", 0, "Search iterations per move, 0 picks the board's difficulty tier")
	seconds := flag.Float64("seconds", 0, "Search seconds per move, 0 picks the board's difficulty tier")
	setupPath := flag.String("setup", "", "YAML experiment setup, empty runs the default setup")
	out := flag.String("out", "experiments/results", "Directory for CSV experiment records")
	dbPath := flag.String("db", "", "SQLite file for experiment records, replaces CSV output when set")
	addr := flag.String("addr", ":8080", "Listen address of the planning API")
	level := flag.String("log-level", "info", "Log level")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	logLevel, err := zerolog.ParseLevel(*level)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(logLevel)

	switch *mode {
	case "play":
		err = play(game.Config{Rows: *rows, Cols: *cols, MaxDice: *dice}, *seed, *iterations, *seconds)
	case "experiment":
		err = experiment(*setupPath, *out, *dbPath)
	case "serve":
		log.Info().Str("addr", *addr).Msg("starting planning server")
		srv := &http.Server{
			Addr:              *addr,
			Handler:           server.New(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      searcher.Seconds(meta.MAX_PLAN_SECONDS) + 20*time.Second,
		}
		err = srv.ListenAndServe()
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Str("mode", *mode).Msg("failed")
	}
}

// play pits the planner (A) against a random agent (H) and prints the board
// after every turn.
func play(config game.Config, seed uint64, iterations int, seconds float64) error {
	rng := rand.New(rand.NewSource(seed))
	state, err := game.NewGameState(config, rng)
	if err != nil {
		return err
	}

	tierIterations, tierSeconds := meta.Difficulty(config.Rows, config.Cols)
	if iterations == 0 {
		iterations = tierIterations
	}
	if seconds == 0 {
		seconds = tierSeconds
	}
	mcts, err := searcher.NewMCTS(rng,
		searcher.WithIterations(iterations),
		searcher.WithDuration(searcher.Seconds(seconds)),
		searcher.WithMetrics(),
	)
	if err != nil {
		return err
	}

	e, err := engine.LocalEngine(state, map[game.Side]engine.Agent{
		game.Human: engine.RandomAgent{Rng: rng},
		game.AI:    engine.MCTSAdapter{Searcher: mcts},
	}, game.Human)
	if err != nil {
		return err
	}

	output := termenv.NewOutput(os.Stdout)
	if err := game.Render(os.Stdout, state, output); err != nil {
		return err
	}
	e.OnTurn = func(step int, player game.Side, move game.Move, played bool, state *game.GameState) {
		if played {
			fmt.Fprintf(os.Stdout, "\n%d. %s attacks (%d,%d) -> (%d,%d)\n", step, player, move.From.Row, move.From.Col, move.To.Row, move.To.Col)
		} else {
			fmt.Fprintf(os.Stdout, "\n%d. %s passes\n", step, player)
		}
		if err := game.Render(os.Stdout, state, output); err != nil {
			log.Error().Err(err).Msg("failed to render board")
		}
	}

	winner, gameMetric, _ := e.Run()
	switch winner {
	case game.None:
		fmt.Fprintln(os.Stdout, "\nDraw!")
	default:
		fmt.Fprintf(os.Stdout, "\nGame over! Winner: %s\n", winner)
	}
	log.Info().
		Int("moves", gameMetric.TotalMoves).
		Int("passes", gameMetric.Passes).
		Dur("duration", gameMetric.Duration).
		Msg("game finished")
	return nil
}

func experiment(setupPath, out, dbPath string) error {
	setup := experiments.DefaultSetup()
	if setupPath != "" {
		var err error
		setup, err = experiments.LoadSetup(setupPath)
		if err != nil {
			return err
		}
	}

	var recorder metrics.Recorder
	if dbPath != "" {
		store, err := metrics.OpenStore(dbPath)
		if err != nil {
			return err
		}
		log.Info().Str("db", dbPath).Str("run", store.Run()).Msg("recording to sqlite")
		recorder = store
	} else {
		writer, err := metrics.NewWriter(out)
		if err != nil {
			return err
		}
		log.Info().Str("dir", writer.Dir()).Msg("recording to csv")
		recorder = writer
	}
	defer recorder.Close()

	return experiments.Run(setup, recorder)
}
