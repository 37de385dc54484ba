package experiments

import (
	"fmt"
	"os"

	"dicewars/engine"
	"dicewars/experiments/metrics"
	"dicewars/game"
	"dicewars/meta"
	"dicewars/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

const (
	KindMCTS   = "mcts"
	KindRandom = "random"
)

// Matchup names the agents playing each side by AgentConfig.ID.
type Matchup struct {
	Human int `yaml:"human"`
	AI    int `yaml:"ai"`
}

type Setup struct {
	Name     string                `yaml:"name"`
	Board    game.Config           `yaml:"board"`
	Seed     uint64                `yaml:"seed"`
	NumGames int                   `yaml:"numGames"` // Per matchup
	Agents   []metrics.AgentConfig `yaml:"agents"`
	Matchups []Matchup             `yaml:"matchups"`
}

// DefaultSetup pits the MCTS planner, at the difficulty of the default
// board, against a random agent from both sides.
func DefaultSetup() Setup {
	board := game.DefaultConfig()
	iterations, seconds := meta.Difficulty(board.Rows, board.Cols)
	return Setup{
		Name:     "mcts_vs_random",
		Board:    board,
		Seed:     meta.DEFAULT_SEED,
		NumGames: 10,
		Agents: []metrics.AgentConfig{
			{
				ID:            1,
				Kind:          KindMCTS,
				Iterations:    iterations,
				Duration:      searcher.Seconds(seconds),
				RolloutFactor: searcher.DefaultRolloutFactor,
			},
			{ID: 2, Kind: KindRandom},
		},
		Matchups: []Matchup{{Human: 2, AI: 1}, {Human: 1, AI: 2}},
	}
}

// LoadSetup reads a YAML setup. Fields missing from the file keep their
// DefaultSetup values.
func LoadSetup(path string) (Setup, error) {
	setup := DefaultSetup()
	data, err := os.ReadFile(path)
	if err != nil {
		return Setup{}, fmt.Errorf("failed to read setup: %w", err)
	}
	if err := yaml.Unmarshal(data, &setup); err != nil {
		return Setup{}, fmt.Errorf("%w: failed to parse setup %s: %v", game.ErrConfiguration, path, err)
	}
	if err := setup.Validate(); err != nil {
		return Setup{}, err
	}
	return setup, nil
}

func (s Setup) Validate() error {
	if err := s.Board.Validate(); err != nil {
		return err
	}
	if s.NumGames <= 0 {
		return fmt.Errorf("%w: games per matchup must be positive, got %d", game.ErrConfiguration, s.NumGames)
	}
	ids := map[int]bool{}
	for _, config := range s.Agents {
		if ids[config.ID] {
			return fmt.Errorf("%w: duplicate agent id %d", game.ErrConfiguration, config.ID)
		}
		ids[config.ID] = true
		if config.Kind != KindMCTS && config.Kind != KindRandom {
			return fmt.Errorf("%w: agent %d has unknown kind %q", game.ErrConfiguration, config.ID, config.Kind)
		}
	}
	if len(s.Matchups) == 0 {
		return fmt.Errorf("%w: no matchups", game.ErrConfiguration)
	}
	for _, matchup := range s.Matchups {
		if !ids[matchup.Human] || !ids[matchup.AI] {
			return fmt.Errorf("%w: matchup %+v names an unknown agent", game.ErrConfiguration, matchup)
		}
	}
	return nil
}

// Run plays every matchup of setup and stores the results with recorder.
// Starting sides alternate between games of a matchup. Boards and agent
// sources are all derived from setup.Seed.
func Run(setup Setup, recorder metrics.Recorder) error {
	if err := setup.Validate(); err != nil {
		return err
	}
	configs := map[int]metrics.AgentConfig{}
	for _, config := range setup.Agents {
		configs[config.ID] = config
	}
	rng := rand.New(rand.NewSource(setup.Seed))

	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", setup.Name)

	for mi, matchup := range setup.Matchups {
		log.Info().Msgf("starting matchup %d of %d between H=%+v and A=%+v...",
			mi+1, len(setup.Matchups), configs[matchup.Human], configs[matchup.AI])

		for i := 0; i < setup.NumGames; i++ {
			starting := game.Human
			if i%2 == 1 {
				starting = game.AI
			}

			winner, gameMetric, moveMetrics, err := runGame(setup.Board, configs[matchup.Human], configs[matchup.AI], starting, rng)
			if err != nil {
				return fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Human:      matchup.Human,
				AI:         matchup.AI,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}

			log.Info().Msgf("completed matchup %d of %d game %d with winner: %q", mi+1, len(setup.Matchups), i+1, winner)
		}
	}

	log.Info().Msgf("completed %s experiment", setup.Name)

	if err := recorder.WriteAgentConfigs(setup.Agents); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")
	if err := recorder.WriteGameRecords(gameRecords); err != nil {
		return fmt.Errorf("failed to store game records: %w", err)
	}
	log.Info().Msg("stored game records")
	if err := recorder.WriteMoveRecords(moveRecords); err != nil {
		return fmt.Errorf("failed to store move records: %w", err)
	}
	log.Info().Msg("stored move records")
	return nil
}

func runGame(board game.Config, human, ai metrics.AgentConfig, starting game.Side, rng *rand.Rand) (game.Side, metrics.GameMetric, []metrics.MoveMetric, error) {
	state, err := game.NewGameState(board, rand.New(rand.NewSource(rng.Uint64())))
	if err != nil {
		return game.None, metrics.GameMetric{}, nil, err
	}
	humanAgent, err := NewAgent(human, rand.New(rand.NewSource(rng.Uint64())))
	if err != nil {
		return game.None, metrics.GameMetric{}, nil, err
	}
	aiAgent, err := NewAgent(ai, rand.New(rand.NewSource(rng.Uint64())))
	if err != nil {
		return game.None, metrics.GameMetric{}, nil, err
	}

	e, err := engine.LocalEngine(state, map[game.Side]engine.Agent{game.Human: humanAgent, game.AI: aiAgent}, starting)
	if err != nil {
		return game.None, metrics.GameMetric{}, nil, err
	}
	winner, gameMetric, moveMetrics := e.Run()
	return winner, gameMetric, moveMetrics, nil
}

// NewAgent builds the agent described by config. Zero budgets fall back to
// the planner defaults.
func NewAgent(config metrics.AgentConfig, rng game.Source) (engine.Agent, error) {
	switch config.Kind {
	case KindRandom:
		return engine.RandomAgent{Rng: rng}, nil
	case KindMCTS:
		options := []searcher.Option{}
		if config.Iterations > 0 {
			options = append(options, searcher.WithIterations(config.Iterations))
		}
		if config.Duration > 0 {
			options = append(options, searcher.WithDuration(config.Duration))
		}
		if config.RolloutFactor > 0 {
			options = append(options, searcher.WithRolloutFactor(config.RolloutFactor))
		}
		options = append(options, searcher.WithMetrics())
		mcts, err := searcher.NewMCTS(rng, options...)
		if err != nil {
			return nil, err
		}
		return engine.MCTSAdapter{Searcher: mcts}, nil
	default:
		return nil, fmt.Errorf("%w: unknown agent kind %q", game.ErrConfiguration, config.Kind)
	}
}
