package searcher

import (
	"fmt"
	"math"
	"time"

	"dicewars/experiments/metrics"
	"dicewars/game"

	"github.com/rs/zerolog/log"
)

type Option func(mcts *MCTS)

// MCTS plans moves for one side with a fresh tree per decision. It is single
// threaded and not safe for concurrent use.
type MCTS struct {
	iterations    int
	duration      time.Duration
	rolloutFactor int
	rng           game.Source
	root          *node
	metrics       metrics.Collector
}

func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		m.iterations = iterations
	}
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		m.duration = duration
	}
}

// WithRolloutFactor sets the rollout step cap to factor*rows*cols.
func WithRolloutFactor(factor int) Option {
	return func(m *MCTS) {
		m.rolloutFactor = factor
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(rng game.Source, options ...Option) (*MCTS, error) {
	m := &MCTS{ // Default values
		iterations:    DefaultIterations,
		duration:      DefaultDuration,
		rolloutFactor: DefaultRolloutFactor,
		rng:           rng,
		metrics:       metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}

	if m.rng == nil {
		return nil, fmt.Errorf("%w: nil random source", game.ErrConfiguration)
	}
	if m.iterations <= 0 {
		return nil, fmt.Errorf("%w: search iterations must be positive, got %d", game.ErrConfiguration, m.iterations)
	}
	if m.duration <= 0 {
		return nil, fmt.Errorf("%w: search duration must be positive, got %s", game.ErrConfiguration, m.duration)
	}
	if m.rolloutFactor <= 0 {
		return nil, fmt.Errorf("%w: rollout factor must be positive, got %d", game.ErrConfiguration, m.rolloutFactor)
	}
	return m, nil
}

// PlanMove runs a single search for player on state. It reports false when
// player has no move.
func PlanMove(state *game.GameState, player game.Side, maxIterations int, maxSeconds float64, rng game.Source) (game.Move, bool, error) {
	if math.IsNaN(maxSeconds) || maxSeconds <= 0 {
		return game.Move{}, false, fmt.Errorf("%w: search seconds must be positive, got %g", game.ErrConfiguration, maxSeconds)
	}
	m, err := NewMCTS(rng,
		WithIterations(maxIterations),
		WithDuration(Seconds(maxSeconds)),
	)
	if err != nil {
		return game.Move{}, false, err
	}
	move, ok, _ := m.FindMove(state, player)
	return move, ok, nil
}

// FindMove searches from state until the iteration or time budget runs out
// and returns the most visited move for player. state is only read.
func (m *MCTS) FindMove(state *game.GameState, player game.Side) (game.Move, bool, metrics.SearchMetric) {
	m.root = newRoot()
	m.metrics.Start(m.iterations, m.duration, m.rolloutFactor)

	// Time is checked between iterations only
	start := time.Now()
	episodes := 0
	for episodes < m.iterations && time.Since(start) < m.duration {
		m.simulate(state, player)
		m.metrics.AddIteration()
		episodes++
	}

	move, ok := m.bestMove(state, player)
	metric := m.metrics.Complete()

	log.Debug().
		Str("player", string(player)).
		Int("episodes", episodes).
		Dur("elapsed", time.Since(start)).
		Bool("found", ok).
		Msgf("evaluated %d simulations", episodes)

	return move, ok, metric
}

func (m *MCTS) simulate(state *game.GameState, player game.Side) {
	newNode, newState := m.selectThenExpand(state, player)
	winner := m.rollout(newState, player)
	backup(newNode, winner == player)
}

func (m *MCTS) selectThenExpand(rootState *game.GameState, player game.Side) (*node, *game.GameState) {
	current := m.root
	state := rootState.Clone()

	for len(current.children) > 0 && state.TerminalResult() == game.None {
		child := current.pickChild(m.root.visits + 1)
		if child.hasMove {
			if err := state.ApplyMove(child.move); err != nil {
				// An earlier replayed attack rolled differently than at
				// expansion; stay on the deepest node the state still matches.
				m.metrics.AddInvalidReplay()
				log.Trace().Err(err).Msg("stopping selection on diverged replay")
				break
			}
		}
		current = child
	}

	if state.TerminalResult() != game.None {
		return current, state
	}

	move, ok := game.Choose(m.rng, state.ValidMoves(player))
	if !ok {
		return current, state
	}
	childState := state.Clone()
	if err := childState.ApplyMove(move); err != nil {
		panic(fmt.Sprintf("expanding a generated move: %v", err))
	}
	return current.addChild(move), childState
}

// rollout plays uniformly random moves on a copy of state, alternating turns
// from player, and returns the terminal result or None when the step cap is
// reached first. A side without moves passes, which still consumes a step.
func (m *MCTS) rollout(state *game.GameState, player game.Side) game.Side {
	state = state.Clone()
	maxSteps := m.rolloutFactor * state.Rows() * state.Cols()

	turn := player
	result := state.TerminalResult()
	for steps := 0; result == game.None && steps < maxSteps; steps++ {
		if move, ok := game.Choose(m.rng, state.ValidMoves(turn)); ok {
			if err := state.ApplyMove(move); err != nil {
				panic(fmt.Sprintf("playing a generated move: %v", err))
			}
		}
		turn = turn.Opponent()
		result = state.TerminalResult()
	}

	if result == game.None {
		m.metrics.AddCappedPlayout()
	} else {
		m.metrics.AddFullPlayout()
	}
	return result
}

// backup credits every node from newNode to the root with a visit, and with
// a win when the searching player won. The reward is never flipped by depth.
func backup(newNode *node, won bool) {
	n := newNode
	for n != nil {
		n = n.backup(won)
	}
}

func (m *MCTS) bestMove(state *game.GameState, player game.Side) (game.Move, bool) {
	if len(m.root.children) == 0 {
		move, ok := game.Choose(m.rng, state.ValidMoves(player))
		if ok {
			m.metrics.SetFallback()
			log.Warn().Str("player", string(player)).Msg("search expanded no move, picking a random legal move")
		}
		return move, ok
	}
	return m.root.mostVisited().move, true
}
