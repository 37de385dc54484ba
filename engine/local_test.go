package engine

import (
	"testing"

	"dicewars/experiments/metrics"
	"dicewars/game"
	"dicewars/searcher"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

type passingAgent struct{}

func (passingAgent) FindMove(*game.GameState, game.Side) (game.Move, bool, metrics.SearchMetric) {
	return game.Move{}, false, metrics.SearchMetric{}
}

// fixedAgent always returns the same move.
type fixedAgent struct {
	move game.Move
}

func (a fixedAgent) FindMove(*game.GameState, game.Side) (game.Move, bool, metrics.SearchMetric) {
	return a.move, true, metrics.SearchMetric{}
}

func TestLocalEngine(t *testing.T) {
	t.Run("rejecting missing agents and sides", func(t *testing.T) {
		state, err := game.NewGameState(game.DefaultConfig(), seeded(1))
		require.NoError(t, err)
		random := RandomAgent{Rng: seeded(2)}

		_, err = LocalEngine(state, map[game.Side]Agent{game.Human: random}, game.Human)
		require.ErrorIs(t, err, game.ErrConfiguration, "Both sides need an agent")

		_, err = LocalEngine(state, map[game.Side]Agent{game.Human: random, game.AI: random}, game.None)
		require.ErrorIs(t, err, game.ErrConfiguration, "Starting side should be H or A")

		_, err = LocalEngine(nil, map[game.Side]Agent{game.Human: random, game.AI: random}, game.AI)
		require.ErrorIs(t, err, game.ErrConfiguration)
	})
}

func TestEngineRun(t *testing.T) {
	t.Run("playing random agents to a result", func(t *testing.T) {
		state, err := game.NewGameState(game.Config{Rows: 3, Cols: 3, MaxDice: 6}, seeded(3))
		require.NoError(t, err)
		random := RandomAgent{Rng: seeded(4)}
		e, err := LocalEngine(state, map[game.Side]Agent{game.Human: random, game.AI: random}, game.Human)
		require.NoError(t, err)

		winner, gameMetric, moveMetrics := e.Run()

		require.Equal(t, winner, gameMetric.Winner)
		require.Equal(t, game.Human, gameMetric.StartingPlayer)
		require.Equal(t, gameMetric.TotalMoves+gameMetric.Passes, len(moveMetrics), "Every turn should be recorded")
		if !gameMetric.TurnCapped {
			require.NotEqual(t, game.None, winner, "A finished game should have a winner")
		}
		for i, mm := range moveMetrics {
			require.Equal(t, i+1, mm.Step)
			if i > 0 {
				require.Equal(t, moveMetrics[i-1].Player.Opponent(), mm.Player, "Turns should alternate")
			}
		}
	})

	t.Run("playing MCTS against random", func(t *testing.T) {
		state, err := game.NewGameState(game.Config{Rows: 3, Cols: 3, MaxDice: 6}, seeded(5))
		require.NoError(t, err)
		mcts, err := searcher.NewMCTS(seeded(6), searcher.WithIterations(20), searcher.WithMetrics())
		require.NoError(t, err)
		e, err := LocalEngine(state, map[game.Side]Agent{
			game.Human: RandomAgent{Rng: seeded(7)},
			game.AI:    MCTSAdapter{Searcher: mcts},
		}, game.AI)
		require.NoError(t, err)

		_, _, moveMetrics := e.Run()

		for _, mm := range moveMetrics {
			if mm.Player == game.AI && !mm.Passed {
				require.Equal(t, 20, mm.Iterations, "MCTS turns should carry search metrics")
			}
		}
	})

	t.Run("ending in stalemate after consecutive passes", func(t *testing.T) {
		state, err := game.FromGrid([][]game.Cell{
			{{Owner: game.Human, Dice: 4}, {Owner: game.AI, Dice: 4}, {Owner: game.Human, Dice: 1}},
		}, game.DefaultMaxDice, seeded(8))
		require.NoError(t, err)
		e, err := LocalEngine(state, map[game.Side]Agent{game.Human: passingAgent{}, game.AI: passingAgent{}}, game.Human)
		require.NoError(t, err)

		winner, gameMetric, moveMetrics := e.Run()

		require.True(t, gameMetric.Stalemate, "Should stop as a stalemate")
		require.Equal(t, game.Human, winner, "Larger territory should win the stalemate")
		require.Len(t, moveMetrics, 2, "Should stop after two passes")
		require.Equal(t, 2, gameMetric.Passes)
	})

	t.Run("draw on a tied stalemate", func(t *testing.T) {
		state, err := game.FromGrid([][]game.Cell{
			{{Owner: game.Human, Dice: 4}, {Owner: game.AI, Dice: 4}},
		}, game.DefaultMaxDice, seeded(9))
		require.NoError(t, err)
		e, err := LocalEngine(state, map[game.Side]Agent{game.Human: passingAgent{}, game.AI: passingAgent{}}, game.AI)
		require.NoError(t, err)

		winner, gameMetric, _ := e.Run()

		require.True(t, gameMetric.Stalemate)
		require.Equal(t, game.None, winner, "Equal territory should be a draw")
	})

	t.Run("forcing a valid move over an invalid one", func(t *testing.T) {
		state, err := game.FromGrid([][]game.Cell{
			{{Owner: game.Human, Dice: 4}, {Owner: game.AI, Dice: 1}},
			{{Owner: game.AI, Dice: 1}, {Owner: game.AI, Dice: 1}},
		}, game.DefaultMaxDice, seeded(10))
		require.NoError(t, err)
		bad := fixedAgent{move: game.Move{From: game.Coord{Row: 1, Col: 1}, To: game.Coord{Row: 0, Col: 0}}}
		e, err := LocalEngine(state, map[game.Side]Agent{game.Human: bad, game.AI: passingAgent{}}, game.Human)
		require.NoError(t, err)
		e.MaxTurns = 1

		var played []game.Move
		e.OnTurn = func(step int, player game.Side, move game.Move, ok bool, _ *game.GameState) {
			require.True(t, ok, "Fallback move should be played")
			played = append(played, move)
		}
		_, gameMetric, _ := e.Run()

		require.Equal(t, []game.Move{{From: game.Coord{Row: 0, Col: 0}, To: game.Coord{Row: 0, Col: 1}}}, played,
			"Should play the first valid move")
		require.Equal(t, 1, state.Cell(game.Coord{Row: 0, Col: 0}).Dice, "Fallback move should be applied")
		require.Equal(t, 1, gameMetric.TotalMoves)
	})

	t.Run("stopping at the turn cap", func(t *testing.T) {
		state, err := game.NewGameState(game.Config{Rows: 6, Cols: 6, MaxDice: 8}, seeded(11))
		require.NoError(t, err)
		random := RandomAgent{Rng: seeded(12)}
		e, err := LocalEngine(state, map[game.Side]Agent{game.Human: random, game.AI: random}, game.Human)
		require.NoError(t, err)
		e.MaxTurns = 1

		_, gameMetric, moveMetrics := e.Run()

		if state.TerminalResult() == game.None {
			require.True(t, gameMetric.TurnCapped, "Should stop at the turn cap")
		}
		require.LessOrEqual(t, len(moveMetrics), 1)
	})
}
