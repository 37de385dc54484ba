package engine

import (
	"dicewars/experiments/metrics"
	"dicewars/game"
	"dicewars/searcher"
)

// Agent picks moves for one side.
type Agent interface {
	// FindMove returns a move for player on state, or false to pass. state
	// must not be mutated.
	FindMove(state *game.GameState, player game.Side) (game.Move, bool, metrics.SearchMetric)
}

// MCTSAdapter plays the moves found by a tree search.
type MCTSAdapter struct {
	Searcher *searcher.MCTS
}

func (ma MCTSAdapter) FindMove(state *game.GameState, player game.Side) (game.Move, bool, metrics.SearchMetric) {
	return ma.Searcher.FindMove(state, player)
}

// RandomAgent plays a uniformly random valid move.
type RandomAgent struct {
	Rng game.Source
}

func (ra RandomAgent) FindMove(state *game.GameState, player game.Side) (game.Move, bool, metrics.SearchMetric) {
	move, ok := game.Choose(ra.Rng, state.ValidMoves(player))
	return move, ok, metrics.SearchMetric{}
}
