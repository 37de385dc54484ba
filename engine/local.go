package engine

import (
	"fmt"
	"time"

	"dicewars/experiments/metrics"
	"dicewars/game"
	"dicewars/meta"

	"github.com/rs/zerolog/log"
)

type Engine struct {
	State    *game.GameState
	Agents   map[game.Side]Agent
	Starting game.Side
	MaxTurns int
	// OnTurn, if set, is called after every turn with the updated state.
	OnTurn func(step int, player game.Side, move game.Move, played bool, state *game.GameState)
}

func LocalEngine(state *game.GameState, agents map[game.Side]Agent, starting game.Side) (*Engine, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: nil game state", game.ErrConfiguration)
	}
	for _, side := range []game.Side{game.Human, game.AI} {
		if agents[side] == nil {
			return nil, fmt.Errorf("%w: no agent for side %q", game.ErrConfiguration, side)
		}
	}
	if starting != game.Human && starting != game.AI {
		return nil, fmt.Errorf("%w: unknown starting side %q", game.ErrConfiguration, starting)
	}

	return &Engine{
		State:    state,
		Agents:   agents,
		Starting: starting,
		MaxTurns: meta.MAX_TURNS,
	}, nil
}

// Run plays the game until a terminal result, a stalemate of consecutive
// passes, or the turn cap. The winner is None on a draw.
func (e *Engine) Run() (game.Side, metrics.GameMetric, []metrics.MoveMetric) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: e.Starting,
		StartTime:      time.Now(),
	}
	var moveMetrics []metrics.MoveMetric

	log.Debug().Msgf("player %s is starting", e.Starting)

	player := e.Starting
	passes := 0
	winner := game.None
	for step := 1; ; step++ {
		if result := e.State.TerminalResult(); result != game.None {
			winner = result
			break
		}
		if passes >= meta.MAX_PASSES {
			// Neither side would move: territory decides, equal is a draw
			gameMetric.Stalemate = true
			winner = e.State.TerritoryLeader()
			break
		}
		if step > e.MaxTurns {
			gameMetric.TurnCapped = true
			winner = e.State.TerritoryLeader()
			log.Warn().Msgf("stopped after %d turns (no winner yet)", e.MaxTurns)
			break
		}

		move, ok, searchMetric := e.Agents[player].FindMove(e.State, player)
		if ok {
			move, ok = e.play(player, move)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			Passed:       !ok,
			SearchMetric: searchMetric,
		})

		if ok {
			passes = 0
			gameMetric.TotalMoves++
			log.Debug().Int("step", step).Str("player", string(player)).Msgf("%v -> %v", move.From, move.To)
		} else {
			passes++
			gameMetric.Passes++
			log.Debug().Int("step", step).Str("player", string(player)).Msg("no valid moves, passing")
		}
		if e.OnTurn != nil {
			e.OnTurn(step, player, move, ok, e.State)
		}
		player = player.Opponent()
	}

	gameMetric.Winner = winner
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TerritoryScore = e.State.TerritoryScore(e.Starting)
	gameMetric.DiceScore = e.State.DiceScore(e.Starting)

	return winner, gameMetric, moveMetrics
}

// play applies move, replacing a rejected move with the first valid one.
func (e *Engine) play(player game.Side, move game.Move) (game.Move, bool) {
	var err error
	if !e.State.InBounds(move.From) || e.State.Cell(move.From).Owner != player {
		err = fmt.Errorf("%w: %v does not start from a cell of %s", game.ErrInvalidMove, move, player)
	} else if err = e.State.ApplyMove(move); err == nil {
		return move, true
	}

	log.Warn().Err(err).Str("player", string(player)).Msg("agent returned an invalid move, forcing first valid move")
	fallback := e.State.ValidMoves(player)
	if len(fallback) == 0 {
		return game.Move{}, false
	}
	if err := e.State.ApplyMove(fallback[0]); err != nil {
		panic(err)
	}
	return fallback[0], true
}
