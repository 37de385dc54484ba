package game

import (
	"fmt"
)

// GameState is the board at any point of the game: a fixed Rows x Cols grid
// of cells, each owned by one side and holding a dice count.
type GameState struct {
	config Config // Board dimensions and dice bound, fixed at construction
	cells  []Cell // Row-major cells, len == Rows*Cols
	rng    Source // Shared with clones
}

// NewGameState generates a random board: each owner is drawn uniformly from
// {H, A} and each dice count uniformly from [1, MaxDice].
func NewGameState(config Config, rng Source) (*GameState, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrConfiguration)
	}

	gs := &GameState{
		config: config,
		cells:  make([]Cell, config.Cells()),
		rng:    rng,
	}
	sides := [2]Side{Human, AI}
	for i := range gs.cells {
		gs.cells[i] = Cell{
			Owner: sides[rng.Intn(2)],
			Dice:  rng.Intn(config.MaxDice) + 1,
		}
	}
	return gs, nil
}

// FromGrid builds a state around an existing board. The grid is copied.
func FromGrid(grid [][]Cell, maxDice int, rng Source) (*GameState, error) {
	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrConfiguration)
	}
	config := Config{Rows: len(grid), Cols: len(grid[0]), MaxDice: maxDice}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrConfiguration)
	}

	cells := make([]Cell, 0, config.Cells())
	for r, row := range grid {
		if len(row) != config.Cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrConfiguration, r, len(row), config.Cols)
		}
		for c, cell := range row {
			if !cell.Owner.valid() {
				return nil, fmt.Errorf("%w: cell (%d,%d) has unknown owner %q", ErrConfiguration, r, c, cell.Owner)
			}
			if cell.Dice < 1 || cell.Dice > maxDice {
				return nil, fmt.Errorf("%w: cell (%d,%d) has %d dice, expected 1..%d", ErrConfiguration, r, c, cell.Dice, maxDice)
			}
			cells = append(cells, cell)
		}
	}

	return &GameState{config: config, cells: cells, rng: rng}, nil
}

// Clone returns an independent copy of the board. The random source is shared.
func (gs *GameState) Clone() *GameState {
	cellsCopy := make([]Cell, len(gs.cells))
	copy(cellsCopy, gs.cells)

	return &GameState{
		config: gs.config,
		cells:  cellsCopy,
		rng:    gs.rng,
	}
}

func (gs *GameState) Config() Config { return gs.config }
func (gs *GameState) Rows() int      { return gs.config.Rows }
func (gs *GameState) Cols() int      { return gs.config.Cols }
func (gs *GameState) MaxDice() int   { return gs.config.MaxDice }

// InBounds reports whether c lies on the board.
func (gs *GameState) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < gs.config.Rows && c.Col >= 0 && c.Col < gs.config.Cols
}

// Cell returns the cell at c. c must be in bounds.
func (gs *GameState) Cell(c Coord) Cell {
	return gs.cells[gs.index(c)]
}

func (gs *GameState) index(c Coord) int {
	return c.Row*gs.config.Cols + c.Col
}

// Grid returns a read-only snapshot of the board for rendering.
func (gs *GameState) Grid() [][]Cell {
	grid := make([][]Cell, gs.config.Rows)
	for r := range grid {
		row := make([]Cell, gs.config.Cols)
		copy(row, gs.cells[r*gs.config.Cols:(r+1)*gs.config.Cols])
		grid[r] = row
	}
	return grid
}

// Count returns the number of cells owned by side.
func (gs *GameState) Count(side Side) int {
	n := 0
	for _, cell := range gs.cells {
		if cell.Owner == side {
			n++
		}
	}
	return n
}

// ValidMoves returns every attack available to player in row-major source
// order, then right, down, up, left. Tie-breaking downstream relies on this
// order.
func (gs *GameState) ValidMoves(player Side) []Move {
	var moves []Move

	for r := 0; r < gs.config.Rows; r++ {
		for c := 0; c < gs.config.Cols; c++ {
			from := Coord{Row: r, Col: c}
			cell := gs.Cell(from)
			if cell.Owner != player || cell.Dice < 2 {
				continue
			}
			for _, d := range directions {
				to := Coord{Row: r + d.Row, Col: c + d.Col}
				if gs.InBounds(to) && gs.Cell(to).Owner != player {
					moves = append(moves, Move{From: from, To: to})
				}
			}
		}
	}
	return moves
}

// HasMoves reports whether player has at least one valid move.
func (gs *GameState) HasMoves(player Side) bool {
	for i, cell := range gs.cells {
		if cell.Owner != player || cell.Dice < 2 {
			continue
		}
		from := Coord{Row: i / gs.config.Cols, Col: i % gs.config.Cols}
		for _, d := range directions {
			to := Coord{Row: from.Row + d.Row, Col: from.Col + d.Col}
			if gs.InBounds(to) && gs.Cell(to).Owner != player {
				return true
			}
		}
	}
	return false
}

// ApplyMove resolves an attack in place. Both sides roll one d6 per die on
// their cell; the attacker conquers only with a strictly higher sum. The
// attacking cell always drops to a single die.
func (gs *GameState) ApplyMove(move Move) error {
	if err := gs.checkMove(move); err != nil {
		return err
	}

	src := gs.index(move.From)
	dst := gs.index(move.To)
	attackerDice := gs.cells[src].Dice
	defenderDice := gs.cells[dst].Dice

	attackerSum := rollDice(gs.rng, attackerDice)
	defenderSum := rollDice(gs.rng, defenderDice)

	gs.cells[src].Dice = 1
	if attackerSum > defenderSum {
		gs.cells[dst] = Cell{Owner: gs.cells[src].Owner, Dice: attackerDice - 1}
	}
	return nil
}

func (gs *GameState) checkMove(move Move) error {
	if !gs.InBounds(move.From) || !gs.InBounds(move.To) {
		return fmt.Errorf("%w: %v is out of bounds", ErrInvalidMove, move)
	}
	if !adjacent(move.From, move.To) {
		return fmt.Errorf("%w: %v cells are not orthogonally adjacent", ErrInvalidMove, move)
	}
	attacker := gs.Cell(move.From)
	if !attacker.Owner.valid() {
		return fmt.Errorf("%w: %v source cell has no owner", ErrInvalidMove, move)
	}
	if attacker.Owner == gs.Cell(move.To).Owner {
		return fmt.Errorf("%w: %v target cell is owned by the same player", ErrInvalidMove, move)
	}
	if attacker.Dice < 2 {
		return fmt.Errorf("%w: %v not enough dice to attack", ErrInvalidMove, move)
	}
	return nil
}

func adjacent(a, b Coord) bool {
	dr, dc := a.Row-b.Row, a.Col-b.Col
	return dr*dr+dc*dc == 1
}

// TerminalResult returns the winner of a finished game or None.
//
// A game is finished when one side owns every cell, or when neither side
// can move; the larger territory then wins and an exact tie is settled by a
// coin flip on the shared random source.
func (gs *GameState) TerminalResult() Side {
	owner := gs.cells[0].Owner
	sole := true
	for _, cell := range gs.cells[1:] {
		if cell.Owner != owner {
			sole = false
			break
		}
	}
	if sole {
		return owner
	}

	if gs.HasMoves(Human) || gs.HasMoves(AI) {
		return None
	}

	humans, ais := gs.Count(Human), gs.Count(AI)
	switch {
	case humans > ais:
		return Human
	case ais > humans:
		return AI
	default:
		// Exact tie: coin flip
		return [2]Side{Human, AI}[gs.rng.Intn(2)]
	}
}
