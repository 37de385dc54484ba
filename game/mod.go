package game

// Side identifies one of the two players. The zero value None doubles as
// "no owner" and "no terminal result".
type Side string

const (
	Human Side = "H"
	AI    Side = "A"
	None  Side = ""
)

// Opponent returns the other side. None has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case Human:
		return AI
	case AI:
		return Human
	default:
		return None
	}
}

func (s Side) valid() bool {
	return s == Human || s == AI
}

// Source supplies randomness to the game and the searcher. It must be
// injected so that a fixed seed reproduces a game.
type Source interface {
	// Intn returns a uniform int in [0, n). n must be positive.
	Intn(n int) int
}

type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Move attacks To from From.
type Move struct {
	From Coord `json:"from"`
	To   Coord `json:"to"`
}

type Cell struct {
	Owner Side `json:"owner"`
	Dice  int  `json:"dice"`
}

// Neighbour offsets in scan order: right, down, up, left.
// ValidMoves output order depends on it.
var directions = [4]Coord{{0, 1}, {1, 0}, {-1, 0}, {0, -1}}

// Choose picks a uniform element of moves. It reports false on an empty slice.
func Choose(rng Source, moves []Move) (Move, bool) {
	if len(moves) == 0 {
		return Move{}, false
	}
	return moves[rng.Intn(len(moves))], true
}
