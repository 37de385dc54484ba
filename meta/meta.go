// meta/meta.go
package meta

// MAX_TURNS bounds a self-play game.
const MAX_TURNS = 300

// MAX_PASSES consecutive passes end a game as a stalemate.
const MAX_PASSES = 2

// DEFAULT_SEED seeds the CLI when no -seed flag is given.
const DEFAULT_SEED = 1

// MAX_PLAN_ITERATIONS and MAX_PLAN_SECONDS bound a single search requested
// through the planning API.
const (
	MAX_PLAN_ITERATIONS = 10_000
	MAX_PLAN_SECONDS    = 10.0
)

// Difficulty returns the search budget for a board of rows x cols: smaller
// boards afford more iterations.
func Difficulty(rows, cols int) (iterations int, seconds float64) {
	switch cells := rows * cols; {
	case cells <= 9: // 3x3 or smaller
		return 100, 5.0
	case cells <= 16: // 4x4
		return 75, 4.0
	default:
		return 50, 3.0
	}
}
