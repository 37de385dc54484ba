package game

import "fmt"

const (
	DefaultRows    = 4
	DefaultCols    = 4
	DefaultMaxDice = 8
)

// Config fixes the board dimensions and the initial dice bound for the
// lifetime of a GameState.
type Config struct {
	Rows    int `yaml:"rows" json:"rows"`
	Cols    int `yaml:"cols" json:"cols"`
	MaxDice int `yaml:"maxDice" json:"maxDice"`
}

func DefaultConfig() Config {
	return Config{Rows: DefaultRows, Cols: DefaultCols, MaxDice: DefaultMaxDice}
}

func (c Config) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return fmt.Errorf("%w: board must be at least 1x1, got %dx%d", ErrConfiguration, c.Rows, c.Cols)
	}
	if c.MaxDice <= 0 {
		return fmt.Errorf("%w: max dice must be positive, got %d", ErrConfiguration, c.MaxDice)
	}
	return nil
}

// Cells returns the number of cells on the board.
func (c Config) Cells() int {
	return c.Rows * c.Cols
}
