package meta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDifficulty(t *testing.T) {
	t.Run("scaling budget down with board size", func(t *testing.T) {
		iterations, seconds := Difficulty(3, 3)
		require.Equal(t, 100, iterations)
		require.Equal(t, 5.0, seconds)

		iterations, seconds = Difficulty(4, 4)
		require.Equal(t, 75, iterations)
		require.Equal(t, 4.0, seconds)

		iterations, seconds = Difficulty(5, 4)
		require.Equal(t, 50, iterations)
		require.Equal(t, 3.0, seconds)
	})
}
