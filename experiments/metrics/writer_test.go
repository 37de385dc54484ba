package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dicewars/game"

	"github.com/stretchr/testify/require"
)

func sampleRecords() ([]AgentConfig, []GameRecord, []MoveRecord) {
	configs := []AgentConfig{
		{ID: 1, Kind: "mcts", Iterations: 50, Duration: time.Second, RolloutFactor: 4},
		{ID: 2, Kind: "random"},
	}
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	games := []GameRecord{{
		ID:    1,
		Human: 2,
		AI:    1,
		GameMetric: GameMetric{
			StartingPlayer: game.AI,
			Winner:         game.AI,
			StartTime:      start,
			EndTime:        start.Add(time.Second),
			Duration:       time.Second,
			TotalMoves:     12,
			Passes:         1,
			TerritoryScore: 0.75,
			DiceScore:      0.5,
		},
	}}
	moves := []MoveRecord{
		{Game: 1, MoveMetric: MoveMetric{Step: 1, Player: game.AI, SearchMetric: SearchMetric{Iterations: 50, FullPlayouts: 48, CappedPlayouts: 2}}},
		{Game: 1, MoveMetric: MoveMetric{Step: 2, Player: game.Human, Passed: true}},
	}
	return configs, games, moves
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err, "CSV file should exist")
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err, "CSV file should parse")
	return rows
}

func TestWriter(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root)
	require.NoError(t, err)
	defer w.Close()
	require.DirExists(t, w.Dir(), "Run directory should be created")
	require.Equal(t, root, filepath.Dir(w.Dir()), "Run directory should be under the root")

	configs, games, moves := sampleRecords()
	require.NoError(t, w.WriteAgentConfigs(configs))
	require.NoError(t, w.WriteGameRecords(games))
	require.NoError(t, w.WriteMoveRecords(moves))

	t.Run("writing agent configs", func(t *testing.T) {
		rows := readCSV(t, filepath.Join(w.Dir(), "agent_configs.csv"))
		require.Len(t, rows, 3, "Should write a header and one row per config")
		require.Equal(t, []string{"1", "mcts", "50", "1s", "4"}, rows[1])
	})

	t.Run("writing game records", func(t *testing.T) {
		rows := readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
		require.Len(t, rows, 2)
		require.Equal(t, "id", rows[0][0])
		require.Equal(t, []string{"1", "2", "1", "A", "A"}, rows[1][:5], "Should write sides by their symbol")
		require.Equal(t, "0.7500", rows[1][12])
	})

	t.Run("writing move records", func(t *testing.T) {
		rows := readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
		require.Len(t, rows, 3)
		require.Equal(t, []string{"1", "2", "H", "true"}, rows[2][:4], "Should mark passes")
		require.Equal(t, "2", rows[1][7], "Should write capped playouts")
	})
}

func TestCollector(t *testing.T) {
	t.Run("counting search events", func(t *testing.T) {
		c := NewCollector()
		c.Start(10, time.Second, 4)
		c.AddIteration()
		c.AddIteration()
		c.AddFullPlayout()
		c.AddCappedPlayout()
		c.AddInvalidReplay()
		c.SetFallback()

		got := c.Complete()

		require.Equal(t, 10, got.MaxIterations)
		require.Equal(t, time.Second, got.MaxDuration)
		require.Equal(t, 4, got.RolloutFactor)
		require.Equal(t, 2, got.Iterations)
		require.Equal(t, 1, got.FullPlayouts)
		require.Equal(t, 1, got.CappedPlayouts)
		require.Equal(t, 1, got.InvalidReplays)
		require.True(t, got.Fallback)
	})

	t.Run("restarting clears counters", func(t *testing.T) {
		c := NewCollector()
		c.Start(10, time.Second, 4)
		c.AddIteration()
		c.Start(5, time.Second, 4)

		require.Zero(t, c.Complete().Iterations, "Start should reset the counters")
	})

	t.Run("dummy collector records nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(10, time.Second, 4)
		c.AddIteration()

		require.Equal(t, SearchMetric{}, c.Complete())
	})
}
