package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type AgentConfig struct {
	ID            int           `yaml:"id"`
	Kind          string        `yaml:"kind"` // "mcts" or "random"
	Iterations    int           `yaml:"iterations"`
	Duration      time.Duration `yaml:"duration"`
	RolloutFactor int           `yaml:"rolloutFactor"`
}

type GameRecord struct {
	ID    int
	Human int // AgentConfig.ID playing H
	AI    int // AgentConfig.ID playing A
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

// Recorder stores the results of one experiment run.
type Recorder interface {
	WriteAgentConfigs(configs []AgentConfig) error
	WriteGameRecords(records []GameRecord) error
	WriteMoveRecords(records []MoveRecord) error
	Close() error
}

// Writer stores records as CSV files in a directory per run.
type Writer struct {
	baseDir string
}

// NewWriter creates a run directory under root named by the current
// timestamp and a short run ID.
func NewWriter(root string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, timestamp+"-"+uuid.NewString()[:8])
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) Close() error {
	return nil
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "kind", "iterations", "duration", "rollout_factor"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Kind,
			strconv.Itoa(config.Iterations),
			config.Duration.String(),
			strconv.Itoa(config.RolloutFactor),
		})
	}
	return w.write("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{
		"id", "human", "ai", "starting_player", "winner", "start_time", "end_time", "duration",
		"total_moves", "passes", "stalemate", "turn_capped", "territory_score", "dice_score",
	}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Human),
			strconv.Itoa(record.AI),
			string(record.StartingPlayer),
			string(record.Winner),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
			strconv.Itoa(record.Passes),
			strconv.FormatBool(record.Stalemate),
			strconv.FormatBool(record.TurnCapped),
			strconv.FormatFloat(record.TerritoryScore, 'f', 4, 64),
			strconv.FormatFloat(record.DiceScore, 'f', 4, 64),
		})
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{
		"game", "step", "player", "passed", "duration", "iterations",
		"full_playouts", "capped_playouts", "invalid_replays", "fallback",
	}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			string(record.Player),
			strconv.FormatBool(record.Passed),
			record.Duration.String(),
			strconv.Itoa(record.Iterations),
			strconv.Itoa(record.FullPlayouts),
			strconv.Itoa(record.CappedPlayouts),
			strconv.Itoa(record.InvalidReplays),
			strconv.FormatBool(record.Fallback),
		})
	}
	return w.write("move_records.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}
