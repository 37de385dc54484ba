package metrics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS agent_configs (
	run TEXT,
	id INTEGER,
	kind TEXT,
	iterations INTEGER,
	duration_ns INTEGER,
	rollout_factor INTEGER
);
CREATE TABLE IF NOT EXISTS game_records (
	run TEXT,
	id INTEGER,
	human INTEGER,
	ai INTEGER,
	starting_player TEXT,
	winner TEXT,
	started_at DATETIME,
	ended_at DATETIME,
	duration_ns INTEGER,
	total_moves INTEGER,
	passes INTEGER,
	stalemate BOOLEAN,
	turn_capped BOOLEAN,
	territory_score REAL,
	dice_score REAL
);
CREATE TABLE IF NOT EXISTS move_records (
	run TEXT,
	game INTEGER,
	step INTEGER,
	player TEXT,
	passed BOOLEAN,
	duration_ns INTEGER,
	iterations INTEGER,
	full_playouts INTEGER,
	capped_playouts INTEGER,
	invalid_replays INTEGER,
	fallback BOOLEAN
);
`

// Store keeps records of many runs in one SQLite database. Rows of a run
// share its run ID.
type Store struct {
	db  *sql.DB
	run string
}

func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	s := &Store{db: db, run: uuid.NewString()}
	log.Debug().Str("path", path).Str("run", s.run).Msg("opened record store")
	return s, nil
}

func (s *Store) Run() string {
	return s.run
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) WriteAgentConfigs(configs []AgentConfig) error {
	return s.insert("agent configs", `INSERT INTO agent_configs VALUES (?, ?, ?, ?, ?, ?)`, len(configs), func(i int) []any {
		c := configs[i]
		return []any{s.run, c.ID, c.Kind, c.Iterations, int64(c.Duration), c.RolloutFactor}
	})
}

func (s *Store) WriteGameRecords(records []GameRecord) error {
	return s.insert("game records", `INSERT INTO game_records VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, len(records), func(i int) []any {
		r := records[i]
		return []any{
			s.run, r.ID, r.Human, r.AI, string(r.StartingPlayer), string(r.Winner),
			r.StartTime, r.EndTime, int64(r.Duration), r.TotalMoves, r.Passes,
			r.Stalemate, r.TurnCapped, r.TerritoryScore, r.DiceScore,
		}
	})
}

func (s *Store) WriteMoveRecords(records []MoveRecord) error {
	return s.insert("move records", `INSERT INTO move_records VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, len(records), func(i int) []any {
		r := records[i]
		return []any{
			s.run, r.Game, r.Step, string(r.Player), r.Passed, int64(r.Duration),
			r.Iterations, r.FullPlayouts, r.CappedPlayouts, r.InvalidReplays, r.Fallback,
		}
	})
}

// insert writes n rows in one transaction.
func (s *Store) insert(what, query string, n int, row func(i int) []any) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin %s transaction: %w", what, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", what, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.Exec(row(i)...); err != nil {
			return fmt.Errorf("failed to insert %s row: %w", what, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", what, err)
	}
	return nil
}
