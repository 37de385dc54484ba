package metrics

import (
	"time"

	"dicewars/game"
)

type SearchMetric struct {
	MaxIterations  int           `json:"maxIterations"`
	MaxDuration    time.Duration `json:"maxDuration"`
	RolloutFactor  int           `json:"rolloutFactor"`
	Duration       time.Duration `json:"duration"`
	Iterations     int           `json:"iterations"`
	FullPlayouts   int           `json:"fullPlayouts"`   // Rollouts that reached a terminal result
	CappedPlayouts int           `json:"cappedPlayouts"` // Rollouts stopped by the step cap
	InvalidReplays int           `json:"invalidReplays"` // Tree moves that no longer applied on a re-rolled state
	Fallback       bool          `json:"fallback"`
}

type MoveMetric struct {
	Step   int
	Player game.Side
	Passed bool
	SearchMetric
}

type GameMetric struct {
	StartingPlayer game.Side
	Winner         game.Side // None on a draw or an unfinished game
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
	Passes         int
	Stalemate      bool
	TurnCapped     bool
	TerritoryScore float64 // Final territory score from the starting player's perspective
	DiceScore      float64 // Final dice score from the starting player's perspective
}

// Collector gathers counters for a single search. Collectors are not safe
// for concurrent use.
type Collector interface {
	Start(maxIterations int, maxDuration time.Duration, rolloutFactor int)
	AddIteration()
	AddFullPlayout()
	AddCappedPlayout()
	AddInvalidReplay()
	SetFallback()
	Complete() SearchMetric
}

type collector struct {
	startTime time.Time
	metric    SearchMetric
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(maxIterations int, maxDuration time.Duration, rolloutFactor int) {
	m.startTime = time.Now()
	m.metric = SearchMetric{
		MaxIterations: maxIterations,
		MaxDuration:   maxDuration,
		RolloutFactor: rolloutFactor,
	}
}

func (m *collector) AddIteration()     { m.metric.Iterations++ }
func (m *collector) AddFullPlayout()   { m.metric.FullPlayouts++ }
func (m *collector) AddCappedPlayout() { m.metric.CappedPlayouts++ }
func (m *collector) AddInvalidReplay() { m.metric.InvalidReplays++ }
func (m *collector) SetFallback()      { m.metric.Fallback = true }

func (m *collector) Complete() SearchMetric {
	metric := m.metric
	metric.Duration = time.Since(m.startTime)
	return metric
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(maxIterations int, maxDuration time.Duration, rolloutFactor int) {}
func (m *dummyCollector) AddIteration()                                                         {}
func (m *dummyCollector) AddFullPlayout()                                                       {}
func (m *dummyCollector) AddCappedPlayout()                                                     {}
func (m *dummyCollector) AddInvalidReplay()                                                     {}
func (m *dummyCollector) SetFallback()                                                          {}
func (m *dummyCollector) Complete() SearchMetric                                                { return SearchMetric{} }
