package searcher

import (
	"math"
	"time"
)

// Hyperparameters for MCTS

const CSquared = 2.0 // Exploration constant

// DefaultRolloutFactor caps a rollout at factor*rows*cols steps. It is an
// empirical safety valve against boards that never settle, not a derived
// bound.
const DefaultRolloutFactor = 4

const (
	DefaultIterations = 100
	DefaultDuration   = 5 * time.Second
)

// Seconds converts a budget in seconds to a Duration, saturating at the
// largest Duration. NaN and non-positive budgets give 0.
func Seconds(seconds float64) time.Duration {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	ns := seconds * float64(time.Second)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// ucb1 scores a child for selection. Unvisited children score +Inf so every
// child is tried once before any is revisited.
func ucb1(wins, visits, totalSimulations int) float64 {
	if visits == 0 {
		return math.Inf(1)
	}
	n := float64(visits)
	return float64(wins)/n + math.Sqrt(CSquared*math.Log(float64(totalSimulations))/n)
}
