package searcher

import "dicewars/game"

// Visit holds the statistics of one root child after a search.
type Visit struct {
	Move   game.Move `json:"move"`
	Visits int       `json:"visits"`
	Wins   int       `json:"wins"`
}

// Policy returns the root children statistics of the last search in
// expansion order. Moves can repeat since expansion samples with
// replacement.
func (m *MCTS) Policy() []Visit {
	if m.root == nil {
		return nil
	}
	policy := make([]Visit, len(m.root.children))
	for i, child := range m.root.children {
		policy[i] = Visit{Move: child.move, Visits: child.visits, Wins: child.wins}
	}
	return policy
}

// RootVisits returns the number of playouts recorded by the last search.
func (m *MCTS) RootVisits() int {
	if m.root == nil {
		return 0
	}
	return m.root.visits
}
