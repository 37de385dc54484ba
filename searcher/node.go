package searcher

import (
	"math"

	"dicewars/game"
)

// node is a search tree node. Children are owned; parent is a plain back
// reference walked only during backup. Nodes keep no board: selection
// rebuilds the state by replaying moves on a clone of the root state.
type node struct {
	parent   *node
	move     game.Move // Move from the parent's state, unset on the root
	hasMove  bool
	children []*node
	wins     int
	visits   int
}

func newRoot() *node {
	return &node{}
}

// addChild appends a leaf reached by move.
func (n *node) addChild(move game.Move) *node {
	child := &node{
		parent:  n,
		move:    move,
		hasMove: true,
	}
	n.children = append(n.children, child)
	return child
}

// pickChild returns the child with the highest UCB1 score, first
// encountered on ties.
func (n *node) pickChild(totalSimulations int) *node {
	if len(n.children) == 0 {
		panic("node has no children")
	}

	best := n.children[0]
	maxScore := math.Inf(-1)
	for _, child := range n.children {
		score := ucb1(child.wins, child.visits, totalSimulations)
		if score > maxScore {
			maxScore = score
			best = child
		}
	}
	return best
}

// backup records one playout and returns the parent.
func (n *node) backup(won bool) *node {
	n.visits++
	if won {
		n.wins++
	}
	return n.parent
}

// mostVisited returns the child with the most visits, first encountered on
// ties.
func (n *node) mostVisited() *node {
	if len(n.children) == 0 {
		panic("node has no children")
	}

	best := n.children[0]
	for _, child := range n.children[1:] {
		if child.visits > best.visits {
			best = child
		}
	}
	return best
}
