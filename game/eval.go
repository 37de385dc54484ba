package game

// TerritoryScore compares the territory of side with its opponent's as a
// score between -1 and 1 from side's perspective.
func (gs *GameState) TerritoryScore(side Side) float64 {
	return normalize(float64(gs.Count(side)), float64(gs.Count(side.Opponent())))
}

// DiceScore is TerritoryScore weighted by dice on each cell.
func (gs *GameState) DiceScore(side Side) float64 {
	dice := make(map[Side]float64)
	for _, cell := range gs.cells {
		dice[cell.Owner] += float64(cell.Dice)
	}
	return normalize(dice[side], dice[side.Opponent()])
}

// TerritoryLeader returns the side owning more cells, or None on a tie.
func (gs *GameState) TerritoryLeader() Side {
	humans, ais := gs.Count(Human), gs.Count(AI)
	switch {
	case humans > ais:
		return Human
	case ais > humans:
		return AI
	default:
		return None
	}
}

// normalize normalizes value relative to otherValue to a score between -1 and 1
func normalize(value float64, otherValue float64) float64 {
	total := value + otherValue
	if total == 0 {
		return 0
	}
	// [a/(a+b)-0.5]*2 = (a-b)/(a+b)
	return (value - otherValue) / total
}
