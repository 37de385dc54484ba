package game

const DieFaces = 6

// rollDice rolls num six-sided dice and returns their sum.
func rollDice(rng Source, num int) int {
	sum := 0
	for i := 0; i < num; i++ {
		sum += rng.Intn(DieFaces) + 1
	}
	return sum
}
