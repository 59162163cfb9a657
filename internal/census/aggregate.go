package census

import "math"

// Count returns how many items satisfy pred.
func Count[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, it := range items {
		if pred(it) {
			n++
		}
	}
	return n
}

// Sum adds f over items.
func Sum[T any](items []T, f func(T) int) int {
	total := 0
	for _, it := range items {
		total += f(it)
	}
	return total
}

// Percent1 returns part/whole as a percentage rounded to one decimal place,
// 0 when whole is not positive.
func Percent1(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}
