package plan

import "math"

// Positions returns count frame indices strictly between start and end,
// evenly spaced by a fractional step and floored. The i-th (1-based) position
// is start + floor(i * (end-start)/(count+1)). A count of zero yields nil.
//
// The function is total over start < end and count >= 0: it does not reject
// counts larger than the gap allows, so adjacent positions can collide when
// count approaches end-start-1. Callers that must guarantee unique positions
// cap count at end-start-1 before calling.
func Positions(start, end, count int) []int {
	if count <= 0 {
		return nil
	}
	gap := float64(end - start)
	step := gap / float64(count+1)
	positions := make([]int, 0, count)
	for i := 1; i <= count; i++ {
		positions = append(positions, start+int(math.Floor(float64(i)*step)))
	}
	return positions
}

// MaxCount returns the number of whole frame slots strictly between the
// anchors, the largest count Positions can satisfy without collisions.
func MaxCount(start, end int) int {
	slots := end - start - 1
	if slots < 0 {
		return 0
	}
	return slots
}
