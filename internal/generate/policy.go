package generate

// Policy decides whether a generated frame skips manual review.
type Policy struct {
	Threshold float64
}

// AutoAccept reports whether a frame at the given confidence clears the
// threshold. Frames from a degraded run never auto-accept regardless of
// threshold.
func (p Policy) AutoAccept(confidence float64, degraded bool) bool {
	if degraded {
		return false
	}
	return confidence >= p.Threshold
}
