// Package plan computes target frame positions for generated inbetweens.
//
// Placement spreads count positions evenly across the open interval between
// two anchor frames using a fractional step with floor truncation, which
// biases placements slightly toward the start anchor. The functions here are
// pure; callers guard preconditions (anchors at least two frames apart)
// before asking for positions.
package plan
