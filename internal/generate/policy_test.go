package generate

import "testing"

func TestPolicyAutoAccept(t *testing.T) {
	policy := Policy{Threshold: 0.85}

	cases := []struct {
		confidence float64
		degraded   bool
		want       bool
	}{
		{0.85, false, true},
		{0.9, false, true},
		{0.8499, false, false},
		{0.0, false, false},
		{0.99, true, false},
		{0.0, true, false},
	}
	for _, tc := range cases {
		if got := policy.AutoAccept(tc.confidence, tc.degraded); got != tc.want {
			t.Fatalf("AutoAccept(%v, degraded=%v) = %v, want %v", tc.confidence, tc.degraded, got, tc.want)
		}
	}
}

func TestPolicyZeroThresholdStillBlocksDegraded(t *testing.T) {
	policy := Policy{Threshold: 0}
	if policy.AutoAccept(0, true) {
		t.Fatal("degraded frame must never auto-accept")
	}
	if !policy.AutoAccept(0, false) {
		t.Fatal("zero threshold should accept zero confidence")
	}
}
