package delivery

// attemptOrder computes the ordered channel indexes to try for one
// delivery, given a quota snapshot. It is a pure function so the selection
// logic is testable without any transport.
//
// Index 0 (the bulk primary) always leads when under its ceiling. The
// secondaries follow in ring order starting one past lastUsed — the index
// of the last successfully used secondary — wrapping around once, so load
// rotates across accounts instead of hammering the first one. Channels at
// or over their ceiling are skipped entirely.
//
// counts[i] of -1 marks a channel whose quota could not be read; it is
// treated as at-ceiling (fail closed).
func attemptOrder(counts, ceilings []int, lastUsed int) []int {
	n := len(counts)
	if n == 0 {
		return nil
	}

	order := make([]int, 0, n)

	if admissible(counts[0], ceilings[0]) {
		order = append(order, 0)
	}

	secondaries := n - 1
	if secondaries <= 0 {
		return order
	}

	// lastUsed is a ring index in [1, n); anything else restarts rotation.
	start := 0
	if lastUsed >= 1 && lastUsed < n {
		start = lastUsed // 1-based ring index; next candidate is start+1
	}

	for k := 1; k <= secondaries; k++ {
		idx := 1 + ((start-1)+k)%secondaries
		if admissible(counts[idx], ceilings[idx]) {
			order = append(order, idx)
		}
	}

	return order
}

func admissible(count, ceiling int) bool {
	return count >= 0 && count < ceiling
}
