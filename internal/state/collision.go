package state

// Check reports whether candidate is legal against the opponent trail, i.e.
// crosses none of its segments. An empty trail is always legal.
func Check(candidate Segment, opponent *Trail) bool {
	for s := range opponent.Near(candidate) {
		if candidate.Crosses(s) {
			return false
		}
	}
	return true
}
