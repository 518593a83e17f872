package lineage

// Merge combines pre-sorted streams into one sequence ordered by
// (ChangedAt, EntityType). It is stable: on a full tie the earlier stream
// wins, and events never move relative to others from the same stream.
//
// The result has exactly as many events as the inputs combined and is
// never nil.
func Merge(streams ...[]Event) []Event {
	total := 0
	for _, s := range streams {
		total += len(s)
	}
	out := make([]Event, 0, total)

	heads := make([]int, len(streams))
	for len(out) < total {
		best := -1
		for i, s := range streams {
			if heads[i] == len(s) {
				continue
			}
			if best < 0 || s[heads[i]].before(streams[best][heads[best]]) {
				best = i
			}
		}
		out = append(out, streams[best][heads[best]])
		heads[best]++
	}
	return out
}
