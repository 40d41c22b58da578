package dedupe

// Keyed is a Record annotated with its computed fingerprint. The embedded
// Record is a copy; callers' slices are never mutated.
type Keyed struct {
	Record
	Fingerprint string
}

// Stats summarizes one batch pass.
type Stats struct {
	Input      int
	Kept       int
	Duplicates int
}

// Batch removes in-batch exact duplicates: each record gets its fingerprint,
// the first occurrence of a fingerprint is kept, later ones are dropped.
// Order is preserved. Single pass, set-based membership, no pairwise work.
func Batch(in []Record) []Keyed {
	out, _ := BatchStats(in)
	return out
}

// BatchStats is Batch plus counts, for callers that report or meter the
// outcome of an import.
func BatchStats(in []Record) ([]Keyed, Stats) {
	stats := Stats{Input: len(in)}
	seen := make(map[string]struct{}, len(in))
	out := make([]Keyed, 0, len(in))
	for _, r := range in {
		fp := Fingerprint(r)
		if _, dup := seen[fp]; dup {
			stats.Duplicates++
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, Keyed{Record: r, Fingerprint: fp})
	}
	stats.Kept = len(out)
	return out, stats
}
