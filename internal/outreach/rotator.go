package outreach

import "math/rand"

// Rotator selects the next search query from the catalog. It keeps no state
// between invocations, so immediate repetition across consecutive runs is
// possible. That is a documented limitation, not a bug.
type Rotator struct {
	queries []string
	rng     *rand.Rand
}

// NewRotator creates a rotator over the catalog's query list. A nil rng uses
// the package-level source.
func NewRotator(cat *Catalog, rng *rand.Rand) *Rotator {
	return &Rotator{queries: cat.Queries, rng: rng}
}

// Next returns one query drawn uniformly at random from the catalog.
func (r *Rotator) Next() string {
	if len(r.queries) == 0 {
		return ""
	}
	if r.rng != nil {
		return r.queries[r.rng.Intn(len(r.queries))]
	}
	return r.queries[rand.Intn(len(r.queries))]
}
